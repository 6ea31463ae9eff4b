// Package backend is a client for the external credit scoring service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-cli/internal/model"
)

const defaultTimeout = 30 * time.Second

// Client talks to the scoring backend. Calls are never retried.
type Client interface {
	History(ctx context.Context) (*HistoryResponse, error)
	Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error)
}

// HistoryResponse is the response from GET /cibil.
type HistoryResponse struct {
	Months []string            `json:"months" yaml:"months"`
	Data   []model.ScoreRecord `json:"data" yaml:"data"`
}

// CalculateRequest is the request body for POST /calculate. Values are sent
// as JSON numbers when they parse as numbers and as strings otherwise.
type CalculateRequest struct {
	BusinessID                string `json:"Business_ID"`
	BusinessType              Value  `json:"Business_Type"`
	IndustrySector            Value  `json:"Industry_Sector"`
	YearsInOperation          Value  `json:"Years_in_Operation"`
	MonthlyRevenue            Value  `json:"Monthly_Revenue"`
	MonthlyExpenses           Value  `json:"Monthly_Expenses"`
	LoanRepaymentHistory      Value  `json:"Loan_Repayment_History"`
	OutstandingDebt           Value  `json:"Outstanding_Debt"`
	CashFlowStabilityScore    Value  `json:"Cash_Flow_Stability_Score"`
	GSTFilings                Value  `json:"GST_Filings"`
	SupplierPaymentDelay      Value  `json:"Supplier_Payment_Delay"`
	EcommerceSalesVolume      Value  `json:"Ecommerce_Sales_Volume"`
	DigitalInvoicePaymentRate Value  `json:"Digital_Invoice_Payment_Rate"`
	CreditDefaultHistory      Value  `json:"Credit_Default_History"`
	BusinessGrowthRate        Value  `json:"Business_Growth_Rate"`
	MacroeconomicRiskScore    Value  `json:"Macroeconomic_Risk_Score"`
	SocialMediaSentiment      Value  `json:"Social_Media_Sentiment"`
	RegulatoryComplianceScore Value  `json:"Regulatory_Compliance_Score"`
	Month                     string `json:"Month"`
}

// CalculateResponse is the response from POST /calculate.
type CalculateResponse struct {
	AICreditScore float64 `json:"AI_Credit_Score"`
}

// Score returns the backend score rounded to an integer.
func (r CalculateResponse) Score() int {
	return int(math.Round(r.AICreditScore))
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a scoring backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) History(ctx context.Context) (*HistoryResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cibil", nil)
	if err != nil {
		return nil, eris.Wrap(err, "backend: create history request")
	}
	httpReq.Header.Set("Accept", "application/json")

	var result HistoryResponse
	if err := c.do(httpReq, &result); err != nil {
		return nil, eris.Wrap(err, "backend: history")
	}
	if result.Months == nil {
		result.Months = []string{}
	}
	if result.Data == nil {
		result.Data = []model.ScoreRecord{}
	}
	return &result, nil
}

func (c *httpClient) Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "backend: marshal calculate request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/calculate", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "backend: create calculate request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	var raw map[string]json.RawMessage
	if err := c.do(httpReq, &raw); err != nil {
		return nil, eris.Wrap(err, "backend: calculate")
	}
	field, ok := raw["AI_Credit_Score"]
	if !ok {
		return nil, eris.New("backend: calculate: response missing AI_Credit_Score")
	}
	var result CalculateResponse
	if err := json.Unmarshal(field, &result.AICreditScore); err != nil {
		return nil, eris.Wrap(err, "backend: calculate: decode AI_Credit_Score")
	}
	return &result, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
