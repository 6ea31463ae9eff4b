package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv isolates config loading in a temp dir with the store disabled.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck

	t.Setenv("CREDIT_LOG_LEVEL", "error")
	t.Setenv("CREDIT_STORE_DRIVER", "none")
	return dir
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Value.Type() != "stringToString" {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const historyFixture = `{
  "months": ["Jan", "Feb"],
  "data": [
    {"_id": "1", "businessId": "B1", "month": "Jan", "date": "2024-01-31", "score": 700, "previousScore": 690},
    {"_id": "2", "businessId": "B2", "month": "Jan", "date": "2024-01-31", "score": 800, "previousScore": 800},
    {"_id": "3", "businessId": "B1", "month": "Feb", "date": "2024-02-29", "score": 600, "previousScore": 700}
  ]
}`

// fakeBackend serves /cibil and /calculate and counts calls.
type fakeBackend struct {
	*httptest.Server
	calls    atomic.Int32
	lastBody atomic.Value
}

func newFakeBackend(t *testing.T, score float64) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/cibil":
			_, _ = w.Write([]byte(historyFixture))
		case r.Method == http.MethodPost && r.URL.Path == "/calculate":
			body, _ := io.ReadAll(r.Body)
			fb.lastBody.Store(body)
			_ = json.NewEncoder(w).Encode(map[string]float64{"AI_Credit_Score": score})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fb.Close)
	t.Setenv("CREDIT_BACKEND_BASE_URL", fb.URL)
	return fb
}

func (fb *fakeBackend) body(t *testing.T) map[string]any {
	t.Helper()
	raw, ok := fb.lastBody.Load().([]byte)
	require.True(t, ok, "no calculate request received")
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	expected := []string{"estimate", "classify", "history", "calculate", "onboard", "report", "serve", "store"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "credit-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestServeCommand_RequiresBackend(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "serve", "--port", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url is required")
}

func TestEstimate_Flags(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "estimate", "--years", "5", "--cashflow", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Score:     850")
	assert.Contains(t, out, "Risk:      Very Low")
	assert.Contains(t, out, "Advice:    High")
}

func TestEstimate_InputDelayedYAML(t *testing.T) {
	dir := setupEnv(t)
	path := writeFile(t, dir, "business.yaml", `
businessId: B7
yearsInOperation: 2
cashFlowStabilityScore: 40
loanRepaymentHistory: delayed
monthlyRevenue: 150000
`)

	out, err := execute(t, "estimate", "--input", path, "--format", "json")
	require.NoError(t, err)

	var res estimateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "B7", res.BusinessID)
	// 750 - 100 + 20 + 20
	assert.Equal(t, 690, res.Score)
	assert.Equal(t, "Medium", res.Risk.Level)
	assert.Equal(t, "Medium", res.Advice.Category)
}

func TestEstimate_BadFormat(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "estimate", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--format must be one of")
}

func TestClassify(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
		absent   []string
	}{
		{
			name:     "medium",
			args:     []string{"classify", "712"},
			contains: []string{"Score:     712", "Risk:      Medium (text-yellow-600)", "Advice:    High"},
		},
		{
			name:     "boundary",
			args:     []string{"classify", "800"},
			contains: []string{"Very Low"},
		},
		{
			name:     "not_available",
			args:     []string{"classify", "abc"},
			contains: []string{"Score:     N/A", "Risk:      N/A (text-gray-500)"},
			absent:   []string{"Advice:"},
		},
		{
			name:     "no_argument",
			args:     []string{"classify"},
			contains: []string{"N/A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestClassify_YAML(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "classify", "650", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "score: 650")
	assert.Contains(t, out, "level: Medium")
	assert.Contains(t, out, "scoreColor: text-emerald-600")
}

func TestHistory_FixtureTable(t *testing.T) {
	dir := setupEnv(t)
	path := writeFile(t, dir, "cibil.json", historyFixture)

	out, err := execute(t, "history", "--input", path)
	require.NoError(t, err)
	assert.Contains(t, out, "BUSINESS")
	assert.Contains(t, out, "+10 up")
	assert.Contains(t, out, "-100 down")
	assert.Contains(t, out, "MONTH  AVERAGE")

	lines := strings.Split(out, "\n")
	var averages []string
	for _, l := range lines {
		f := strings.Fields(l)
		if len(f) == 2 && (f[0] == "Jan" || f[0] == "Feb") {
			averages = append(averages, f[0]+"="+f[1])
		}
	}
	assert.Equal(t, []string{"Jan=750", "Feb=600"}, averages)
}

func TestHistory_BackendJSON(t *testing.T) {
	setupEnv(t)
	fb := newFakeBackend(t, 0)

	out, err := execute(t, "history", "--business", "B1", "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, int32(1), fb.calls.Load())

	var res struct {
		Business string `json:"business"`
		Averaged bool   `json:"averaged"`
		Records  []struct {
			Month string `json:"month"`
			Score int    `json:"score"`
		} `json:"records"`
		Series []struct {
			Month string `json:"month"`
			Score int    `json:"score"`
		} `json:"series"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "B1", res.Business)
	assert.False(t, res.Averaged)
	require.Len(t, res.Records, 2)
	require.Len(t, res.Series, 2)
	assert.Equal(t, 600, res.Series[1].Score)
}

func TestHistory_XLSXRoundTrip(t *testing.T) {
	dir := setupEnv(t)
	fixture := writeFile(t, dir, "cibil.json", historyFixture)
	xlsxPath := filepath.Join(dir, "history.xlsx")

	_, err := execute(t, "history", "--input", fixture, "--format", "xlsx", "--output", xlsxPath)
	require.NoError(t, err)

	out, err := execute(t, "history", "--input", xlsxPath, "--month", "Jan", "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "B1,Jan")
	assert.Contains(t, lines[2], "B2,Jan")
}

func TestHistory_XLSXNeedsOutput(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "history", "--format", "xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output is required")
}

func TestHistory_NoBackendConfigured(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.base_url is required")
}

func TestCalculate(t *testing.T) {
	dir := setupEnv(t)
	fb := newFakeBackend(t, 712.4)
	path := writeFile(t, dir, "request.json", `{
		"Business_ID": "B9",
		"Business_Type": "llp",
		"Years_in_Operation": "4",
		"Monthly_Revenue": 250000,
		"Month": "Feb"
	}`)

	out, err := execute(t, "calculate", "--input", path, "--month", "Mar")
	require.NoError(t, err)
	assert.Contains(t, out, "Business:  B9")
	assert.Contains(t, out, "Month:     Mar")
	assert.Contains(t, out, "Score:     712")
	assert.Contains(t, out, "Risk:      Medium")

	body := fb.body(t)
	assert.Equal(t, "B9", body["Business_ID"])
	assert.Equal(t, "llp", body["Business_Type"])
	assert.InDelta(t, 4, body["Years_in_Operation"], 0.001)
	assert.Equal(t, "Mar", body["Month"])
	assert.Equal(t, int32(1), fb.calls.Load())
}

func TestCalculate_SaveAssessment(t *testing.T) {
	dir := setupEnv(t)
	newFakeBackend(t, 640)
	t.Setenv("CREDIT_STORE_DRIVER", "sqlite")
	t.Setenv("CREDIT_STORE_DATABASE_URL", filepath.Join(dir, "credit.db"))
	path := writeFile(t, dir, "request.json", `{"Business_ID": "B3", "Month": "Jan"}`)

	_, err := execute(t, "calculate", "--input", path, "--save")
	require.NoError(t, err)

	out, err := execute(t, "store", "assessments", "--business", "B3")
	require.NoError(t, err)
	assert.Contains(t, out, "B3")
	assert.Contains(t, out, "640")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "cli")
}

func TestCalculate_SaveWithoutStore(t *testing.T) {
	dir := setupEnv(t)
	newFakeBackend(t, 640)
	path := writeFile(t, dir, "request.json", `{"Business_ID": "B3"}`)

	_, err := execute(t, "calculate", "--input", path, "--save")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--save needs a store driver")
}

func TestOnboard_Steps(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "onboard", "--steps")
	require.NoError(t, err)
	assert.Contains(t, out, "1. Business Information")
	assert.Contains(t, out, "4. Additional Metrics")
	assert.Contains(t, out, "cashFlowStabilityScore")
}

func TestOnboard_EstimateAndSubmit(t *testing.T) {
	dir := setupEnv(t)
	fb := newFakeBackend(t, 801)
	answers := writeFile(t, dir, "answers.yaml", `
businessId: B11
businessType: llp
yearsInOperation: 3
monthlyRevenue: 250000
cashFlowStabilityScore: 80
loanRepaymentHistory: good
unknownField: ignored
`)

	out, err := execute(t, "onboard", "--answers", answers)
	require.NoError(t, err)
	assert.Contains(t, out, "Business:  B11")
	assert.Contains(t, out, "Step:      4/4 (Additional Metrics)")
	// 750 + 30 + 40
	assert.Contains(t, out, "Estimate:  820 (Very Low)")
	assert.Equal(t, int32(0), fb.calls.Load())

	out, err = execute(t, "onboard", "--answers", answers, "--submit", "--month", "Apr")
	require.NoError(t, err)
	assert.Contains(t, out, "Score:     801")
	assert.Equal(t, int32(1), fb.calls.Load())

	body := fb.body(t)
	assert.Equal(t, "B11", body["Business_ID"])
	assert.Equal(t, "Apr", body["Month"])
	assert.InDelta(t, 80, body["Cash_Flow_Stability_Score"], 0.001)
	// Untouched sliders keep their default.
	assert.InDelta(t, 50, body["Social_Media_Sentiment"], 0.001)
}

func TestOnboard_SubmitNeedsBusinessID(t *testing.T) {
	setupEnv(t)
	newFakeBackend(t, 700)

	_, err := execute(t, "onboard", "--submit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "businessId is required")
}

func TestReport(t *testing.T) {
	dir := setupEnv(t)
	output := filepath.Join(dir, "report.pdf")

	_, err := execute(t, "report", "--score", "712", "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestReport_RecordAndHistory(t *testing.T) {
	dir := setupEnv(t)
	record := writeFile(t, dir, "business.yaml", `
businessId: B1
yearsInOperation: 5
cashFlowStabilityScore: 100
monthlyRevenue: 1250000
monthlyExpenses: 900000
`)
	fixture := writeFile(t, dir, "cibil.json", historyFixture)
	output := filepath.Join(dir, "b1.pdf")

	_, err := execute(t, "report", "--record", record, "--business", "B1", "--history", fixture, "--output", output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestStore_NoDriver(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "store", "contacts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no driver configured")
}

func TestStore_MigrateAndContacts(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("CREDIT_STORE_DRIVER", "sqlite")
	t.Setenv("CREDIT_STORE_DATABASE_URL", filepath.Join(dir, "credit.db"))

	_, err := execute(t, "store", "migrate")
	require.NoError(t, err)

	out, err := execute(t, "store", "contacts")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
}

func TestLoadHistory_DerivesMonths(t *testing.T) {
	path := writeFile(t, t.TempDir(), "h.json", `{"data": [
		{"businessId": "B1", "month": "Mar", "score": 700},
		{"businessId": "B1", "month": "Jan", "score": 710},
		{"businessId": "B2", "month": "Mar", "score": 720}
	]}`)

	resp, err := loadHistory(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mar", "Jan"}, resp.Months)
	assert.Len(t, resp.Data, 3)
}
