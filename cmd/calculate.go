package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/internal/scoring"
	"github.com/sells-group/credit-cli/pkg/backend"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Score a business with the backend model",
	Long: `Sends a POST /calculate request to the scoring backend. The input file uses
the backend wire keys (Business_ID, Business_Type, ..., Month).

Examples:
  calculate --input request.json
  calculate --input request.json --month Mar --save`,
	RunE: runCalculate,
}

func init() {
	f := calculateCmd.Flags()
	f.String("input", "", "request file in backend wire format (json, - for stdin)")
	f.String("month", "", "override the Month field")
	f.Bool("save", false, "record the assessment in the configured store")
	f.String("format", "text", "output format: text, json or yaml")
	_ = calculateCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(calculateCmd)
}

type calculateResult struct {
	BusinessID string                 `json:"businessId" yaml:"businessId"`
	Month      string                 `json:"month" yaml:"month"`
	Score      int                    `json:"score" yaml:"score"`
	Risk       scoring.Classification `json:"risk" yaml:"risk"`
	Advice     scoring.Advice         `json:"advice" yaml:"advice"`
}

func runCalculate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "text", "json", "yaml"); err != nil {
		return eris.Wrap(err, "calculate")
	}
	input, _ := cmd.Flags().GetString("input")
	save, _ := cmd.Flags().GetBool("save")

	data, err := readInput(input)
	if err != nil {
		return eris.Wrap(err, "calculate")
	}
	var req backend.CalculateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return eris.Wrap(err, "calculate: parse request")
	}
	if m, _ := cmd.Flags().GetString("month"); m != "" {
		req.Month = m
	}

	policies, err := loadPolicies(cfg)
	if err != nil {
		return err
	}
	client, err := newBackendClient(cfg)
	if err != nil {
		return err
	}

	res, err := calculate(ctx, client, policies, req)
	if err != nil {
		return err
	}

	if save {
		if err := saveAssessment(ctx, res); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if format == "text" {
		printCalculate(out, res)
		return nil
	}
	return writeStructured(out, format, res)
}

// calculate calls the backend once and classifies the returned score.
func calculate(ctx context.Context, client backend.Client, p scoring.Policies, req backend.CalculateRequest) (calculateResult, error) {
	resp, err := client.Calculate(ctx, req)
	if err != nil {
		return calculateResult{}, eris.Wrap(err, "calculate")
	}
	score := scoring.Clamp(resp.AICreditScore)
	zap.L().Info("backend score",
		zap.String("business_id", req.BusinessID),
		zap.String("month", req.Month),
		zap.Float64("raw", resp.AICreditScore),
		zap.Int("score", score),
	)
	return calculateResult{
		BusinessID: req.BusinessID,
		Month:      req.Month,
		Score:      score,
		Risk:       p.Risk.Classify(score),
		Advice:     p.Advice.Advise(score),
	}, nil
}

// saveAssessment stores the outcome of a CLI calculation.
func saveAssessment(ctx context.Context, res calculateResult) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return eris.Wrap(err, "calculate: open store")
	}
	if st == nil {
		return eris.New("calculate: --save needs a store driver")
	}
	defer st.Close() //nolint:errcheck

	saved, err := st.RecordAssessment(ctx, model.Assessment{
		BusinessID: res.BusinessID,
		Month:      res.Month,
		Score:      res.Score,
		RiskLevel:  res.Risk.Level,
		Source:     "cli",
	})
	if err != nil {
		return eris.Wrap(err, "calculate: save assessment")
	}
	zap.L().Info("assessment saved", zap.String("id", saved.ID))
	return nil
}

func printCalculate(out io.Writer, res calculateResult) {
	_, _ = fmt.Fprintf(out, "Business:  %s\n", res.BusinessID)
	if res.Month != "" {
		_, _ = fmt.Fprintf(out, "Month:     %s\n", res.Month)
	}
	_, _ = fmt.Fprintf(out, "Score:     %d\n", res.Score)
	_, _ = fmt.Fprintf(out, "Risk:      %s\n", res.Risk.Level)
	printAdvice(out, &res.Advice)
}
