package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/internal/scoring"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate a credit score locally from business details",
	Long: `Computes the placeholder score without calling the backend.

The score starts at 750, loses 100 for delayed loan repayments, gains 10 per
year in operation (up to 50) and up to 50 for cash flow stability, and is
clamped to [300, 900].

Examples:
  # From flags
  estimate --years 5 --cashflow 100

  # From a JSON or YAML business record
  estimate --input business.yaml --format json`,
	RunE: runEstimate,
}

func init() {
	f := estimateCmd.Flags()
	f.String("input", "", "business record file (json or yaml, - for stdin)")
	f.Float64("years", 0, "years in operation")
	f.Float64("cashflow", 0, "cash flow stability score (0-100)")
	f.String("repayment", "", "loan repayment history (e.g. good, delayed)")
	f.String("format", "text", "output format: text, json or yaml")

	rootCmd.AddCommand(estimateCmd)
}

type estimateResult struct {
	BusinessID string                 `json:"businessId,omitempty" yaml:"businessId,omitempty"`
	Score      int                    `json:"score" yaml:"score"`
	Risk       scoring.Classification `json:"risk" yaml:"risk"`
	Advice     scoring.Advice         `json:"advice" yaml:"advice"`
}

func runEstimate(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "text", "json", "yaml"); err != nil {
		return eris.Wrap(err, "estimate")
	}

	policies, err := loadPolicies(cfg)
	if err != nil {
		return err
	}

	rec, err := estimateRecord(cmd)
	if err != nil {
		return err
	}

	score := scoring.Estimate(rec)
	res := estimateResult{
		BusinessID: rec.BusinessID,
		Score:      score,
		Risk:       policies.Risk.Classify(score),
		Advice:     policies.Advice.Advise(score),
	}
	zap.L().Debug("estimated score", zap.String("business_id", rec.BusinessID), zap.Int("score", score))

	out := cmd.OutOrStdout()
	if format == "text" {
		printEstimate(out, res)
		return nil
	}
	return writeStructured(out, format, res)
}

// estimateRecord loads --input and lets explicit flags override it.
func estimateRecord(cmd *cobra.Command) (model.BusinessRecord, error) {
	var rec model.BusinessRecord
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		if err := decodeFile(path, &rec); err != nil {
			return rec, eris.Wrap(err, "estimate: load record")
		}
	}
	if cmd.Flags().Changed("years") {
		rec.YearsInOperation, _ = cmd.Flags().GetFloat64("years")
	}
	if cmd.Flags().Changed("cashflow") {
		rec.CashFlowStabilityScore, _ = cmd.Flags().GetFloat64("cashflow")
	}
	if cmd.Flags().Changed("repayment") {
		r, _ := cmd.Flags().GetString("repayment")
		rec.LoanRepaymentHistory = model.RepaymentHistory(r)
	}
	return rec, nil
}

func printEstimate(out io.Writer, res estimateResult) {
	if res.BusinessID != "" {
		_, _ = fmt.Fprintf(out, "Business:  %s\n", res.BusinessID)
	}
	_, _ = fmt.Fprintf(out, "Score:     %d\n", res.Score)
	_, _ = fmt.Fprintf(out, "Risk:      %s\n", res.Risk.Level)
	printAdvice(out, &res.Advice)
}

func printAdvice(out io.Writer, a *scoring.Advice) {
	if a == nil {
		return
	}
	_, _ = fmt.Fprintf(out, "Advice:    %s\n", a.Category)
	for _, s := range a.Suggestions {
		_, _ = fmt.Fprintf(out, "  - %s (%s impact): %s\n", s.Title, s.Impact, s.Advice)
	}
}
