package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/credit-cli/internal/dashboard"
	"github.com/sells-group/credit-cli/internal/history"
	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/internal/report"
	"github.com/sells-group/credit-cli/internal/scoring"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a PDF credit report",
	Long: `Renders the dashboard for a score as a PDF. With --business the score
history from the backend is included; with --record the business snapshot is
included and, if --score is not given, the score is estimated from it.

Examples:
  report --score 712 --output report.pdf
  report --record business.yaml --business B1 --output b1.pdf`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.String("score", "", "score to report (N/A when empty and no --record)")
	f.String("business", "", "include this business's history from the backend")
	f.String("record", "", "business record file (json or yaml)")
	f.String("history", "", "read history from a json or yaml file instead of the backend")
	f.String("output", "credit-report.pdf", "output PDF path")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rawScore, _ := cmd.Flags().GetString("score")
	business, _ := cmd.Flags().GetString("business")
	recordPath, _ := cmd.Flags().GetString("record")
	historyPath, _ := cmd.Flags().GetString("history")
	outputPath, _ := cmd.Flags().GetString("output")

	policies, err := loadPolicies(cfg)
	if err != nil {
		return err
	}

	opts := report.Options{
		BusinessID:  business,
		GeneratedAt: time.Now(),
		Locale:      cfg.Report.Locale,
	}

	// History and record load independently.
	g, gctx := errgroup.WithContext(ctx)
	if business != "" && business != history.All {
		g.Go(func() error {
			resp, err := loadHistory(gctx, historyPath)
			if err != nil {
				return err
			}
			opts.History = history.Rows(history.Filter(resp.Data, history.All, business))
			return nil
		})
	}
	if recordPath != "" {
		g.Go(func() error {
			var rec model.BusinessRecord
			if err := decodeFile(recordPath, &rec); err != nil {
				return eris.Wrap(err, "report: load record")
			}
			opts.Record = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	score := scoring.ParseScore(rawScore)
	if !score.Valid() && opts.Record != nil {
		score = scoring.Some(float64(scoring.Estimate(*opts.Record)))
	}
	if opts.BusinessID == "" && opts.Record != nil {
		opts.BusinessID = opts.Record.BusinessID
	}

	view := dashboard.NewBuilder(policies).Build(score)
	pdf, err := report.Generate(view, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, pdf, 0o644); err != nil {
		return eris.Wrapf(err, "report: write %s", outputPath)
	}

	zap.L().Info("report written",
		zap.String("path", outputPath),
		zap.String("score", view.Display),
		zap.Int("history_rows", len(opts.History)),
	)
	return nil
}
