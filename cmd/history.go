package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/export"
	"github.com/sells-group/credit-cli/internal/history"
	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/pkg/backend"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show historical scores from the backend",
	Long: `Fetches GET /cibil from the scoring backend and shows the records matching
--month and --business ("all" matches everything). With --business all the
chart series is the per-month average across every business.

Examples:
  history
  history --business B1 --format csv --output b1.csv
  history --format xlsx --output history.xlsx

  # Offline, from a saved response or an exported workbook
  history --input cibil.json
  history --input history.xlsx --month Jan`,
	RunE: runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.String("month", history.All, "month filter")
	f.String("business", history.All, "business id filter")
	f.String("input", "", "read history from a json, yaml or xlsx file instead of the backend")
	f.String("format", "table", "output format: table, csv, json, yaml or xlsx")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(historyCmd)
}

type historyOutput struct {
	Month    string         `json:"month" yaml:"month"`
	Business string         `json:"business" yaml:"business"`
	Months   []string       `json:"months" yaml:"months"`
	Averaged bool           `json:"averaged" yaml:"averaged"`
	Records  []history.Row  `json:"records" yaml:"records"`
	Series   history.Series `json:"series" yaml:"series"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	month, _ := cmd.Flags().GetString("month")
	business, _ := cmd.Flags().GetString("business")
	input, _ := cmd.Flags().GetString("input")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if err := checkFormat(format, "table", "csv", "json", "yaml", "xlsx"); err != nil {
		return eris.Wrap(err, "history")
	}
	if format == "xlsx" && outputPath == "" {
		return eris.New("history: --output is required for xlsx")
	}

	resp, err := loadHistory(ctx, input)
	if err != nil {
		return err
	}

	filtered, series := history.Aggregate(resp.Data, resp.Months, month, business)
	rows := history.Rows(filtered)

	zap.L().Info("history loaded",
		zap.Int("records", len(resp.Data)),
		zap.Int("matched", len(rows)),
		zap.String("month", month),
		zap.String("business", business),
	)

	out, closeOut, err := openOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return eris.Wrap(err, "history")
	}

	switch format {
	case "table":
		formatHistoryTable(out, rows, series)
	case "csv":
		err = export.WriteCSV(out, rows)
	case "xlsx":
		err = export.WriteXLSX(out, rows)
	default:
		err = writeStructured(out, format, historyOutput{
			Month:    month,
			Business: business,
			Months:   resp.Months,
			Averaged: series.Averaged,
			Records:  rows,
			Series:   series,
		})
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return eris.Wrap(err, "history: write output")
	}
	return nil
}

// loadHistory reads a fixture when input is set, otherwise asks the backend.
func loadHistory(ctx context.Context, input string) (*backend.HistoryResponse, error) {
	if input == "" {
		client, err := newBackendClient(cfg)
		if err != nil {
			return nil, err
		}
		resp, err := client.History(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "history: fetch")
		}
		return resp, nil
	}

	if strings.EqualFold(filepath.Ext(input), ".xlsx") {
		data, err := readInput(input)
		if err != nil {
			return nil, eris.Wrap(err, "history")
		}
		records, err := export.ReadXLSX(data)
		if err != nil {
			return nil, eris.Wrap(err, "history")
		}
		return &backend.HistoryResponse{Months: monthsOf(records), Data: records}, nil
	}

	var resp backend.HistoryResponse
	if err := decodeFile(input, &resp); err != nil {
		return nil, eris.Wrap(err, "history: load fixture")
	}
	if len(resp.Months) == 0 {
		resp.Months = monthsOf(resp.Data)
	}
	return &resp, nil
}

// monthsOf lists the distinct months in first-seen order.
func monthsOf(records []model.ScoreRecord) []string {
	seen := make(map[string]bool, 12)
	months := []string{}
	for _, r := range records {
		if !seen[r.Month] {
			seen[r.Month] = true
			months = append(months, r.Month)
		}
	}
	return months
}

// formatHistoryTable writes rows and, for averaged selections, the monthly
// averages.
func formatHistoryTable(out io.Writer, rows []history.Row, series history.Series) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "BUSINESS\tMONTH\tDATE\tSCORE\tPREVIOUS\tCHANGE")
	_, _ = fmt.Fprintln(w, "--------\t-----\t----\t-----\t--------\t------")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s %s\n",
			r.BusinessID, r.Month, r.Date, r.Score, r.PreviousScore, r.Change.Label(), r.Change.Direction)
	}
	_ = w.Flush()

	if !series.Averaged {
		return
	}
	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MONTH\tAVERAGE")
	_, _ = fmt.Fprintln(w, "-----\t-------")
	for _, p := range series.Points {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", p.Month, p.AverageScore)
	}
	_ = w.Flush()
}
