package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/credit-cli/internal/dashboard"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <score>",
	Short: "Show risk level, colors and advice for a score",
	Long: `Renders the dashboard view for a score. A missing or non-numeric score
is shown as N/A with no advice.

Examples:
  classify 712
  classify 712 --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().String("format", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if err := checkFormat(format, "text", "json", "yaml"); err != nil {
		return eris.Wrap(err, "classify")
	}

	policies, err := loadPolicies(cfg)
	if err != nil {
		return err
	}

	raw := ""
	if len(args) > 0 {
		raw = args[0]
	}
	view := dashboard.NewBuilder(policies).BuildRaw(raw)

	out := cmd.OutOrStdout()
	if format != "text" {
		return writeStructured(out, format, view)
	}

	_, _ = fmt.Fprintf(out, "Score:     %s\n", view.Display)
	_, _ = fmt.Fprintf(out, "Risk:      %s (%s)\n", view.Risk.Level, view.Risk.Color)
	_, _ = fmt.Fprintf(out, "Gauge:     %.1f%%\n", view.GaugePercent)
	printAdvice(out, view.Advice)
	return nil
}
