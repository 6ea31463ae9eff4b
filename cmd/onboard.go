package main

import (
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/onboarding"
	"github.com/sells-group/credit-cli/internal/scoring"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Run the onboarding wizard from an answers file",
	Long: `Fills the four-step onboarding wizard from a YAML or JSON answers file keyed
by field name, applies any --set overrides and prints the local estimate.
With --submit the completed form is sent to the backend for scoring.

Examples:
  # List the wizard fields
  onboard --steps

  onboard --answers answers.yaml
  onboard --answers answers.yaml --set cashFlowStabilityScore=80 --submit --month Mar`,
	RunE: runOnboard,
}

func init() {
	f := onboardCmd.Flags()
	f.String("answers", "", "answers file (yaml or json, - for stdin)")
	f.StringToString("set", nil, "field=value overrides applied after the answers file")
	f.Bool("steps", false, "print the wizard steps and exit")
	f.Bool("submit", false, "submit the completed form to the backend")
	f.String("month", "", "month sent with --submit (default: current month)")
	f.Bool("save", false, "record the submitted assessment in the configured store")

	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if showSteps, _ := cmd.Flags().GetBool("steps"); showSteps {
		printSteps(out)
		return nil
	}

	state, err := onboardState(cmd)
	if err != nil {
		return err
	}

	policies, err := loadPolicies(cfg)
	if err != nil {
		return err
	}

	est := scoring.Estimate(state.Record())
	_, _ = fmt.Fprintf(out, "Business:  %s\n", state.Value("businessId"))
	_, _ = fmt.Fprintf(out, "Step:      %d/%d (%s)\n", state.Step+1, len(onboarding.Steps()), state.CurrentStep().Title)
	_, _ = fmt.Fprintf(out, "Estimate:  %d (%s)\n", est, policies.Risk.Classify(est).Level)

	submit, _ := cmd.Flags().GetBool("submit")
	if !submit {
		return nil
	}

	if strings.TrimSpace(state.Value("businessId")) == "" {
		return eris.New("onboard: businessId is required to submit")
	}
	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		month = time.Now().Format("Jan")
	}

	client, err := newBackendClient(cfg)
	if err != nil {
		return err
	}
	res, err := calculate(ctx, client, policies, state.Request(month))
	if err != nil {
		return eris.Wrap(err, "onboard: submit")
	}
	state = onboarding.Reduce(state, onboarding.Action{Type: onboarding.Next})
	zap.L().Debug("onboarding submitted", zap.Bool("submitted", state.Submitted))

	if save, _ := cmd.Flags().GetBool("save"); save {
		if err := saveAssessment(ctx, res); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintln(out)
	printCalculate(out, res)
	return nil
}

// onboardState builds the wizard state from --answers and --set.
func onboardState(cmd *cobra.Command) (onboarding.State, error) {
	values := map[string]any{}
	if path, _ := cmd.Flags().GetString("answers"); path != "" {
		if err := decodeFile(path, &values); err != nil {
			return onboarding.State{}, eris.Wrap(err, "onboard: load answers")
		}
	}
	overrides, _ := cmd.Flags().GetStringToString("set")
	for k, v := range overrides {
		if _, ok := onboarding.LookupField(k); !ok {
			return onboarding.State{}, eris.Errorf("onboard: unknown field %q", k)
		}
		values[k] = v
	}
	for k := range values {
		if _, ok := onboarding.LookupField(k); !ok {
			zap.L().Warn("ignoring unknown onboarding field", zap.String("field", k))
		}
	}
	return onboarding.FromValues(values), nil
}

func printSteps(out io.Writer) {
	for i, s := range onboarding.Steps() {
		_, _ = fmt.Fprintf(out, "%d. %s\n", i+1, s.Title)
		for _, f := range s.Fields {
			line := fmt.Sprintf("   %-28s %-8s %s", f.Name, f.Kind, f.Label)
			if len(f.Options) > 0 {
				line += " [" + strings.Join(f.Options, ", ") + "]"
			}
			_, _ = fmt.Fprintln(out, line)
		}
	}
}
