package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credit-cli/internal/model"
	"github.com/sells-group/credit-cli/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the assessment and contact store",
}

var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the store schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(ctx context.Context, st store.Store) error {
			// Open already migrates; run again so the command is explicit.
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "store: migrate")
			}
			zap.L().Info("store migrated", zap.String("driver", cfg.Store.Driver))
			return nil
		})
	},
}

var storeAssessmentsCmd = &cobra.Command{
	Use:   "assessments",
	Short: "List recorded assessments",
	RunE: func(cmd *cobra.Command, _ []string) error {
		business, _ := cmd.Flags().GetString("business")
		limit, _ := cmd.Flags().GetInt("limit")
		return withStore(cmd, func(ctx context.Context, st store.Store) error {
			list, err := st.ListAssessments(ctx, store.AssessmentFilter{BusinessID: business, Limit: limit})
			if err != nil {
				return eris.Wrap(err, "store: list assessments")
			}
			formatAssessments(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

var storeContactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List contact form messages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withStore(cmd, func(ctx context.Context, st store.Store) error {
			list, err := st.ListContacts(ctx, limit)
			if err != nil {
				return eris.Wrap(err, "store: list contacts")
			}
			formatContacts(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

func init() {
	storeAssessmentsCmd.Flags().String("business", "", "filter by business id")
	storeAssessmentsCmd.Flags().Int("limit", 50, "maximum rows")
	storeContactsCmd.Flags().Int("limit", 50, "maximum rows")

	storeCmd.AddCommand(storeMigrateCmd, storeAssessmentsCmd, storeContactsCmd)
	rootCmd.AddCommand(storeCmd)
}

func withStore(cmd *cobra.Command, fn func(ctx context.Context, st store.Store) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return eris.Wrap(err, "store: open")
	}
	if st == nil {
		return eris.New("store: no driver configured")
	}
	defer st.Close() //nolint:errcheck
	return fn(ctx, st)
}

func formatAssessments(out io.Writer, list []model.Assessment) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBUSINESS\tMONTH\tSCORE\tRISK\tSOURCE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t-----\t-----\t----\t------\t-------")
	for _, a := range list {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			truncateID(a.ID), a.BusinessID, a.Month, a.Score, a.RiskLevel, a.Source,
			a.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func formatContacts(out io.Writer, list []model.ContactMessage) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSUBJECT\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t-------\t-------")
	for _, c := range list {
		subject := c.Subject
		if len(subject) > 30 {
			subject = subject[:27] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(c.ID), c.Name, c.Email, subject, c.CreatedAt.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
