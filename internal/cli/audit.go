package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopflow/pipeline/internal/config"
	"github.com/shopflow/pipeline/internal/db"
	"github.com/shopflow/pipeline/internal/repository"
)

// NewAuditCommand creates the audit command, a read-only view over the
// load_audit ledger.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:          "audit",
		Short:        "List recorded load attempts, most recent first",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			conn, err := db.NewConnection(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			attempts, err := repository.NewAuditRepository(conn.Pool).List(ctx, limit, offset)
			if err != nil {
				return err
			}

			for _, attempt := range attempts {
				finished := "-"
				if attempt.FinishedAt != nil {
					finished = attempt.FinishedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-9s  started=%s finished=%s details=%s\n",
					attempt.BatchID,
					attempt.LoadDate.Format("2006-01-02"),
					attempt.Status,
					attempt.StartedAt.Format(time.RFC3339),
					finished,
					attempt.Details,
				)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d attempts\n", len(attempts))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of attempts to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of attempts to skip")

	return cmd
}
