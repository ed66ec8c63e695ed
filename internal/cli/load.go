package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopflow/pipeline/internal/config"
	"github.com/shopflow/pipeline/internal/db"
	"github.com/shopflow/pipeline/internal/loader"
	"github.com/shopflow/pipeline/internal/repository"
)

// NewLoadCommand creates the load command: the idempotent batch load into
// Postgres with an audit-ledger entry per attempt.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dataDir   string
		loadDate  string
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load the raw datasets into Postgres (idempotent upsert)",
		Long: `Load customers, products and transactions from the data directory into
Postgres. Every attempt is recorded in the load_audit ledger; a failed
attempt keeps its audit row while all data mutations are discarded.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.Loader.DataDir = dataDir
			}
			if loadDate != "" {
				cfg.Loader.LoadDate = loadDate
			}
			if chunkSize > 0 {
				cfg.Loader.ChunkSize = chunkSize
			}

			date, err := config.ParseLoadDate(cfg.Loader.LoadDate)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			conn, err := db.NewConnection(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			orchestrator := loader.New(conn.Pool, repository.NewAuditRepository(conn.Pool), loader.Config{
				DataDir:   cfg.Loader.DataDir,
				ChunkSize: cfg.Loader.ChunkSize,
				LoadDate:  date,
			})

			batchID, err := orchestrator.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Load succeeded. batch_id=%s\n", batchID)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "", "directory containing the raw dataset files")
	cmd.Flags().StringVar(&loadDate, "load-date", "", "logical load date YYYY-MM-DD (default: today UTC)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "rows per storage round-trip")

	return cmd
}
