package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopflow/pipeline/internal/config"
	"github.com/shopflow/pipeline/internal/db"
)

// NewSetupCommand creates the setup command, the one-time schema bootstrap.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	var migrationsPath string

	cmd := &cobra.Command{
		Use:          "setup",
		Short:        "Run SQL migrations to create the base tables",
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

			if err := db.RunMigrations(ctx, conn, migrationsPath); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Setup done.")
			return nil
		},
	}

	cmd.Flags().StringVar(&migrationsPath, "migrations", "./migrations", "directory containing .up.sql migration files")

	return cmd
}
