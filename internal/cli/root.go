package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the shopflow CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "shopflow",
		Short: "ShopFlow retail data pipeline",
		Long:  "Generates, validates, loads and ships synthetic retail data (customers, products, transactions).",
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config-path", ".", "directory containing config.yaml")

	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSetupCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewUploadCommand(opts))
	cmd.AddCommand(NewAuditCommand(opts))

	return cmd
}
