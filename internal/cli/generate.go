package cli

import (
	"github.com/spf13/cobra"

	"github.com/shopflow/pipeline/internal/config"
	"github.com/shopflow/pipeline/internal/generator"
)

// NewGenerateCommand creates the generate command, the synthetic data
// producer feeding the rest of the pipeline.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		outDir       string
		customers    int
		products     int
		transactions int
		seed         int64
	)

	cmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate synthetic customers, products and transactions CSVs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Loader.DataDir
			}

			return generator.Generate(generator.Config{
				OutDir:       outDir,
				Customers:    customers,
				Products:     products,
				Transactions: transactions,
				Seed:         seed,
			})
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default: loader data dir)")
	cmd.Flags().IntVar(&customers, "customers", 1000, "number of customers")
	cmd.Flags().IntVar(&products, "products", 500, "number of products")
	cmd.Flags().IntVar(&transactions, "transactions", 5000, "number of transactions")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")

	return cmd
}
