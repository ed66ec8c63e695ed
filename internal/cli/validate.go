package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopflow/pipeline/internal/config"
	"github.com/shopflow/pipeline/internal/quality"
)

// NewValidateCommand creates the validate command, the advisory data
// quality pass over the raw CSVs.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dataDir string
		logPath string
	)

	cmd := &cobra.Command{
		Use:          "validate",
		Short:        "Run data quality checks over the raw datasets",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			if dataDir == "" {
				dataDir = cfg.Loader.DataDir
			}

			report, err := quality.CheckDir(dataDir)
			if err != nil {
				return err
			}
			if err := report.WriteLog(logPath); err != nil {
				return err
			}

			for name, rows := range report.RowsChecked {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows checked\n", name, rows)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d findings (see %s)\n", len(report.Findings), logPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "", "directory containing the raw dataset files")
	cmd.Flags().StringVar(&logPath, "log", "logs/validation.log", "validation log file")

	return cmd
}
