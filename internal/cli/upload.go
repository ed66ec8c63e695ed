package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopflow/pipeline/internal/cloud"
	"github.com/shopflow/pipeline/internal/config"
	"github.com/shopflow/pipeline/internal/domain"
)

// NewUploadCommand creates the upload command, the object storage stage
// that ships raw CSVs into a dated bucket layout.
func NewUploadCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dataDir          string
		bucket           string
		prefix           string
		date             string
		enableVersioning bool
	)

	cmd := &cobra.Command{
		Use:          "upload",
		Short:        "Upload raw CSVs to S3-compatible object storage",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			if dataDir == "" {
				dataDir = cfg.Loader.DataDir
			}
			if bucket != "" {
				cfg.Storage.Bucket = bucket
			}
			if prefix != "" {
				cfg.Storage.Prefix = prefix
			}
			if cfg.Storage.Bucket == "" {
				return fmt.Errorf("target bucket is required")
			}

			when := time.Now().UTC()
			if date != "" {
				when, err = time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
				}
			}

			store, err := cloud.NewS3Client(cfg.Storage)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if enableVersioning {
				if err := store.EnsureVersioning(ctx, cfg.Storage.Bucket); err != nil {
					return err
				}
			}

			var datasets []string
			for _, ds := range domain.DefaultDatasets() {
				datasets = append(datasets, ds.FileStem)
			}

			uploader := cloud.NewUploader(store, cfg.Storage.Bucket, cfg.Storage.Prefix)
			manifest, err := uploader.UploadDatasets(ctx, dataDir, datasets, when)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Upload manifest:")
			for _, ds := range datasets {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s: s3://%s/%s\n", ds, cfg.Storage.Bucket, manifest[ds])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data", "", "directory containing the raw dataset files")
	cmd.Flags().StringVar(&bucket, "bucket", "", "target bucket name")
	cmd.Flags().StringVar(&prefix, "prefix", "", "top-level object prefix")
	cmd.Flags().StringVar(&date, "date", "", "partition date YYYY-MM-DD (default: today UTC)")
	cmd.Flags().BoolVar(&enableVersioning, "enable-versioning", false, "enable bucket versioning before upload")

	return cmd
}
