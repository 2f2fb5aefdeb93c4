package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/anomalab/anomalab-go/internal/catalog"
	"github.com/anomalab/anomalab-go/internal/platform/objectstore"
)

type rootOptions struct {
	logger      *slog.Logger
	datasetsDir string
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	opts := &rootOptions{logger: logger}

	cmd := &cobra.Command{
		Use:           "anomalab",
		Short:         "Benchmark anomaly detection algorithms on time series datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.datasetsDir, "datasets-dir", "",
		"directory of dataset CSV files; when empty the object store from ANOMALAB_MINIO_* is used")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newExpandCmd(opts))
	cmd.AddCommand(newDatasetsCmd(opts))
	return cmd
}

// openCatalog picks the dataset backend: a local directory when
// --datasets-dir is set, the MinIO bucket otherwise. The bucket is
// created on first use so a fresh deployment needs no manual setup.
func (o *rootOptions) openCatalog(ctx context.Context) (catalog.Catalog, error) {
	if o.datasetsDir != "" {
		return catalog.NewFSCatalog(o.datasetsDir)
	}
	cfg, err := objectstore.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("object store config: %w", err)
	}
	client, err := objectstore.NewMinIOClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}
	setupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := objectstore.EnsureDatasetsBucket(setupCtx, client, cfg); err != nil {
		return nil, fmt.Errorf("ensure datasets bucket: %w", err)
	}
	return catalog.NewObjectCatalog(client, cfg.BucketDatasets)
}
