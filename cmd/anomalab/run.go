package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anomalab/anomalab-go/internal/config"
	"github.com/anomalab/anomalab-go/internal/detector"
	"github.com/anomalab/anomalab-go/internal/domain"
	"github.com/anomalab/anomalab-go/internal/platform/postgres"
	"github.com/anomalab/anomalab-go/internal/results"
	"github.com/anomalab/anomalab-go/internal/workflow"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		configPath string
		resultsOut string
		storeKind  string
		batchLabel string
		saveEvery  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the benchmark batch described by a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			cat, err := opts.openCatalog(ctx)
			if err != nil {
				return err
			}

			var store results.Store
			switch storeKind {
			case "csv":
				store = results.NewCSVStore(resultsOut)
			case "postgres":
				dbCfg, err := postgres.ConfigFromEnv()
				if err != nil {
					return fmt.Errorf("database config: %w", err)
				}
				db, err := postgres.Open(ctx, dbCfg)
				if err != nil {
					return fmt.Errorf("database unavailable: %w", err)
				}
				defer func() { _ = db.Close() }()
				store, err = results.NewPostgresStore(db, batchLabel)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown store %q, want csv or postgres", storeKind)
			}

			orch := workflow.New(cat, detector.NewRegistry(), opts.logger)
			table, err := orch.Run(ctx, cfg, workflow.RunOptions{
				Store:     store,
				SaveEvery: saveEvery,
			})
			if err != nil {
				return err
			}

			var failed int
			for _, rec := range table.Records() {
				if rec.Status == domain.RunStatusFailed {
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "completed %d runs (%d failed)\n", table.Len(), failed)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "benchmark configuration file (YAML)")
	cmd.Flags().StringVar(&resultsOut, "results", "results.csv", "result table path for the csv store")
	cmd.Flags().StringVar(&storeKind, "store", "csv", "result store backend: csv or postgres")
	cmd.Flags().StringVar(&batchLabel, "batch-label", "default", "batch label for the postgres store")
	cmd.Flags().BoolVar(&saveEvery, "save-every", false, "persist the table after every completed run")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
