package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anomalab/anomalab-go/internal/config"
	"github.com/anomalab/anomalab-go/internal/detector"
	"github.com/anomalab/anomalab-go/internal/workflow"
)

func newExpandCmd(opts *rootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Print the run plan for a configuration without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cat, err := opts.openCatalog(cmd.Context())
			if err != nil {
				return err
			}

			orch := workflow.New(cat, detector.NewRegistry(), opts.logger)
			specs, err := orch.Expand(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATASET\tALGORITHM\tPARAMS\tHASH")
			for _, spec := range specs {
				params := make([]string, 0, len(spec.Params))
				for _, name := range spec.SortedParamNames() {
					params = append(params, fmt.Sprintf("%s=%g", name, spec.Params[name]))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					spec.DatasetID, spec.AlgorithmID,
					strings.Join(params, ","), spec.Hash()[:12])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d runs\n", len(specs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "benchmark configuration file (YAML)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}
