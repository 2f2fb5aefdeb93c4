package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDatasetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets available in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := cat.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMETADATA")
			for _, entry := range entries {
				pairs := make([]string, 0, len(entry.Metadata))
				for k, v := range entry.Metadata {
					pairs = append(pairs, k+"="+v)
				}
				sort.Strings(pairs)
				fmt.Fprintf(w, "%s\t%s\n", entry.ID, strings.Join(pairs, ","))
			}
			return w.Flush()
		},
	}
	return cmd
}
