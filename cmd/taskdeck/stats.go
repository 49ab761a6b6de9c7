package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dori/taskdeck/internal/ui/theme"
	"github.com/dori/taskdeck/internal/ui/views"
)

func newStatsCmd(e *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task totals by priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client()
			if err != nil {
				return err
			}
			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return userError(err, "Could not load stats")
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			theme.ConfigureColor()
			_, err = fmt.Fprintln(out, views.RenderStatsCards(stats, true))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw counts as JSON")
	return cmd
}

func newHealthCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := e.client()
			if err != nil {
				return err
			}
			doc, err := client.Health(cmd.Context())
			if err != nil {
				return userError(err, "API unreachable at "+client.BaseURL())
			}

			keys := make([]string, 0, len(doc))
			for k := range doc {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %v\n", k, doc[k])
			}
			return nil
		},
	}
}
