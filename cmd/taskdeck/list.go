package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/taskdeck/internal/export"
	"github.com/dori/taskdeck/internal/model"
	"github.com/dori/taskdeck/internal/ui/theme"
	"github.com/dori/taskdeck/internal/ui/views"
)

func newListCmd(e *env) *cobra.Command {
	var (
		format   string
		page     int
		perPage  int
		priority string
		search   string
		output   string
	)

	formats := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		formats = append(formats, string(f))
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			filter, err := model.ParseFilter(priority)
			if err != nil {
				return err
			}
			if page < 1 {
				return fmt.Errorf("--page must be at least 1")
			}
			if perPage == 0 {
				perPage = e.cfg.UI.PageSize
			}

			q := model.NewQueryState(perPage).
				WithFilter(filter).
				WithSearch(strings.TrimSpace(search))
			q.Page = page

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}

			theme.ConfigureColor()
			client, err := e.client()
			if err != nil {
				return err
			}
			if err := export.NewExporter(client).Export(cmd.Context(), w, q, f); err != nil {
				return userError(err, views.MsgLoadFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(export.Text), "Output format ("+strings.Join(formats, "|")+")")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Tasks per page (default from config)")
	cmd.Flags().StringVar(&priority, "priority", "all", "Priority filter (all|baja|media|alta)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive title search")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}
