package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dori/taskdeck/internal/api"
	"github.com/dori/taskdeck/internal/model"
	"github.com/dori/taskdeck/internal/ui/views"
)

func newAddCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task>",
		Short: "Quick add a task",
		Long: strings.TrimSpace(`
Add a task through the API. A word of the form !baja, !media or !alta
(or !low, !medium, !high) sets the priority and is removed from the title.
`),
		Example: `  taskdeck add "Renew passport !alta"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := parseQuickAdd(strings.Join(args, " "))
			if err := model.ValidateTitle(in.Title); err != nil {
				return err
			}

			client, err := e.client()
			if err != nil {
				return err
			}
			task, err := client.CreateTask(cmd.Context(), in)
			if err != nil {
				return userError(err, views.MsgCreateFailed)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created #%d: %s\n", task.ID, model.PlainTitle(task.Title))
			fmt.Fprintf(cmd.OutOrStdout(), "Priority: %s %s\n", task.Priority.Marker(), task.Priority.Label())
			return nil
		},
	}
}

// parseQuickAdd splits priority tokens out of text. Unknown !words stay
// in the title.
func parseQuickAdd(text string) api.TaskInput {
	in := api.TaskInput{Priority: model.PriorityLow}

	var titleParts []string
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "!") {
			titleParts = append(titleParts, word)
			continue
		}
		switch strings.ToLower(strings.TrimPrefix(word, "!")) {
		case "baja", "low", "l":
			in.Priority = model.PriorityLow
		case "media", "medium", "med", "m":
			in.Priority = model.PriorityMedium
		case "alta", "high", "hi", "h":
			in.Priority = model.PriorityHigh
		default:
			titleParts = append(titleParts, word)
		}
	}

	in.Title = strings.Join(titleParts, " ")
	return in
}

// userError reduces err to what the user should read
func userError(err error, fallback string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: request timed out", fallback)
	}
	return errors.New(api.UserMessage(err, fallback))
}
