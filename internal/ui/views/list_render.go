package views

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/dori/taskdeck/internal/model"
	"github.com/dori/taskdeck/internal/ui/theme"
)

const (
	emptyText         = "No tasks yet. Press a to add one."
	emptyFilteredText = "No tasks match the current filter or search."
	loadingText       = "Loading tasks..."
)

// SanitizeTitle returns s as plain text for the terminal
func SanitizeTitle(s string) string {
	return model.PlainTitle(s)
}

// PaginationControls is the state of the pager derived from the server's
// pagination. Visible is false when everything fits on one page.
type PaginationControls struct {
	Visible     bool
	Current     int
	Total       int
	PrevEnabled bool
	NextEnabled bool
}

// Controls derives the pager state. Prev/next follow the server's
// has_prev/has_next exactly.
func Controls(p model.Pagination) PaginationControls {
	if p.TotalPages <= 1 {
		return PaginationControls{}
	}
	return PaginationControls{
		Visible:     true,
		Current:     p.CurrentPage,
		Total:       p.TotalPages,
		PrevEnabled: p.HasPrev,
		NextEnabled: p.HasNext,
	}
}

// RenderPagination draws the pager, or nothing for a single page
func (v ListView) RenderPagination(p model.Pagination) string {
	c := Controls(p)
	if !c.Visible {
		return ""
	}
	styles := theme.Current.Styles

	button := func(label string, enabled bool) string {
		if enabled {
			return styles.PagerEnabled.Render(label)
		}
		return styles.PagerDisabled.Render(label)
	}

	return button("‹ prev", c.PrevEnabled) +
		styles.Label.Render(fmt.Sprintf("  Page %d of %d  ", c.Current, c.Total)) +
		button("next ›", c.NextEnabled)
}

// RenderFilters draws the filter bar with exactly one active entry
func (v ListView) RenderFilters() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var parts []string
	for i, f := range model.Filters {
		label := fmt.Sprintf("%d %s", i, f)
		if f != v.query.Filter {
			parts = append(parts, styles.FilterInactive.Render(label))
			continue
		}
		style := styles.FilterActive
		if p, ok := f.Priority(); ok {
			style = style.Background(t.PriorityColor(p))
		}
		parts = append(parts, style.Render(label))
	}
	return strings.Join(parts, " ")
}

// RenderTasks draws one row per task, or a placeholder when there are none
func (v ListView) RenderTasks(items []model.Task) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	if len(items) == 0 {
		if v.query.Filter != model.FilterAll || v.query.SearchText != "" {
			return styles.Empty.Render(emptyFilteredText)
		}
		return styles.Empty.Render(emptyText)
	}

	var rows []string
	for i, task := range items {
		date := task.FormatCreated()
		title := SanitizeTitle(task.Title)

		// 2 for the marker, 2 for padding, 2 between title and date
		if v.width > 0 {
			avail := v.width - 6 - lipgloss.Width(date) - 2
			if avail < 10 {
				avail = 10
			}
			title = ansi.Truncate(title, avail, "…")
		}

		marker := lipgloss.NewStyle().
			Foreground(t.PriorityColor(task.Priority)).
			Bold(true).
			Render(task.Priority.Marker())

		line := marker + " " + title
		if date != "" {
			gap := 2
			if v.width > 0 {
				gap = max(2, v.width-4-lipgloss.Width(line)-lipgloss.Width(date))
			}
			line += strings.Repeat(" ", gap) + styles.Date.Render(date)
		}

		if i == v.cursor && v.mode == ListModeNormal {
			rows = append(rows, styles.TaskSelected.Render(line))
		} else {
			rows = append(rows, styles.TaskNormal.Render(line))
		}
	}
	return strings.Join(rows, "\n")
}

func (v ListView) renderSearchBar() string {
	styles := theme.Current.Styles
	if v.mode == ListModeSearch {
		return styles.InputFocused.Render(v.search.View())
	}
	if v.query.SearchText == "" {
		return ""
	}
	return styles.Subtitle.Render(fmt.Sprintf("search: %q", v.query.SearchText)) +
		styles.Label.Render("  (esc to clear)")
}

func (v ListView) renderCreateForm() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render("New task"))
	b.WriteString("\n")
	b.WriteString(styles.InputFocused.Render(v.form.input.View()))
	b.WriteString("\n")

	counter := fmt.Sprintf("%d/%d", utf8.RuneCountInString(v.form.input.Value()), model.MaxTitleLength)
	b.WriteString(styles.Label.Render(counter + "  priority: "))
	for _, p := range model.Priorities {
		label := p.Marker() + " " + p.Label()
		if p == v.form.priority {
			b.WriteString(styles.FilterActive.Background(t.PriorityColor(p)).Render(label))
		} else {
			b.WriteString(styles.FilterInactive.Render(label))
		}
	}

	if v.form.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.InputError.Render(v.form.err))
	}
	return b.String()
}

// View renders the list view
func (v ListView) View() string {
	var sections []string

	sections = append(sections, v.RenderFilters())

	if bar := v.renderSearchBar(); bar != "" {
		sections = append(sections, bar)
	}

	if v.mode == ListModeAdd {
		sections = append(sections, v.renderCreateForm())
	}

	switch v.mode {
	case ListModeConfirmDelete:
		sections = append(sections, v.confirm.View())
	case ListModeEdit:
		sections = append(sections, v.edit.View())
	}

	if v.phase == PhaseIdle || (v.phase == PhaseLoading && v.page.Empty()) {
		sections = append(sections, theme.Current.Styles.Empty.Render(loadingText))
	} else {
		sections = append(sections, v.RenderTasks(v.page.Items))
	}

	if pager := v.RenderPagination(v.page.Pagination); pager != "" {
		sections = append(sections, pager)
	}

	return strings.Join(sections, "\n\n")
}
