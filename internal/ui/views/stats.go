package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskdeck/internal/model"
	"github.com/dori/taskdeck/internal/ui/theme"
)

// RenderStatsLine renders the compact totals shown in the header.
// Before the first stats response arrives the counts are shown as "-".
func RenderStatsLine(s model.Stats, ok bool) string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	count := func(n int) string {
		if !ok {
			return "-"
		}
		return fmt.Sprintf("%d", n)
	}

	parts := []string{styles.Label.Render("total ") + styles.Title.Render(count(s.Total))}
	for i := len(model.Priorities) - 1; i >= 0; i-- {
		p := model.Priorities[i]
		marker := lipgloss.NewStyle().Foreground(t.PriorityColor(p)).Render(p.Marker())
		parts = append(parts, marker+" "+count(s.Count(p)))
	}
	return strings.Join(parts, "  ")
}

// RenderStatsCards renders one card per priority with a bar scaled to the total
func RenderStatsCards(s model.Stats, ok bool) string {
	t := theme.Current.Theme

	cardStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 2).
		Width(18)

	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	value := func(n int) string {
		if !ok {
			return "-"
		}
		return fmt.Sprintf("%d", n)
	}

	cards := []string{cardStyle.Render(
		valueStyle.Render(value(s.Total)) + "\n" + labelStyle.Render("Total"),
	)}

	barMaxWidth := 12
	for i := len(model.Priorities) - 1; i >= 0; i-- {
		p := model.Priorities[i]
		n := s.Count(p)

		barWidth := 0
		if ok && s.Total > 0 {
			barWidth = n * barMaxWidth / s.Total
			if barWidth < 1 && n > 0 {
				barWidth = 1
			}
		}
		bar := lipgloss.NewStyle().Foreground(t.PriorityColor(p)).Render(strings.Repeat("█", barWidth))

		cards = append(cards, cardStyle.Render(
			valueStyle.Foreground(t.PriorityColor(p)).Render(value(n))+"\n"+
				labelStyle.Render(p.Label())+"\n"+bar,
		))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}
