// Package dialog holds the modal confirm and edit dialogs. A dialog
// reports its answer as a message so the caller's flow resumes in Update.
package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskdeck/internal/ui/theme"
)

// ConfirmResultMsg is sent once the user answers a Confirm dialog
type ConfirmResultMsg struct {
	ID       int64
	Accepted bool
}

// Confirm asks a yes/no question about the item ID
type Confirm struct {
	ID      int64
	Title   string
	Message string
	Width   int

	active bool
}

// NewConfirm creates an open confirm dialog
func NewConfirm(id int64, title, message string) Confirm {
	return Confirm{ID: id, Title: title, Message: message, active: true}
}

// Active reports whether the dialog is still waiting for an answer
func (c Confirm) Active() bool {
	return c.active
}

func (c Confirm) answer(accepted bool) (Confirm, tea.Cmd) {
	c.active = false
	id := c.ID
	return c, func() tea.Msg {
		return ConfirmResultMsg{ID: id, Accepted: accepted}
	}
}

// Update handles y/enter (accept) and n/esc (decline)
func (c Confirm) Update(msg tea.Msg) (Confirm, tea.Cmd) {
	if !c.active {
		return c, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	switch keyMsg.String() {
	case "y", "Y", "enter":
		return c.answer(true)
	case "n", "N", "esc", "q":
		return c.answer(false)
	}
	return c, nil
}

func (c Confirm) View() string {
	if !c.active {
		return ""
	}
	styles := theme.Current.Styles
	t := theme.Current.Theme

	warn := lipgloss.NewStyle().Foreground(t.Warning).Bold(true)

	var b strings.Builder
	b.WriteString(warn.Render(c.Title))
	b.WriteString("\n\n")
	b.WriteString(c.Message)
	b.WriteString("\n\n")
	b.WriteString(styles.HelpKey.Render("y") + styles.HelpDesc.Render(" confirm  "))
	b.WriteString(styles.HelpKey.Render("n") + styles.HelpDesc.Render(" cancel"))

	panel := styles.Panel.BorderForeground(t.Warning)
	if c.Width > 0 {
		panel = panel.Width(min(c.Width-4, 60))
	}
	return panel.Render(b.String())
}
