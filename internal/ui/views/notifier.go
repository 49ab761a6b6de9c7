package views

import tea "github.com/charmbracelet/bubbletea"

// Notifier shows transient feedback. Both methods return a fire-and-forget
// command; a nil command is allowed.
type Notifier interface {
	NotifySuccess(msg string) tea.Cmd
	NotifyError(msg string) tea.Cmd
}

// NopNotifier drops every notification
type NopNotifier struct{}

func (NopNotifier) NotifySuccess(string) tea.Cmd { return nil }
func (NopNotifier) NotifyError(string) tea.Cmd   { return nil }
