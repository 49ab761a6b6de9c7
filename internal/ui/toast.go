package ui

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskdeck/internal/ui/theme"
	"github.com/dori/taskdeck/internal/ui/views"
)

// Desktop sends notifications outside the terminal
type Desktop interface {
	SendSuccess(body string) error
	SendError(body string) error
}

// ToastNotifier turns view notifications into toasts, mirroring them to
// the desktop when one is configured
type ToastNotifier struct {
	desktop Desktop
}

var _ views.Notifier = ToastNotifier{}

// NewToastNotifier returns a notifier; desktop may be nil
func NewToastNotifier(desktop Desktop) ToastNotifier {
	return ToastNotifier{desktop: desktop}
}

func (n ToastNotifier) NotifySuccess(msg string) tea.Cmd {
	return n.notify(ToastSuccess, msg)
}

func (n ToastNotifier) NotifyError(msg string) tea.Cmd {
	return n.notify(ToastError, msg)
}

func (n ToastNotifier) notify(kind ToastKind, text string) tea.Cmd {
	toast := func() tea.Msg { return ToastMsg{Kind: kind, Text: text} }
	if n.desktop == nil {
		return toast
	}
	desktop := n.desktop
	send := func() tea.Msg {
		var err error
		if kind == ToastError {
			err = desktop.SendError(text)
		} else {
			err = desktop.SendSuccess(text)
		}
		if err != nil {
			log.Printf("notify: %v", err)
		}
		return nil
	}
	return tea.Batch(toast, send)
}

type toast struct {
	id   int
	kind ToastKind
	text string
}

func (m RootModel) addToast(msg ToastMsg) (RootModel, tea.Cmd) {
	m.nextToastID++
	id := m.nextToastID
	m.toasts = append(m.toasts, toast{id: id, kind: msg.Kind, text: msg.Text})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return m, tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (m RootModel) removeToast(id int) RootModel {
	kept := m.toasts[:0:0]
	for _, t := range m.toasts {
		if t.id != id {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
	return m
}

func (m RootModel) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	styles := theme.Current.Styles
	var lines []string
	for _, t := range m.toasts {
		style := styles.ToastSuccess
		icon := "✓"
		if t.kind == ToastError {
			style = styles.ToastError
			icon = "✗"
		}
		lines = append(lines, style.Render(icon+" "+views.SanitizeTitle(t.text)))
	}
	return lipgloss.JoinVertical(lipgloss.Right, lines...)
}
