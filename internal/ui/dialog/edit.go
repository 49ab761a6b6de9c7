package dialog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dori/taskdeck/internal/model"
	"github.com/dori/taskdeck/internal/ui/theme"
)

// EditResultMsg is sent when an Edit dialog is confirmed or canceled.
// Title is already trimmed and valid when Canceled is false.
type EditResultMsg struct {
	ID       int64
	Title    string
	Priority model.Priority
	Canceled bool
}

// Edit is a title and priority form for an existing task
type Edit struct {
	ID    int64
	Width int

	input    textinput.Model
	priority model.Priority
	err      error
	active   bool
}

// NewEdit opens an edit dialog pre-filled with title and priority
func NewEdit(id int64, title string, priority model.Priority) Edit {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = model.MaxTitleLength
	ti.SetValue(title)
	ti.Focus()

	if !priority.Valid() {
		priority = model.PriorityLow
	}

	return Edit{
		ID:       id,
		input:    ti,
		priority: priority,
		active:   true,
	}
}

func (e Edit) Init() tea.Cmd {
	return textinput.Blink
}

// Active reports whether the dialog is still open
func (e Edit) Active() bool {
	return e.active
}

// Title returns the current, untrimmed input
func (e Edit) Title() string {
	return e.input.Value()
}

// Priority returns the selected priority
func (e Edit) Priority() model.Priority {
	return e.priority
}

// Err returns the validation error shown in the dialog, if any
func (e Edit) Err() error {
	return e.err
}

// Update handles enter (save), esc (cancel), tab (cycle priority) and
// forwards everything else to the title input
func (e Edit) Update(msg tea.Msg) (Edit, tea.Cmd) {
	if !e.active {
		return e, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			e.active = false
			id := e.ID
			return e, func() tea.Msg {
				return EditResultMsg{ID: id, Canceled: true}
			}

		case "enter":
			title := model.NormalizeTitle(e.input.Value())
			if err := model.ValidateTitle(title); err != nil {
				e.err = err
				return e, nil
			}
			e.err = nil
			e.active = false
			result := EditResultMsg{ID: e.ID, Title: title, Priority: e.priority}
			return e, func() tea.Msg { return result }

		case "tab":
			e.priority = e.priority.Next()
			return e, nil

		case "shift+tab":
			e.priority = e.priority.Next().Next()
			return e, nil
		}
	}

	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	if e.err != nil && model.ValidateTitle(model.NormalizeTitle(e.input.Value())) == nil {
		e.err = nil
	}
	return e, cmd
}

func (e Edit) View() string {
	if !e.active {
		return ""
	}
	styles := theme.Current.Styles
	t := theme.Current.Theme

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render("Edit task"))
	b.WriteString("\n\n")
	b.WriteString(styles.InputFocused.Render(e.input.View()))
	b.WriteString("\n")
	b.WriteString(styles.Label.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(e.input.Value()), model.MaxTitleLength)))
	b.WriteString("\n\n")

	b.WriteString(styles.Label.Render("Priority: "))
	for _, p := range model.Priorities {
		label := p.Marker() + " " + p.Label()
		if p == e.priority {
			b.WriteString(styles.FilterActive.Background(t.PriorityColor(p)).Render(label))
		} else {
			b.WriteString(styles.FilterInactive.Render(label))
		}
	}
	b.WriteString("\n")

	if e.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.InputError.Render(capitalize(e.err.Error())))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpKey.Render("enter") + styles.HelpDesc.Render(" save  "))
	b.WriteString(styles.HelpKey.Render("tab") + styles.HelpDesc.Render(" priority  "))
	b.WriteString(styles.HelpKey.Render("esc") + styles.HelpDesc.Render(" cancel"))

	panel := styles.Panel
	if e.Width > 0 {
		panel = panel.Width(min(e.Width-4, 70))
	}
	return panel.Render(b.String())
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
