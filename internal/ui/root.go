package ui

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/dori/taskdeck/internal/api"
	"github.com/dori/taskdeck/internal/app"
	"github.com/dori/taskdeck/internal/config"
	"github.com/dori/taskdeck/internal/ui/theme"
	"github.com/dori/taskdeck/internal/ui/views"
)

// header line plus two footer lines
const chromeHeight = 3

// Options configures the root model
type Options struct {
	PageSize       int
	SearchDebounce time.Duration
	// APIURL is only displayed
	APIURL string
}

// RootModel is the main application model. It owns the chrome around the
// task list: header, spinner, toasts and the help overlay.
type RootModel struct {
	keys   KeyMap
	help   help.Model
	width  int
	height int
	apiURL string

	list     views.ListView
	spinner  spinner.Model
	spinning bool

	toasts      []toast
	nextToastID int

	helpVisible  bool
	helpText     string
	statsVisible bool
}

// NewRootModel creates the root model for a configured application
func NewRootModel(application *app.App) RootModel {
	var desktop Desktop
	if application.Notifier != nil && application.Notifier.IsEnabled() {
		desktop = application.Notifier
	}
	cfg := application.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return New(application.API, NewToastNotifier(desktop), Options{
		PageSize:       cfg.UI.PageSize,
		SearchDebounce: cfg.UI.SearchDebounce,
		APIURL:         application.API.BaseURL(),
	})
}

// New creates a root model backed by svc
func New(svc api.Service, notifier views.Notifier, opts Options) RootModel {
	h := help.New()
	h.ShowAll = false

	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(theme.Current.Theme.Primary)

	return RootModel{
		keys:    DefaultKeyMap(),
		help:    h,
		apiURL:  opts.APIURL,
		spinner: s,
		list: views.NewListView(svc, notifier, views.ListOptions{
			PageSize:       opts.PageSize,
			SearchDebounce: opts.SearchDebounce,
		}),
	}
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	return m.list.Init()
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list = m.list.SetSize(m.width, m.contentHeight())
		if m.helpVisible {
			m.helpText = m.renderHelp()
		}
		return m, nil

	case ToastMsg:
		return m.addToast(msg)

	case toastExpiredMsg:
		return m.removeToast(msg.id), nil

	case spinner.TickMsg:
		if !m.list.Loading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ThemeChangedMsg:
		m.spinner.Style = lipgloss.NewStyle().Foreground(theme.Current.Theme.Primary)
		if m.helpVisible {
			m.helpText = m.renderHelp()
		}
		return m, nil

	case tea.KeyMsg:
		if model, cmd, handled := m.handleGlobalKey(msg); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	var updated tea.Model
	updated, cmd = m.list.Update(msg)
	m.list = updated.(views.ListView)
	return m.startSpinner(cmd)
}

// handleGlobalKey processes keys owned by the root. handled is false when
// the key should go to the list.
func (m RootModel) handleGlobalKey(msg tea.KeyMsg) (RootModel, tea.Cmd, bool) {
	inputMode := m.list.IsInputMode()

	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.ThemeCycle):
		return m.cycleTheme()
	}

	if m.helpVisible {
		switch msg.String() {
		case "?", "esc", "q":
			m.helpVisible = false
			m.helpText = ""
		}
		return m, nil, true
	}

	if inputMode {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = true
		m.helpText = m.renderHelp()
		return m, nil, true
	case key.Matches(msg, m.keys.Stats):
		m.statsVisible = !m.statsVisible
		m.list = m.list.SetSize(m.width, m.contentHeight())
		return m, nil, true
	}
	return m, nil, false
}

// startSpinner adds a spinner tick to cmd when a load has just started
func (m RootModel) startSpinner(cmd tea.Cmd) (RootModel, tea.Cmd) {
	if m.list.Loading() && !m.spinning {
		m.spinning = true
		return m, tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m RootModel) cycleTheme() (RootModel, tea.Cmd, bool) {
	next := theme.Next(theme.Current.Theme.Name)
	theme.SetTheme(next)
	return m, func() tea.Msg { return ThemeChangedMsg{ThemeName: next.Name} }, true
}

func (m RootModel) contentHeight() int {
	h := m.height - chromeHeight
	if m.statsVisible {
		h -= lipgloss.Height(views.RenderStatsCards(m.list.Stats()))
	}
	return max(h, 1)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	var content string
	switch {
	case m.helpVisible:
		content = m.helpText
	case m.statsVisible:
		content = views.RenderStatsCards(m.list.Stats()) + "\n\n" + m.list.View()
	default:
		content = m.list.View()
	}

	footer := m.renderFooter()
	if toasts := m.renderToasts(); toasts != "" {
		footer = lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts) + "\n" + footer
	}

	contentHeight := m.height - lipgloss.Height(footer) - 1
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content, footer)

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render(config.AppName)

	status := "  "
	if m.list.Loading() {
		status = m.spinner.View()
	}

	subtle := lipgloss.NewStyle().Foreground(t.Subtle).Padding(0, 1)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", status, " ", views.RenderStatsLine(m.list.Stats()))
	rightSide := subtle.Render(fmt.Sprintf("theme: %s", t.Name))

	gap := max(m.width-lipgloss.Width(leftSide)-lipgloss.Width(rightSide), 0)
	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the key hints
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	hint := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var line string
	switch {
	case m.helpVisible:
		line = hint("?/esc", "close help")
	case m.list.Mode() == views.ListModeAdd:
		line = hint("enter", "save") + sep + hint("tab", "priority") + sep + hint("esc", "cancel")
	case m.list.Mode() == views.ListModeEdit:
		line = hint("enter", "save") + sep + hint("tab", "priority") + sep + hint("esc", "cancel")
	case m.list.Mode() == views.ListModeConfirmDelete:
		line = hint("y", "delete") + sep + hint("n/esc", "keep")
	case m.list.Mode() == views.ListModeSearch:
		line = hint("enter/esc", "done")
	default:
		line = m.help.View(m.keys)
	}

	status := styles.Footer.Render(fmt.Sprintf("%s  page %d", m.apiURL, m.list.Query().Page))
	return line + "\n" + status
}

// helpMarkdown lists every binding in the key map
func (m RootModel) helpMarkdown() string {
	var b strings.Builder
	b.WriteString("# " + config.AppName + "\n\n")
	if m.apiURL != "" {
		fmt.Fprintf(&b, "Connected to `%s`\n\n", m.apiURL)
	}

	sections := []string{"Navigation", "Filter and search", "Tasks", "General"}
	for i, group := range m.keys.FullHelp() {
		fmt.Fprintf(&b, "## %s\n\n", sections[i])
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "- `%s` %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("Titles are 3 to 100 characters and must be unique.\n")
	return b.String()
}

// renderHelp renders the help overlay with glamour
func (m RootModel) renderHelp() string {
	md := m.helpMarkdown()

	style := "dark"
	if !theme.ColorEnabled() {
		style = "notty"
	}
	width := max(m.width-4, 20)

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.Printf("help: %v", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.Printf("help: %v", err)
		return md
	}
	return strings.TrimRight(out, "\n")
}
