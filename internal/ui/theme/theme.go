package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/dori/taskdeck/internal/model"
)

// Theme defines the color scheme for the UI
type Theme struct {
	Name string

	// Base colors
	Background lipgloss.Color
	Foreground lipgloss.Color
	Subtle     lipgloss.Color
	Highlight  lipgloss.Color
	Border     lipgloss.Color

	// Semantic colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Info      lipgloss.Color

	// Priority colors
	PriorityLow    lipgloss.Color
	PriorityMedium lipgloss.Color
	PriorityHigh   lipgloss.Color
}

// PriorityColor returns the color used for p
func (t Theme) PriorityColor(p model.Priority) lipgloss.Color {
	switch p {
	case model.PriorityHigh:
		return t.PriorityHigh
	case model.PriorityMedium:
		return t.PriorityMedium
	default:
		return t.PriorityLow
	}
}

// Styles holds pre-computed lipgloss styles based on theme
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style

	TaskNormal   lipgloss.Style
	TaskSelected lipgloss.Style
	Date         lipgloss.Style
	Empty        lipgloss.Style

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style

	InputFocused lipgloss.Style
	Placeholder  lipgloss.Style
	InputError   lipgloss.Style

	Panel      lipgloss.Style
	PanelTitle lipgloss.Style

	FilterActive   lipgloss.Style
	FilterInactive lipgloss.Style
	PagerEnabled   lipgloss.Style
	PagerDisabled  lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style

	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style
}

// NewStyles creates styles from a theme
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		TaskNormal: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		TaskSelected: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Background(t.Highlight).
			Padding(0, 1),

		Date: lipgloss.NewStyle().
			Foreground(t.Subtle),

		Empty: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(1, 1),

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(t.Secondary).
			Italic(true),

		Label: lipgloss.NewStyle().
			Foreground(t.Subtle),

		InputFocused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),

		Placeholder: lipgloss.NewStyle().
			Foreground(t.Subtle),

		InputError: lipgloss.NewStyle().
			Foreground(t.Error),

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(1, 2),

		PanelTitle: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		FilterActive: lipgloss.NewStyle().
			Foreground(t.Background).
			Background(t.Primary).
			Bold(true).
			Padding(0, 1),

		FilterInactive: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Padding(0, 1),

		PagerEnabled: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		PagerDisabled: lipgloss.NewStyle().
			Foreground(t.Subtle).
			Faint(true),

		ToastSuccess: lipgloss.NewStyle().
			Foreground(t.Success).
			Bold(true),

		ToastError: lipgloss.NewStyle().
			Foreground(t.Error).
			Bold(true),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.Subtle),

		HelpSeparator: lipgloss.NewStyle().
			Foreground(t.Border),
	}
}

// Current holds the current active theme and styles
var Current = struct {
	Theme  Theme
	Styles Styles
}{
	Theme:  Nord,
	Styles: NewStyles(Nord),
}

// SetTheme changes the current theme
func SetTheme(t Theme) {
	Current.Theme = t
	Current.Styles = NewStyles(t)
}

// Available returns all available themes
func Available() []Theme {
	return []Theme{
		Nord,
		Dracula,
		Gruvbox,
		Catppuccin,
	}
}

// ByName returns a theme by its name
func ByName(name string) (Theme, bool) {
	for _, t := range Available() {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Next returns the theme after name, wrapping around
func Next(name string) Theme {
	themes := Available()
	for i, t := range themes {
		if t.Name == name {
			return themes[(i+1)%len(themes)]
		}
	}
	return themes[0]
}

// DisableColor forces plain output
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ConfigureColor honours NO_COLOR and CLICOLOR=0
func ConfigureColor() {
	if termenv.EnvNoColor() {
		DisableColor()
	}
}

// ColorEnabled reports whether styles currently emit colour
func ColorEnabled() bool {
	return lipgloss.ColorProfile() != termenv.Ascii
}
