package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PrevPage key.Binding
	NextPage key.Binding

	// Query
	Filter      key.Binding
	FilterPick  key.Binding
	Search      key.Binding
	ClearSearch key.Binding

	// Task Actions
	Add     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Copy    key.Binding
	Refresh key.Binding

	// General
	Stats      key.Binding
	ThemeCycle key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "left", "pgup"),
			key.WithHelp("←/h", "prev page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "right", "pgdown"),
			key.WithHelp("→/l", "next page"),
		),

		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
		FilterPick: key.NewBinding(
			key.WithKeys("0", "1", "2", "3"),
			key.WithHelp("0-3", "pick filter"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),

		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("enter", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "x", "delete"),
			key.WithHelp("d", "delete"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy title"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),

		Stats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stats"),
		),
		ThemeCycle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Delete, k.Search, k.Filter, k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PrevPage, k.NextPage},
		{k.Filter, k.FilterPick, k.Search, k.ClearSearch},
		{k.Add, k.Edit, k.Delete, k.Copy, k.Refresh},
		{k.Stats, k.ThemeCycle, k.Help, k.Quit},
	}
}
