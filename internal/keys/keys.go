// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the grid view.
type KeyMap struct {
	// Panning
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	// Actions
	Recenter     key.Binding
	AutoScroll   key.Binding
	Select       key.Binding
	ToggleKeys   key.Binding
	ToggleStatus key.Binding

	// General
	Help      key.Binding
	ToggleLog key.Binding
	Escape    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "pan up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "pan down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "pan left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "pan right"),
		),

		Recenter: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "recenter"),
		),
		AutoScroll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle auto-scroll"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show center tile"),
		),
		ToggleKeys: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle tile keys"),
		),
		ToggleStatus: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "toggle status bar"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "toggle log (debug)"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Recenter, k.AutoScroll, k.Select, k.ToggleKeys, k.ToggleStatus},
		{k.Help, k.ToggleLog, k.Escape, k.Quit},
	}
}
