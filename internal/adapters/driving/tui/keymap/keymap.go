// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	Up     key.Binding
	Down   key.Binding
	Select key.Binding

	// Refresh reloads the current view from the store.
	Refresh key.Binding

	// Deeper and Shallower change the reference resolve depth.
	Deeper    key.Binding
	Shallower key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Deeper: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "resolve deeper"),
		),
		Shallower: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "resolve less"),
		),
	}
}

// ListHelp returns keybindings shown under a list.
func (k *KeyMap) ListHelp() []key.Binding {
	return []key.Binding{k.Select, k.Back, k.Refresh, k.Quit}
}

// DocumentHelp returns keybindings shown under a document.
func (k *KeyMap) DocumentHelp() []key.Binding {
	return []key.Binding{k.Deeper, k.Shallower, k.Back, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back},
		{k.Refresh, k.Deeper, k.Shallower},
		{k.Help, k.Quit},
	}
}
