// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings of the migration view.
type KeyMap struct {
	// Quit leaves the view once the migration has finished.
	Quit key.Binding

	// Warnings toggles the warning list.
	Warnings key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Warnings: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "warnings"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Warnings, k.Quit}
}
