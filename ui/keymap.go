package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the key bindings for the scaffold.
type KeyMap struct {
	SwitchTabRight key.Binding
	SwitchTabLeft  key.Binding
	CloseOverlay   key.Binding
	Quit           key.Binding
}

func newKeyMap() *KeyMap {
	return &KeyMap{
		SwitchTabRight: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "next tab"),
		),
		SwitchTabLeft: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "previous tab"),
		),
		CloseOverlay: key.NewBinding(
			key.WithKeys("esc", "q"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
		),
	}
}
