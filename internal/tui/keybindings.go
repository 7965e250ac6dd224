// Package tui implements the terminal user interface using Bubble Tea.
package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	// Control
	CtrlC key.Binding

	// Consent prompt
	Grant key.Binding
	Deny  key.Binding

	// Question screen
	Submit key.Binding
	Skip   key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "exit"),
	),
	Grant: key.NewBinding(
		key.WithKeys("y", "Y", "enter"),
		key.WithHelp("y", "allow camera"),
	),
	Deny: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n", "decline"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "submit answer"),
	),
	Skip: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "skip question"),
	),
}
