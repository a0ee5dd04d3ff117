package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Stack
	PushDismissable key.Binding
	PushOffsetable  key.Binding
	PushLocked      key.Binding
	Pop             key.Binding
	PopInstant      key.Binding

	// Top window
	Offset     key.Binding
	Restore    key.Binding
	CycleStyle key.Binding

	// Journal
	Copy  key.Binding
	Clear key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PushDismissable, k.PushOffsetable, k.Pop, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PushDismissable, k.PushOffsetable, k.PushLocked, k.Pop, k.PopInstant},
		{k.Offset, k.Restore, k.CycleStyle},
		{k.Copy, k.Clear, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PushDismissable: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "push dismissable"),
		),
		PushOffsetable: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "push offsetable"),
		),
		PushLocked: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "push locked"),
		),
		Pop: key.NewBinding(
			key.WithKeys("x", "backspace"),
			key.WithHelp("x", "pop"),
		),
		PopInstant: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "pop (no animation)"),
		),
		Offset: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "lower top window"),
		),
		Restore: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "restore top window"),
		),
		CycleStyle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle style"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy journal"),
		),
		Clear: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear journal"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
