package app

import "charm.land/bubbles/v2/key"

// KeyMap defines all global keybindings.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding

	// Navigation
	ScrollUp     key.Binding // k
	ScrollDown   key.Binding // j
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding // u
	HalfPageDown key.Binding // d
	ScrollTop    key.Binding
	ScrollBottom key.Binding

	// Item state
	ToggleThinking key.Binding

	// Mutations
	Append    key.Binding
	Prepend   key.Binding
	Remove    key.Binding
	Edit      key.Binding
	MoveToEnd key.Binding
	Shuffle   key.Binding

	// Prefetch and panels
	TogglePrefetch key.Binding
	ToggleSidebar  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "help"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "space"),
			key.WithHelp("pgdn", "page down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "half page down"),
		),
		ScrollTop: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		ScrollBottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		ToggleThinking: key.NewBinding(
			key.WithKeys("enter", "t"),
			key.WithHelp("enter", "toggle thinking"),
		),
		Append: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "append"),
		),
		Prepend: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "insert at top"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "remove"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		MoveToEnd: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move to end"),
		),
		Shuffle: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "replace all"),
		),
		TogglePrefetch: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause prefetch"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("s", "ctrl+l"),
			key.WithHelp("s", "toggle stats"),
		),
	}
}

// ShortHelp is the status bar subset.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ScrollDown, k.ToggleThinking, k.Append, k.Remove, k.Help, k.Quit}
}

// FullHelp groups every binding for the help panel.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ScrollUp, k.ScrollDown, k.HalfPageUp, k.HalfPageDown},
		{k.PageUp, k.PageDown, k.ScrollTop, k.ScrollBottom},
		{k.ToggleThinking, k.TogglePrefetch, k.ToggleSidebar},
		{k.Help, k.Quit},
		{k.Append, k.Prepend, k.Remove},
		{k.Edit, k.MoveToEnd, k.Shuffle},
	}
}
