package app

// State represents the current application state.
type State int

const (
	StateBrowsing State = iota // Scrolling and editing the list
	StateHelp                  // Full keybinding help replaces the status line
)

func (s State) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateHelp:
		return "help"
	default:
		return "unknown"
	}
}
