package style

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Colors of the active theme, set by SetTheme.
var (
	Primary   color.Color
	Secondary color.Color
	Success   color.Color
	Warning   color.Color
	Error     color.Color
	Muted     color.Color
	Dim       color.Color
	Border    color.Color

	MsgBorderUser    color.Color
	MsgBorderAgent   color.Color
	MsgBorderSystem  color.Color
	MsgBorderWarning color.Color
	MsgBorderError   color.Color

	// Gradient endpoints for the header title.
	GradColorA color.Color
	GradColorB color.Color
)

// Styles, rebuilt by SetTheme. Message cells are laid out on binder
// workers and read these concurrently, so the theme is fixed before the
// program starts.
var (
	Faint     lipgloss.Style
	ErrorText lipgloss.Style

	// Message cells
	UserLabel       lipgloss.Style
	AgentLabel      lipgloss.Style
	ThinkingHeader  lipgloss.Style
	ThinkingContent lipgloss.Style

	// Status bar
	StatusBar lipgloss.Style
	Hint      lipgloss.Style

	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	HelpSeparator lipgloss.Style

	// Stats sidebar
	SidebarStyle lipgloss.Style
	SidebarTitle lipgloss.Style
	SidebarLabel lipgloss.Style
	SidebarValue lipgloss.Style

	ScrollbarThumb lipgloss.Style
	ScrollbarTrack lipgloss.Style
)

func init() {
	SetTheme(ThemeNames[0])
}

// SetTheme applies a named theme, updating all color vars and rebuilding
// styles. It reports false for an unknown name and leaves the theme as is.
func SetTheme(name string) bool {
	t, ok := Themes[name]
	if !ok {
		return false
	}
	CurrentThemeName = name
	dark = !t.Light
	Primary, Secondary = t.Primary, t.Secondary
	Success, Warning, Error = t.Success, t.Warning, t.Error
	Muted, Dim, Border = t.Muted, t.Dim, t.Border

	MsgBorderUser = t.Secondary
	MsgBorderAgent = t.Primary
	MsgBorderSystem = t.Dim
	MsgBorderWarning = t.Warning
	MsgBorderError = t.Error
	GradColorA, GradColorB = t.Primary, t.Secondary
	rebuildStyles()
	return true
}

var dark bool

// IsDark returns whether the current theme is dark.
func IsDark() bool { return dark }

func rebuildStyles() {
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	UserLabel = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	AgentLabel = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	ThinkingHeader = lipgloss.NewStyle().Foreground(Warning).Bold(true)
	ThinkingContent = lipgloss.NewStyle().Foreground(Dim)

	StatusBar = lipgloss.NewStyle().Foreground(Muted).PaddingLeft(1)
	Hint = lipgloss.NewStyle().Foreground(Dim)

	HelpKey = lipgloss.NewStyle().Foreground(Secondary).Bold(true)
	HelpDesc = lipgloss.NewStyle().Foreground(Muted)
	HelpSeparator = lipgloss.NewStyle().Foreground(Dim)

	SidebarStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(Border).
		PaddingLeft(1).PaddingRight(1)
	SidebarTitle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	SidebarLabel = lipgloss.NewStyle().Foreground(Muted)
	SidebarValue = lipgloss.NewStyle().Foreground(Secondary)

	ScrollbarThumb = lipgloss.NewStyle().Foreground(Primary)
	ScrollbarTrack = lipgloss.NewStyle().Foreground(Dim)
}
