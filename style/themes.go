package style

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme is a named palette. Message borders and the title gradient are
// derived from it in SetTheme.
type Theme struct {
	Name  string
	Light bool

	Primary, Secondary      color.Color
	Success, Warning, Error color.Color
	Muted, Dim, Border      color.Color
}

// palette builds a Theme from hex values in field order:
// primary, secondary, success, warning, error, muted, dim, border.
func palette(name string, light bool, hex ...string) Theme {
	c := make([]color.Color, len(hex))
	for i, h := range hex {
		c[i] = lipgloss.Color(h)
	}
	return Theme{
		Name: name, Light: light,
		Primary: c[0], Secondary: c[1],
		Success: c[2], Warning: c[3], Error: c[4],
		Muted: c[5], Dim: c[6], Border: c[7],
	}
}

// ThemeNames lists the accepted theme names; the first is the default.
var ThemeNames = []string{"dark", "light", "catppuccin", "tokyo-night"}

// Themes maps every name in ThemeNames to its palette.
var Themes = map[string]Theme{
	"dark": palette("dark", false,
		"#7C3AED", "#06B6D4", "#22C55E", "#F59E0B", "#EF4444", "#6B7280", "#374151", "#4B5563"),
	"light": palette("light", true,
		"#6D28D9", "#0891B2", "#16A34A", "#D97706", "#DC2626", "#9CA3AF", "#D1D5DB", "#9CA3AF"),
	"catppuccin": palette("catppuccin", false,
		"#CBA6F7", "#89DCEB", "#A6E3A1", "#F9E2AF", "#F38BA8", "#6C7086", "#45475A", "#585B70"),
	"tokyo-night": palette("tokyo-night", false,
		"#7AA2F7", "#7DCFFF", "#9ECE6A", "#E0AF68", "#F7768E", "#565F89", "#3B4261", "#414868"),
}

// CurrentThemeName is the name last applied by SetTheme.
var CurrentThemeName string
