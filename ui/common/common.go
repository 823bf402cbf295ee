// Package common provides the rendering helpers shared by the list, the
// message cells and the app chrome.
package common

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-recycler/style"
)

// Truncate shortens s to maxLen runes, appending "…" if truncated.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

// PadRight pads s on the right with spaces until the rendered display width
// equals width. Returns s unchanged if it already meets or exceeds width.
func PadRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Divider returns a horizontal rule of the given width rendered in the border color.
func Divider(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(style.Border).Render(strings.Repeat("─", width))
}

// StatRow renders "label value" for the stats sidebar, padding the label to
// labelWidth columns and truncating the value to fit within width.
func StatRow(label, value string, labelWidth, width int) string {
	room := width - labelWidth - 1
	if room < 1 {
		room = 1
	}
	return style.SidebarLabel.Render(PadRight(label, labelWidth)) + " " +
		style.SidebarValue.Render(Truncate(value, room))
}
