// Package header renders the one-line title bar above the list.
package header

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-recycler/style"
	"github.com/miosa/osa-recycler/ui/common"
)

const title = "◈ osa recycler"

// Model holds what the header shows. The app refreshes it before each frame.
type Model struct {
	version  string
	strategy string
	items    int
	activity string
	width    int
}

// New returns a header for the given build version.
func New(version string) Model {
	return Model{version: version}
}

// SetWidth updates the terminal width used for the separator.
func (m *Model) SetWidth(w int) { m.width = w }

// SetList updates the strategy name and item count.
func (m *Model) SetList(strategy string, items int) {
	m.strategy = strategy
	m.items = items
}

// SetActivity sets the rendered spinner, or "" for none.
func (m *Model) SetActivity(s string) { m.activity = s }

// Height is the number of lines HeaderView renders.
func (m Model) Height() int { return 2 }

// View returns the title line, truncated to the terminal width.
func (m Model) View() string {
	line := style.GradientTextBold(title, style.GradColorA, style.GradColorB)
	if m.version != "" {
		line += " " + style.Hint.Render(m.version)
	}
	line += style.Faint.Render(fmt.Sprintf("  %s · %d items", m.strategy, m.items))
	if m.activity != "" {
		line += "  " + m.activity
	}
	if m.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

// HeaderView returns the title line plus a thin separator.
func (m Model) HeaderView() string {
	return m.View() + "\n" + common.Divider(m.width)
}
