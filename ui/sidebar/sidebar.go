// Package sidebar renders the stats panel shown beside the list in wide
// terminals.
package sidebar

import (
	"fmt"
	"strings"

	"github.com/miosa/osa-recycler/style"
	"github.com/miosa/osa-recycler/ui/common"
	"github.com/miosa/osa-recycler/ui/status"
)

const labelWidth = 8

// Model is the sidebar pane shown in LayoutSidebar mode.
type Model struct {
	stats  status.Stats
	width  int
	height int
}

// New returns a zero-value sidebar Model.
func New() Model {
	return Model{}
}

// SetSize sets the outer size of the pane, border included.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetStats updates the binder snapshot.
func (m *Model) SetStats(s status.Stats) { m.stats = s }

// View renders the pane at its full size.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}
	inner := m.width - style.SidebarStyle.GetHorizontalFrameSize()
	s := m.stats
	row := func(label, value string) string {
		return common.StatRow(label, value, labelWidth, inner)
	}
	lines := []string{
		style.SidebarTitle.Render("Binder"),
		row("strategy", s.Strategy),
		row("items", fmt.Sprint(s.Items)),
		row("estimate", s.EstimateText()),
		row("visible", s.VisibleText()),
		row("computed", s.ComputedText()),
		row("hot", fmt.Sprint(s.Hot)),
		row("pending", fmt.Sprint(s.Pending)),
		row("ratio", fmt.Sprintf("%.2f", s.Ratio)),
		row("workers", fmt.Sprint(s.Workers)),
		row("prefetch", s.PrefetchText()),
	}
	return style.SidebarStyle.
		Width(m.width).
		Height(m.height).
		Render(strings.Join(lines, "\n"))
}
