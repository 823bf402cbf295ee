// Package status renders the bottom status bar: key help, a compact
// summary of the binder's ranges, and the newest toast.
package status

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-recycler/style"
)

// Stats is a snapshot of the binder the status bar and sidebar display.
type Stats struct {
	Strategy string
	Items    int
	Hot      int // computed items with a valid layout
	Pending  int // computed items still waiting for a layout
	Ratio    float64
	Workers  int
	Paused   bool

	EstimateKnown bool
	Estimate      int

	// -1 when unknown.
	VisibleFirst, VisibleLast   int
	ComputedStart, ComputedEnd int
}

// EstimateText is the range estimate, or "unknown" before the first measure.
func (s Stats) EstimateText() string {
	if !s.EstimateKnown {
		return "unknown"
	}
	return fmt.Sprint(s.Estimate)
}

// VisibleText is the visible window as "first–last".
func (s Stats) VisibleText() string { return span(s.VisibleFirst, s.VisibleLast) }

// ComputedText is the computed range as "start–end".
func (s Stats) ComputedText() string { return span(s.ComputedStart, s.ComputedEnd) }

// PrefetchText is "on" or "paused".
func (s Stats) PrefetchText() string {
	if s.Paused {
		return "paused"
	}
	return "on"
}

func span(a, b int) string {
	if a < 0 {
		return "–"
	}
	return fmt.Sprintf("%d–%d", a, b)
}

// Model is the status bar state. Drive it via setters; it has no Update loop.
type Model struct {
	stats     Stats
	showStats bool
	keyHelp   string
	toast     string
	width     int
}

// New returns a zero-value Model.
func New() Model {
	return Model{}
}

// SetStats updates the binder snapshot. show is false when the sidebar
// already displays it.
func (m *Model) SetStats(s Stats, show bool) {
	m.stats = s
	m.showStats = show
}

// SetKeyHelp sets the rendered key help.
func (m *Model) SetKeyHelp(s string) { m.keyHelp = s }

// SetToast sets the rendered toast, or "" for none.
func (m *Model) SetToast(s string) { m.toast = s }

// SetWidth updates the terminal width the bar is clipped to.
func (m *Model) SetWidth(w int) { m.width = w }

// View renders the status bar on one line. The toast keeps its width at
// the right edge; key help and the range summary are clipped to what is
// left.
func (m Model) View() string {
	var parts []string
	if m.keyHelp != "" {
		parts = append(parts, m.keyHelp)
	}
	if m.showStats {
		s := m.stats
		parts = append(parts, style.Hint.Render(fmt.Sprintf("est %s · vis %s · range %s · %s",
			s.EstimateText(), s.VisibleText(), s.ComputedText(), s.PrefetchText())))
	}
	left := strings.Join(parts, "  ")
	if m.width <= 0 {
		if m.toast != "" {
			left = strings.TrimLeft(left+"  "+m.toast, " ")
		}
		return style.StatusBar.Render(left)
	}

	avail := max(m.width-style.StatusBar.GetHorizontalFrameSize(), 0)
	if m.toast == "" {
		return style.StatusBar.Render(clip(left, avail))
	}
	toast := clip(m.toast, avail)
	room := avail - lipgloss.Width(toast) - toastGap
	if room <= 0 {
		return style.StatusBar.Render(toast)
	}
	left = clip(left, room)
	pad := strings.Repeat(" ", room-lipgloss.Width(left)+toastGap)
	return style.StatusBar.Render(left + pad + toast)
}

// toastGap is the minimum space between the summary and the toast.
const toastGap = 2

func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
