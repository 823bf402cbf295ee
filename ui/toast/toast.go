// Package toast provides the auto-dismissing notices shown in the status
// bar after list mutations.
package toast

import (
	"fmt"
	"image/color"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-recycler/style"
	"github.com/miosa/osa-recycler/ui/common"
)

// Level classifies toast severity.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

const (
	maxToasts = 3

	// TTL is how long a toast stays visible.
	TTL = 4 * time.Second
)

// ExpireMsg asks the model to drop expired toasts.
type ExpireMsg struct{}

// Expire returns a command that delivers ExpireMsg once a toast added now
// has timed out.
func Expire() tea.Cmd {
	return tea.Tick(TTL, func(time.Time) tea.Msg { return ExpireMsg{} })
}

type toast struct {
	message string
	level   Level
	expiry  time.Time
}

// Model is a bounded queue of toasts, newest last.
type Model struct {
	queue []toast
}

// New creates an empty Model.
func New() Model {
	return Model{}
}

// Add enqueues a toast at time now. The oldest toasts are dropped past
// maxToasts.
func (m *Model) Add(message string, level Level, now time.Time) {
	q := append(m.queue[:len(m.queue):len(m.queue)], toast{
		message: message,
		level:   level,
		expiry:  now.Add(TTL),
	})
	if len(q) > maxToasts {
		q = q[len(q)-maxToasts:]
	}
	m.queue = q
}

// Prune drops the toasts expired at now.
func (m *Model) Prune(now time.Time) {
	alive := make([]toast, 0, len(m.queue))
	for _, t := range m.queue {
		if now.Before(t.expiry) {
			alive = append(alive, t)
		}
	}
	m.queue = alive
}

// Len reports how many toasts are visible.
func (m Model) Len() int {
	return len(m.queue)
}

// View renders the newest toast on one line, truncated to width. Older
// toasts stay queued until they expire or are pushed out.
func (m Model) View(width int) string {
	if len(m.queue) == 0 || width <= 0 {
		return ""
	}
	t := m.queue[len(m.queue)-1]
	icon, col := iconColor(t.level)
	text := fmt.Sprintf("%s %s", icon, t.message)
	if n := len(m.queue); n > 1 {
		text += fmt.Sprintf(" (+%d)", n-1)
	}
	return lipgloss.NewStyle().Foreground(col).Render(common.Truncate(text, width))
}

func iconColor(level Level) (string, color.Color) {
	switch level {
	case Warning:
		return "⚠", style.Warning
	case Error:
		return "✘", style.Error
	default:
		return "✓", style.Success
	}
}
