// Package anim provides the gradient braille spinner shown in the header
// while layouts in the computed range are still pending.
package anim

import (
	"math"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/miosa/osa-recycler/style"
)

const (
	fps           = 20
	frameDuration = time.Second / fps
	// ellipsisFrames is how many frames elapse per ellipsis state.
	ellipsisFrames = 8
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var ellipsisStates = []string{"", ".", "..", "..."}

// idCounter keeps TickMsgs of different spinners apart.
var idCounter atomic.Int64

// TickMsg advances the spinner with the matching ID by one frame.
type TickMsg struct {
	ID int64
}

// Model is a spinner with a label. The zero value is not usable; call New.
type Model struct {
	id          int64
	label       string
	spinning    bool
	frame       int
	ellipsisIdx int
	glyphs      []string // pre-rendered, one per frame
}

// New creates a stopped spinner colored with the current theme gradient.
func New(label string) Model {
	return Model{
		id:     idCounter.Add(1),
		label:  label,
		glyphs: renderGlyphs(),
	}
}

// Start begins the animation and returns the first tick, or nil if the
// spinner is already running.
func (m *Model) Start() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	m.frame, m.ellipsisIdx = 0, 0
	return m.tick()
}

// Stop halts the animation. The next TickMsg is dropped.
func (m *Model) Stop() {
	m.spinning = false
}

// SetLabel changes the label text.
func (m *Model) SetLabel(s string) {
	m.label = s
}

// Spinning reports whether the animation is running.
func (m Model) Spinning() bool {
	return m.spinning
}

// Update advances the frame on a TickMsg addressed to this spinner.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != m.id || !m.spinning {
		return m, nil
	}
	m.frame = (m.frame + 1) % len(frames)
	if m.frame%ellipsisFrames == 0 {
		m.ellipsisIdx = (m.ellipsisIdx + 1) % len(ellipsisStates)
	}
	return m, m.tick()
}

// View renders the current frame, or "" when stopped.
func (m Model) View() string {
	if !m.spinning {
		return ""
	}
	glyph := m.glyphs[m.frame%len(m.glyphs)]
	if m.label == "" {
		return glyph
	}
	return glyph + " " + style.Faint.Render(m.label+ellipsisStates[m.ellipsisIdx])
}

func (m Model) tick() tea.Cmd {
	id := m.id
	return tea.Tick(frameDuration, func(time.Time) tea.Msg {
		return TickMsg{ID: id}
	})
}

// renderGlyphs colors each frame along a sine wave between the gradient
// endpoints so the color bounces rather than wraps.
func renderGlyphs() []string {
	n := len(frames)
	out := make([]string, n)
	for i, glyph := range frames {
		t := (math.Sin(math.Pi*float64(i)/float64(n-1)) + 1) / 2
		c := style.LerpColor(style.GradColorA, style.GradColorB, t)
		out[i] = lipgloss.NewStyle().Foreground(c).Render(glyph)
	}
	return out
}
