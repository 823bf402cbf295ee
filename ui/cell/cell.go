// Package cell lays out message cards for a binder.Binder.
//
// A card is a Message component: a labelled, left-bordered block whose body
// is rendered as markdown, with an optional collapsible thinking section.
// Whether the thinking section is expanded lives in the item's State, so it
// survives the card being released and laid out again.
package cell

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"

	"github.com/miosa/osa-recycler/binder"
	"github.com/miosa/osa-recycler/layout"
	"github.com/miosa/osa-recycler/style"
)

// ---------------------------------------------------------------------------
// Components
// ---------------------------------------------------------------------------

// Role identifies who a message is from.
type Role int

const (
	RoleUser Role = iota
	RoleAgent
	RoleSystem
)

// Level classifies a system message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Message is the component a Builder lays out.
type Message struct {
	Role     Role
	Level    Level
	Author   string
	Content  string // markdown for agent messages, plain text otherwise
	Thinking string // collapsible; empty hides the section
}

// State is the per-item state a card keeps across releases.
type State struct {
	Expanded bool
	Toggles  int
}

// Toggle flips the thinking section. It has the signature
// binder.Binder.UpdateState expects.
func Toggle(s any) any {
	st, _ := s.(State)
	st.Expanded = !st.Expanded
	st.Toggles++
	return st
}

// ---------------------------------------------------------------------------
// Builder
// ---------------------------------------------------------------------------

const (
	// defaultWidth is used when the width is unconstrained.
	defaultWidth = 60

	thinkingCollapsedLines = 3
)

// Option configures a Builder.
type Option func(*Builder)

// WithLatency makes every layout take at least d, to make async prefetch
// observable. The wait honours context cancellation.
func WithLatency(d time.Duration) Option {
	return func(b *Builder) { b.latency = d }
}

// WithMarkdownStyle sets the glamour standard style ("dark", "light",
// "notty", ...). Defaults to "dark".
func WithMarkdownStyle(name string) Option {
	return func(b *Builder) {
		if name != "" {
			b.markdownStyle = name
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

type renderer struct {
	mu sync.Mutex
	r  *glamour.TermRenderer
}

// Builder implements binder.Builder for Message components. It is safe for
// concurrent use.
type Builder struct {
	latency       time.Duration
	markdownStyle string
	logger        *slog.Logger

	mu        sync.Mutex
	renderers map[int]*renderer
}

var _ binder.Builder = (*Builder)(nil)

// NewBuilder returns a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		markdownStyle: "dark",
		logger:        slog.Default(),
		renderers:     make(map[int]*renderer),
	}
	for _, o := range opts {
		o(b)
	}
	b.logger = b.logger.With("component", "cell")
	return b
}

// Layout renders info.Component, which must be a Message, within the given
// constraints.
func (b *Builder) Layout(ctx context.Context, info binder.RenderInfo, state any, widthSpec, heightSpec layout.Spec) (*binder.Result, error) {
	msg, ok := info.Component.(Message)
	if !ok {
		return nil, fmt.Errorf("cell: unsupported component %T", info.Component)
	}
	st, _ := state.(State)

	if b.latency > 0 {
		t := time.NewTimer(b.latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	width := widthSpec.Resolve(defaultWidth)
	if width <= 0 {
		return &binder.Result{State: st}, nil
	}
	out := b.render(msg, st, width)
	if heightSpec.Mode != layout.Unspecified {
		out = fitHeight(out, heightSpec.Resolve(lipgloss.Height(out)))
	}
	return &binder.Result{
		Size:   layout.Size{Width: width, Height: lipgloss.Height(out)},
		Output: out,
		State:  st,
	}, nil
}

func (b *Builder) render(msg Message, st State, width int) string {
	cw := max(width-2, 1) // border + padding

	borderColor := style.MsgBorderAgent
	var label, body string
	switch msg.Role {
	case RoleUser:
		borderColor = style.MsgBorderUser
		label = style.UserLabel.Render("❯  " + author(msg, "You"))
		body = msg.Content
	case RoleAgent:
		label = style.AgentLabel.Render("◈ " + author(msg, "Agent"))
		body = b.markdown(msg.Content, cw)
	default:
		borderColor = style.MsgBorderSystem
		switch msg.Level {
		case LevelWarning:
			borderColor = style.MsgBorderWarning
			body = lipgloss.NewStyle().Foreground(style.Warning).Render(msg.Content)
		case LevelError:
			borderColor = style.MsgBorderError
			body = style.ErrorText.Render(msg.Content)
		default:
			body = style.Faint.Render(msg.Content)
		}
	}

	parts := make([]string, 0, 3)
	if label != "" {
		parts = append(parts, label)
	}
	if msg.Thinking != "" {
		parts = append(parts, thinking(msg.Thinking, st.Expanded))
	}
	parts = append(parts, body)

	frame := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(borderColor).
		PaddingLeft(1).
		Width(width)
	return frame.Render(strings.Join(parts, "\n"))
}

func author(msg Message, fallback string) string {
	if msg.Author != "" {
		return msg.Author
	}
	return fallback
}

// thinking renders the collapsible section. Collapsed, it shows the first
// few lines and a count of the rest.
func thinking(text string, expanded bool) string {
	lines := strings.Split(text, "\n")
	toggle := "▸"
	if expanded {
		toggle = "▾"
	}
	header := fmt.Sprintf("%s Thinking", toggle)
	if !expanded && len(lines) > thinkingCollapsedLines {
		header += fmt.Sprintf(" (%d lines)", len(lines))
		hidden := len(lines) - thinkingCollapsedLines
		lines = append(lines[:thinkingCollapsedLines:thinkingCollapsedLines],
			style.Faint.Render(fmt.Sprintf("… %d more lines", hidden)))
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(style.Warning).
		PaddingLeft(1)
	return box.Render(style.ThinkingHeader.Render(header) + "\n" + style.ThinkingContent.Render(strings.Join(lines, "\n")))
}

// markdown renders md with a glamour renderer cached per wrap width, falling
// back to plain text on error.
func (b *Builder) markdown(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r, err := b.renderer(width)
	if err != nil {
		b.logger.Warn("markdown renderer unavailable", "width", width, "error", err)
		return md
	}
	r.mu.Lock()
	out, err := r.r.Render(md)
	r.mu.Unlock()
	if err != nil {
		b.logger.Warn("markdown render failed", "error", err)
		return md
	}
	return strings.Trim(out, "\n")
}

func (b *Builder) renderer(width int) (*renderer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.renderers[width]; ok {
		return r, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(b.markdownStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r := &renderer{r: tr}
	b.renderers[width] = r
	return r, nil
}

// fitHeight trims or pads s to exactly n lines.
func fitHeight(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
