package cell

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miosa/osa-recycler/binder"
	"github.com/miosa/osa-recycler/layout"
)

func info(m Message) binder.RenderInfo { return binder.RenderInfo{Component: m} }

func thinkingLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("step-%d", i)
	}
	return strings.Join(lines, "\n")
}

func TestToggle(t *testing.T) {
	s := Toggle(nil)
	assert.Equal(t, State{Expanded: true, Toggles: 1}, s)
	s = Toggle(s)
	assert.Equal(t, State{Expanded: false, Toggles: 2}, s)
}

func TestLayout_UnsupportedComponent(t *testing.T) {
	b := NewBuilder()
	_, err := b.Layout(context.Background(), binder.RenderInfo{Component: 42}, nil, layout.Exact(40), layout.Free())
	assert.ErrorContains(t, err, "unsupported component int")
}

func TestLayout_UserMessage(t *testing.T) {
	b := NewBuilder(WithMarkdownStyle("notty"))
	res, err := b.Layout(context.Background(), info(Message{Role: RoleUser, Content: "hello there"}), nil, layout.Exact(40), layout.Free())
	require.NoError(t, err)

	out := res.Output.(string)
	assert.Equal(t, 40, res.Size.Width)
	assert.Equal(t, lipgloss.Height(out), res.Size.Height)
	assert.Contains(t, out, "You")
	assert.Contains(t, out, "hello there")
	assert.Equal(t, State{}, res.State)
}

func TestLayout_AgentMarkdown(t *testing.T) {
	b := NewBuilder(WithMarkdownStyle("notty"))
	msg := Message{Role: RoleAgent, Author: "osa", Content: "# Title\n\nSome **bold** text."}
	res, err := b.Layout(context.Background(), info(msg), nil, layout.Exact(50), layout.Free())
	require.NoError(t, err)

	out := res.Output.(string)
	assert.Contains(t, out, "osa")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
	assert.NotContains(t, out, "**")
}

func TestLayout_SystemLevels(t *testing.T) {
	b := NewBuilder()
	for _, lvl := range []Level{LevelInfo, LevelWarning, LevelError} {
		res, err := b.Layout(context.Background(), info(Message{Role: RoleSystem, Level: lvl, Content: "notice"}), nil, layout.Exact(30), layout.Free())
		require.NoError(t, err)
		assert.Contains(t, res.Output, "notice")
	}
}

func TestLayout_ThinkingFollowsState(t *testing.T) {
	b := NewBuilder()
	msg := Message{Role: RoleUser, Content: "q", Thinking: thinkingLines(8)}

	collapsed, err := b.Layout(context.Background(), info(msg), State{}, layout.Exact(40), layout.Free())
	require.NoError(t, err)
	expanded, err := b.Layout(context.Background(), info(msg), State{Expanded: true}, layout.Exact(40), layout.Free())
	require.NoError(t, err)

	assert.Contains(t, collapsed.Output, "5 more lines")
	assert.NotContains(t, collapsed.Output, "step-7")
	assert.Contains(t, expanded.Output, "step-7")
	assert.Greater(t, expanded.Size.Height, collapsed.Size.Height)
	assert.Equal(t, State{Expanded: true}, expanded.State)
}

func TestLayout_HeightConstraints(t *testing.T) {
	b := NewBuilder()
	msg := Message{Role: RoleUser, Content: "q", Thinking: thinkingLines(8)}

	exact, err := b.Layout(context.Background(), info(msg), State{Expanded: true}, layout.Exact(40), layout.Exact(20))
	require.NoError(t, err)
	assert.Equal(t, 20, exact.Size.Height)
	assert.Equal(t, 20, lipgloss.Height(exact.Output.(string)))

	capped, err := b.Layout(context.Background(), info(msg), State{Expanded: true}, layout.Exact(40), layout.Max(2))
	require.NoError(t, err)
	assert.Equal(t, 2, capped.Size.Height)
}

func TestLayout_UnconstrainedWidth(t *testing.T) {
	b := NewBuilder()
	res, err := b.Layout(context.Background(), info(Message{Content: "x"}), nil, layout.Free(), layout.Free())
	require.NoError(t, err)
	assert.Equal(t, defaultWidth, res.Size.Width)

	res, err = b.Layout(context.Background(), info(Message{Content: "x"}), nil, layout.Max(20), layout.Free())
	require.NoError(t, err)
	assert.Equal(t, 20, res.Size.Width)
}

func TestLayout_LatencyHonoursCancellation(t *testing.T) {
	b := NewBuilder(WithLatency(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Layout(ctx, info(Message{Content: "x"}), nil, layout.Exact(40), layout.Free())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuilder_StateSurvivesBinderRelease(t *testing.T) {
	inline := binder.HandlerFunc(func(task func()) error {
		task()
		return nil
	})
	b := binder.New(layout.NewLinear(layout.Vertical), NewBuilder(WithMarkdownStyle("notty")),
		binder.WithHandler(inline), binder.WithRangeRatio(0))
	t.Cleanup(func() { _ = b.Close() })

	infos := make([]binder.RenderInfo, 200)
	for i := range infos {
		infos[i] = info(Message{Role: RoleUser, Content: fmt.Sprintf("message %d", i), Thinking: thinkingLines(6)})
	}
	b.InsertRange(0, infos)
	var out layout.Size
	b.Measure(&out, layout.Exact(60), layout.Exact(30))

	b.UpdateState(0, Toggle)
	res, ok := b.Result(0)
	require.True(t, ok)
	assert.Contains(t, res.Output, "step-5")

	b.OnViewportChanged(150, 160)
	_, ok = b.Result(0)
	require.False(t, ok)
	assert.Equal(t, State{Expanded: true, Toggles: 1}, b.State(0))

	b.OnViewportChanged(0, 3)
	res, ok = b.Result(0)
	require.True(t, ok)
	assert.Contains(t, res.Output, "step-5")
}
