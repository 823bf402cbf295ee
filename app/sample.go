package app

import (
	"fmt"
	"strings"

	"github.com/miosa/osa-recycler/binder"
	"github.com/miosa/osa-recycler/ui/cell"
)

// Layout hints routed by the handler factory.
const (
	hintMarkdown = "markdown"
	hintPlain    = "plain"
)

var topics = []string{
	"the range estimate",
	"async prefetch",
	"slot state",
	"grid spans",
	"viewport reporting",
	"stale layouts",
	"worker saturation",
}

// sampleMessage returns the seq-th demo message. The sequence cycles through
// user questions, agent answers with markdown and thinking, and the odd
// system notice.
func sampleMessage(seq int) cell.Message {
	topic := topics[seq%len(topics)]
	switch {
	case seq%9 == 8:
		lvl := cell.LevelInfo
		if seq%2 == 0 {
			lvl = cell.LevelWarning
		}
		return cell.Message{
			Role:    cell.RoleSystem,
			Level:   lvl,
			Content: fmt.Sprintf("#%d · checkpoint after %s", seq, topic),
		}
	case seq%2 == 0:
		return cell.Message{
			Role:    cell.RoleUser,
			Content: fmt.Sprintf("#%d · How does %s behave when the list scrolls fast?", seq, topic),
		}
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(topic[:1])+topic[1:])
		for i := range seq%4 + 1 {
			fmt.Fprintf(&b, "- point %d about **%s** (message #%d)\n", i+1, topic, seq)
		}
		if seq%3 == 0 {
			b.WriteString("\n```go\nb.OnViewportChanged(first, last)\n```\n")
		}
		var thinking string
		if seq%4 == 1 {
			steps := make([]string, seq%5+4)
			for i := range steps {
				steps[i] = fmt.Sprintf("step %d: consider %s", i+1, topic)
			}
			thinking = strings.Join(steps, "\n")
		}
		return cell.Message{
			Role:     cell.RoleAgent,
			Author:   "osa",
			Content:  b.String(),
			Thinking: thinking,
		}
	}
}

// renderInfo wraps msg for the binder. System notices span the full row in
// multi-span strategies; agent answers take two spans.
func renderInfo(msg cell.Message) binder.RenderInfo {
	info := binder.RenderInfo{Component: msg, SpanSize: 1, LayoutHint: hintPlain}
	switch msg.Role {
	case cell.RoleAgent:
		info.LayoutHint = hintMarkdown
		info.SpanSize = 2
	case cell.RoleSystem:
		info.FullSpan = true
	}
	return info
}

func sampleInfos(from, n int) []binder.RenderInfo {
	infos := make([]binder.RenderInfo, n)
	for i := range infos {
		infos[i] = renderInfo(sampleMessage(from + i))
	}
	return infos
}
