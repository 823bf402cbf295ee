package binder

import (
	"context"

	"github.com/miosa/osa-recycler/layout"
)

// RenderInfo describes one item: the opaque component handed to the Builder
// plus the placement hints the binder itself understands.
type RenderInfo struct {
	// Component is what the Builder lays out. The binder never inspects it.
	Component any

	// SpanSize and FullSpan place the item in grid and staggered strategies.
	SpanSize int
	FullSpan bool

	// LayoutHint is passed to the HandlerFactory to pick an execution
	// context for the item's async layout.
	LayoutHint string
}

// Span converts the placement hints for the layout strategy.
func (ri RenderInfo) Span() layout.Span {
	return layout.Span{Size: ri.SpanSize, Full: ri.FullSpan}
}

// Result is the output of laying out one item.
type Result struct {
	// Size is the measured size of the item.
	Size layout.Size

	// Output is whatever the host needs to draw the item.
	Output any

	// State is the item's logical state. It outlives Output: when a slot
	// is released the binder keeps State and hands it back to the Builder
	// on the next layout.
	State any
}

// Builder turns an item into a layout result. It is called without any
// binder lock held and may run on a worker goroutine.
type Builder interface {
	Layout(ctx context.Context, info RenderInfo, state any, widthSpec, heightSpec layout.Spec) (*Result, error)
}

// BuilderFunc adapts a function to Builder.
type BuilderFunc func(ctx context.Context, info RenderInfo, state any, widthSpec, heightSpec layout.Spec) (*Result, error)

func (f BuilderFunc) Layout(ctx context.Context, info RenderInfo, state any, widthSpec, heightSpec layout.Spec) (*Result, error) {
	return f(ctx, info, state, widthSpec, heightSpec)
}
