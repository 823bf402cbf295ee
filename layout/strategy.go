package layout

import "sync/atomic"

// Span describes how many columns (or rows, for horizontal scrolling) an item
// occupies in a multi-span strategy. Linear strategies ignore it.
type Span struct {
	Size int  // span units; values below 1 count as 1
	Full bool // occupy every span regardless of Size
}

// Strategy answers the layout questions a binder needs without knowing how
// items are drawn. Implementations are Linear, Grid and Staggered.
type Strategy interface {
	// ScrollAxis is the direction the container scrolls in.
	ScrollAxis() Axis

	// SpanCount is the number of items that share one line across the
	// scroll axis. Linear strategies report 1.
	SpanCount() int

	// FirstVisible and LastVisible report the visible index bounds last
	// recorded with SetVisible, or -1 when nothing has been recorded.
	FirstVisible() int
	LastVisible() int
	SetVisible(first, last int)

	// EstimateViewportCount returns how many items fill one viewport given
	// the size of one measured item and the container's size.
	EstimateViewportCount(item, container Size) int

	// ChildWidthSpec and ChildHeightSpec derive a child's constraints from
	// the container's.
	ChildWidthSpec(widthSpec Spec, span Span) Spec
	ChildHeightSpec(heightSpec Spec, span Span) Spec
}

// viewport tracks the visible bounds reported by the host.
type viewport struct {
	first atomic.Int64
	last  atomic.Int64
}

func (v *viewport) FirstVisible() int { return int(v.first.Load()) }
func (v *viewport) LastVisible() int  { return int(v.last.Load()) }

func (v *viewport) SetVisible(first, last int) {
	v.first.Store(int64(first))
	v.last.Store(int64(last))
}

// ceilDiv divides rounding up; a non-positive divisor counts as 1.
func ceilDiv(n, d int) int {
	if d <= 0 {
		d = 1
	}
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// spanShare returns the cross-axis extent for span out of spanCount.
func spanShare(total, spanCount int, span Span) int {
	if spanCount <= 1 || span.Full {
		return total
	}
	size := span.Size
	if size < 1 {
		size = 1
	}
	if size > spanCount {
		size = spanCount
	}
	return total / spanCount * size
}

// crossSpec derives the cross-axis child spec for a multi-span strategy.
func crossSpec(spec Spec, spanCount int, span Span) Spec {
	if spec.Mode == Unspecified {
		return spec
	}
	return Exact(spanShare(spec.Size, spanCount, span))
}
