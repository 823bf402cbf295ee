package layout

// Grid lays items out in lines of uniform spans. An item may cover several
// spans, or the whole line when its Span is Full.
type Grid struct {
	viewport
	axis      Axis
	spanCount int
}

// NewGrid returns a grid strategy with spanCount spans per line. A span count
// below 1 is treated as 1.
func NewGrid(axis Axis, spanCount int) *Grid {
	if spanCount < 1 {
		spanCount = 1
	}
	g := &Grid{axis: axis, spanCount: spanCount}
	g.SetVisible(-1, -1)
	return g
}

func (g *Grid) ScrollAxis() Axis { return g.axis }
func (g *Grid) SpanCount() int   { return g.spanCount }

// EstimateViewportCount is the number of lines that fit, times the span count.
func (g *Grid) EstimateViewportCount(item, container Size) int {
	return ceilDiv(g.axis.Main(container), g.axis.Main(item)) * g.spanCount
}

func (g *Grid) ChildWidthSpec(widthSpec Spec, span Span) Spec {
	if g.axis == Horizontal {
		return Free()
	}
	return crossSpec(widthSpec, g.spanCount, span)
}

func (g *Grid) ChildHeightSpec(heightSpec Spec, span Span) Spec {
	if g.axis == Vertical {
		return Free()
	}
	return crossSpec(heightSpec, g.spanCount, span)
}
