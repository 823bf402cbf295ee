package layout

// Staggered lays items out in columns of independent extent. Every item takes
// exactly one column unless it is full span; Span.Size is ignored.
type Staggered struct {
	viewport
	axis      Axis
	spanCount int
}

// NewStaggered returns a staggered strategy with spanCount columns.
func NewStaggered(axis Axis, spanCount int) *Staggered {
	if spanCount < 1 {
		spanCount = 1
	}
	s := &Staggered{axis: axis, spanCount: spanCount}
	s.SetVisible(-1, -1)
	return s
}

func (s *Staggered) ScrollAxis() Axis { return s.axis }
func (s *Staggered) SpanCount() int   { return s.spanCount }

func (s *Staggered) EstimateViewportCount(item, container Size) int {
	return ceilDiv(s.axis.Main(container), s.axis.Main(item)) * s.spanCount
}

func (s *Staggered) ChildWidthSpec(widthSpec Spec, span Span) Spec {
	if s.axis == Horizontal {
		return Free()
	}
	return crossSpec(widthSpec, s.spanCount, Span{Size: 1, Full: span.Full})
}

func (s *Staggered) ChildHeightSpec(heightSpec Spec, span Span) Spec {
	if s.axis == Vertical {
		return Free()
	}
	return crossSpec(heightSpec, s.spanCount, Span{Size: 1, Full: span.Full})
}
