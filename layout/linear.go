package layout

// Linear lays items out one after another along a single axis.
type Linear struct {
	viewport
	axis Axis
}

// NewLinear returns a list strategy scrolling along axis.
func NewLinear(axis Axis) *Linear {
	l := &Linear{axis: axis}
	l.SetVisible(-1, -1)
	return l
}

func (l *Linear) ScrollAxis() Axis { return l.axis }
func (l *Linear) SpanCount() int   { return 1 }

// EstimateViewportCount is ceil(container extent / item extent) along the
// scroll axis.
func (l *Linear) EstimateViewportCount(item, container Size) int {
	return ceilDiv(l.axis.Main(container), l.axis.Main(item))
}

func (l *Linear) ChildWidthSpec(widthSpec Spec, _ Span) Spec {
	if l.axis == Horizontal {
		return Free()
	}
	return widthSpec
}

func (l *Linear) ChildHeightSpec(heightSpec Spec, _ Span) Spec {
	if l.axis == Vertical {
		return Free()
	}
	return heightSpec
}
