// Package layout holds the sizing vocabulary shared by the binder and its host
// containers: measure specs, sizes, scroll axes, and the strategies that map a
// container's constraints onto its children.
package layout

import "fmt"

// Mode says how a Spec constrains a dimension.
type Mode int

const (
	Unspecified Mode = iota // any size is acceptable
	Exactly                 // the size must equal Spec.Size
	AtMost                  // the size may not exceed Spec.Size
)

func (m Mode) String() string {
	switch m {
	case Unspecified:
		return "unspecified"
	case Exactly:
		return "exactly"
	case AtMost:
		return "at_most"
	default:
		return "unknown"
	}
}

// Spec is a one-dimensional size constraint.
type Spec struct {
	Mode Mode
	Size int
}

// Exact returns a spec that pins the dimension to size.
func Exact(size int) Spec { return Spec{Mode: Exactly, Size: size} }

// Max returns a spec that caps the dimension at size.
func Max(size int) Spec { return Spec{Mode: AtMost, Size: size} }

// Free returns an unconstrained spec.
func Free() Spec { return Spec{Mode: Unspecified} }

func (s Spec) String() string {
	if s.Mode == Unspecified {
		return "unspecified"
	}
	return fmt.Sprintf("%s(%d)", s.Mode, s.Size)
}

// Resolve applies the spec to a desired size.
func (s Spec) Resolve(desired int) int {
	switch s.Mode {
	case Exactly:
		return s.Size
	case AtMost:
		if desired > s.Size {
			return s.Size
		}
		return desired
	default:
		return desired
	}
}

// Compatible reports whether a result measured as oldMeasured under old is
// still a valid answer for next. It never reports false for identical specs.
//
// Three cases are accepted besides equality:
//   - next is exact and equals the old measured size;
//   - old was unspecified and next is an at-most bound the old size fits in;
//   - both are at-most, next is tighter, and the old size still fits.
func Compatible(old, next Spec, oldMeasured int) bool {
	if old == next {
		return true
	}
	switch {
	case next.Mode == Exactly:
		return next.Size == oldMeasured
	case old.Mode == Unspecified && next.Mode == AtMost:
		return next.Size >= oldMeasured
	case old.Mode == AtMost && next.Mode == AtMost:
		return old.Size > next.Size && oldMeasured <= next.Size
	}
	return false
}

// Size is a measured width and height in cells.
type Size struct {
	Width  int
	Height int
}

// Axis identifies a scroll direction.
type Axis int

const (
	Vertical Axis = iota
	Horizontal
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Main returns the component of s along the axis.
func (a Axis) Main(s Size) int {
	if a == Horizontal {
		return s.Width
	}
	return s.Height
}

// Cross returns the component of s orthogonal to the axis.
func (a Axis) Cross(s Size) int {
	if a == Horizontal {
		return s.Height
	}
	return s.Width
}

// Specs splits a width/height pair into (main, cross) for the axis.
func (a Axis) Specs(widthSpec, heightSpec Spec) (main, cross Spec) {
	if a == Horizontal {
		return widthSpec, heightSpec
	}
	return heightSpec, widthSpec
}

// Compose builds a Size from main and cross extents.
func (a Axis) Compose(main, cross int) Size {
	if a == Horizontal {
		return Size{Width: main, Height: cross}
	}
	return Size{Width: cross, Height: main}
}
