package policy

import (
	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/layout"
)

// =============================================================================
// Box
// =============================================================================

// Box measures every child with the loosened incoming constraints, sizes
// itself to the largest child and aligns each child inside that size.
type Box struct {
	Horizontal geom.Alignment
	Vertical   geom.Alignment
}

func (b Box) Measure(_ layout.MeasureScope, children []layout.Measurable, c geom.Constraints) layout.MeasureResult {
	loose := c.Loosen()
	ps := make([]layout.Placeable, len(children))
	w, h := c.MinWidth, c.MinHeight
	for i, m := range children {
		ps[i] = m.Measure(loose)
		w = max(w, ps[i].Width())
		h = max(h, ps[i].Height())
	}
	w, h = c.ConstrainWidth(w), c.ConstrainHeight(h)
	return layout.Layout(w, h, nil, func(s *layout.PlacementScope) {
		for _, p := range ps {
			s.PlaceRelative(p, b.Horizontal.Align(p.Width(), w), b.Vertical.Align(p.Height(), h))
		}
	})
}

func (Box) MinIntrinsicWidth(children []layout.IntrinsicMeasurable, height int) int {
	return maxOf(children, func(m layout.IntrinsicMeasurable) int { return m.MinIntrinsicWidth(height) })
}

func (Box) MaxIntrinsicWidth(children []layout.IntrinsicMeasurable, height int) int {
	return maxOf(children, func(m layout.IntrinsicMeasurable) int { return m.MaxIntrinsicWidth(height) })
}

func (Box) MinIntrinsicHeight(children []layout.IntrinsicMeasurable, width int) int {
	return maxOf(children, func(m layout.IntrinsicMeasurable) int { return m.MinIntrinsicHeight(width) })
}

func (Box) MaxIntrinsicHeight(children []layout.IntrinsicMeasurable, width int) int {
	return maxOf(children, func(m layout.IntrinsicMeasurable) int { return m.MaxIntrinsicHeight(width) })
}

func maxOf(children []layout.IntrinsicMeasurable, f func(layout.IntrinsicMeasurable) int) int {
	v := 0
	for _, m := range children {
		v = max(v, f(m))
	}
	return v
}

func sumOf(children []layout.IntrinsicMeasurable, f func(layout.IntrinsicMeasurable) int) int {
	v := 0
	for _, m := range children {
		v += f(m)
	}
	return v
}

// =============================================================================
// Empty
// =============================================================================

// Empty takes the minimum size of its constraints. Children are ignored.
var Empty layout.MeasurePolicy = layout.MeasurePolicyFunc(
	func(_ layout.MeasureScope, _ []layout.Measurable, c geom.Constraints) layout.MeasureResult {
		return layout.Layout(c.MinWidth, c.MinHeight, nil, nil)
	},
)

// =============================================================================
// Leaf
// =============================================================================

// LeafPolicy reports a content size and optional baselines. It has no
// children.
type LeafPolicy struct {
	size  func() geom.Size
	first func() int
	last  func() int
}

// LeafOption configures a LeafPolicy.
type LeafOption func(*LeafPolicy)

// WithBaseline exposes FirstBaseline at the offset fn returns. A negative
// offset hides the line.
func WithBaseline(fn func() int) LeafOption {
	return func(l *LeafPolicy) { l.first = fn }
}

// WithLastBaseline exposes LastBaseline at the offset fn returns.
func WithLastBaseline(fn func() int) LeafOption {
	return func(l *LeafPolicy) { l.last = fn }
}

// Leaf returns a policy whose content size is whatever size returns. The
// functions run inside the measure step, so reading observable state in them
// ties the node's measurement to that state.
func Leaf(size func() geom.Size, opts ...LeafOption) *LeafPolicy {
	l := &LeafPolicy{size: size}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FixedLeaf is a Leaf with a constant size.
func FixedLeaf(width, height int) *LeafPolicy {
	s := geom.Size{Width: width, Height: height}
	return Leaf(func() geom.Size { return s })
}

func (l *LeafPolicy) Measure(_ layout.MeasureScope, _ []layout.Measurable, c geom.Constraints) layout.MeasureResult {
	s := l.size()
	var lines map[*layout.AlignmentLine]int
	add := func(line *layout.AlignmentLine, fn func() int) {
		if fn == nil {
			return
		}
		if v := fn(); v >= 0 {
			if lines == nil {
				lines = make(map[*layout.AlignmentLine]int, 2)
			}
			lines[line] = v
		}
	}
	add(layout.FirstBaseline, l.first)
	add(layout.LastBaseline, l.last)
	return layout.Layout(c.ConstrainWidth(s.Width), c.ConstrainHeight(s.Height), lines, nil)
}

func (l *LeafPolicy) MinIntrinsicWidth(_ []layout.IntrinsicMeasurable, _ int) int  { return l.size().Width }
func (l *LeafPolicy) MaxIntrinsicWidth(_ []layout.IntrinsicMeasurable, _ int) int  { return l.size().Width }
func (l *LeafPolicy) MinIntrinsicHeight(_ []layout.IntrinsicMeasurable, _ int) int { return l.size().Height }
func (l *LeafPolicy) MaxIntrinsicHeight(_ []layout.IntrinsicMeasurable, _ int) int { return l.size().Height }
