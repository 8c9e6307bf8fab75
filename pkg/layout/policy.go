package layout

import (
	"maps"

	"github.com/matzehuels/lattice/pkg/geom"
)

// MeasureScope is available to measure policies and layout modifiers while
// they measure.
type MeasureScope interface {
	// IsLookingAhead reports whether this is the lookahead pass.
	IsLookingAhead() bool

	// LookaheadSize returns the size the current coordinator reached in the
	// lookahead pass, if the node is inside a lookahead scope and was
	// lookahead-measured.
	LookaheadSize() (geom.Size, bool)

	// Direction is the layout direction of the node being measured.
	Direction() Direction
}

// MeasureResult is what a measure policy or layout modifier produces: a size,
// the alignment lines it exposes, and a deferred placement of its children.
type MeasureResult interface {
	Size() geom.Size
	AlignmentLines() map[*AlignmentLine]int
	PlaceChildren(s *PlacementScope)
}

// MeasurePolicy measures a node's children and decides the node's size.
type MeasurePolicy interface {
	Measure(s MeasureScope, children []Measurable, c geom.Constraints) MeasureResult
}

// MeasurePolicyFunc adapts a function to a MeasurePolicy.
type MeasurePolicyFunc func(s MeasureScope, children []Measurable, c geom.Constraints) MeasureResult

// Measure calls f.
func (f MeasurePolicyFunc) Measure(s MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
	return f(s, children, c)
}

// IntrinsicPolicy is implemented by measure policies that can answer intrinsic
// size queries without running Measure. Policies that don't implement it are
// asked by running Measure with fake children that cannot be placed.
type IntrinsicPolicy interface {
	MinIntrinsicWidth(children []IntrinsicMeasurable, height int) int
	MaxIntrinsicWidth(children []IntrinsicMeasurable, height int) int
	MinIntrinsicHeight(children []IntrinsicMeasurable, width int) int
	MaxIntrinsicHeight(children []IntrinsicMeasurable, width int) int
}

// Layout builds a MeasureResult of the given size. place may be nil.
func Layout(width, height int, lines map[*AlignmentLine]int, place func(s *PlacementScope)) MeasureResult {
	return &layoutResult{
		size:  geom.Size{Width: width, Height: height},
		lines: lines,
		place: place,
	}
}

type layoutResult struct {
	size  geom.Size
	lines map[*AlignmentLine]int
	place func(s *PlacementScope)
}

func (r *layoutResult) Size() geom.Size                        { return r.size }
func (r *layoutResult) AlignmentLines() map[*AlignmentLine]int { return r.lines }

func (r *layoutResult) PlaceChildren(s *PlacementScope) {
	if r.place != nil {
		r.place(s)
	}
}

func sameLines(a, b map[*AlignmentLine]int) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return maps.Equal(a, b)
}

type measureScope struct {
	c    *coordinator
	pass Pass
}

func (s measureScope) IsLookingAhead() bool { return s.pass == PassLookahead }

func (s measureScope) LookaheadSize() (geom.Size, bool) {
	la := s.c.node.lookahead
	if la == nil || !la.measuredOnce {
		return geom.Size{}, false
	}
	return s.c.res[PassLookahead].size, true
}

func (s measureScope) Direction() Direction { return s.c.node.direction }

// =============================================================================
// Default intrinsics
// =============================================================================

type intrinsicMinMax int

const (
	intrinsicMin intrinsicMinMax = iota
	intrinsicMax
)

type intrinsicDimension int

const (
	intrinsicWidth intrinsicDimension = iota
	intrinsicHeight
)

// intrinsicMeasurable stands in for a child while a measure block runs to
// answer an intrinsic query. Measuring it returns a placeable sized by the
// child's own intrinsics.
type intrinsicMeasurable struct {
	m      IntrinsicMeasurable
	minMax intrinsicMinMax
	dim    intrinsicDimension
}

func (d intrinsicMeasurable) ParentData() any              { return d.m.ParentData() }
func (d intrinsicMeasurable) MinIntrinsicWidth(h int) int  { return d.m.MinIntrinsicWidth(h) }
func (d intrinsicMeasurable) MaxIntrinsicWidth(h int) int  { return d.m.MaxIntrinsicWidth(h) }
func (d intrinsicMeasurable) MinIntrinsicHeight(w int) int { return d.m.MinIntrinsicHeight(w) }
func (d intrinsicMeasurable) MaxIntrinsicHeight(w int) int { return d.m.MaxIntrinsicHeight(w) }

func (d intrinsicMeasurable) Measure(c geom.Constraints) Placeable {
	if d.dim == intrinsicWidth {
		w := d.m.MinIntrinsicWidth(c.MaxHeight)
		if d.minMax == intrinsicMax {
			w = d.m.MaxIntrinsicWidth(c.MaxHeight)
		}
		h := c.MaxHeight
		if !c.HasBoundedHeight() {
			h = d.m.MinIntrinsicHeight(w)
		}
		return fixedPlaceable{size: geom.Size{Width: w, Height: h}}
	}
	h := d.m.MinIntrinsicHeight(c.MaxWidth)
	if d.minMax == intrinsicMax {
		h = d.m.MaxIntrinsicHeight(c.MaxWidth)
	}
	w := c.MaxWidth
	if !c.HasBoundedWidth() {
		w = d.m.MinIntrinsicWidth(h)
	}
	return fixedPlaceable{size: geom.Size{Width: w, Height: h}}
}

// intrinsicConstraints are the synthetic constraints an intrinsic query
// measures with: the queried axis is unbounded, the other one fixed at size.
func intrinsicConstraints(dim intrinsicDimension, size int) geom.Constraints {
	if dim == intrinsicWidth {
		return geom.Constraints{MaxWidth: geom.Infinity, MaxHeight: size}
	}
	return geom.Constraints{MaxWidth: size, MaxHeight: geom.Infinity}
}

func pick(s geom.Size, dim intrinsicDimension) int {
	if dim == intrinsicWidth {
		return s.Width
	}
	return s.Height
}

// measuringIntrinsic runs a policy over fake children to answer one query.
func measuringIntrinsic(
	p MeasurePolicy,
	scope MeasureScope,
	children []IntrinsicMeasurable,
	minMax intrinsicMinMax,
	dim intrinsicDimension,
	size int,
) int {
	fakes := make([]Measurable, len(children))
	for i, ch := range children {
		fakes[i] = intrinsicMeasurable{m: ch, minMax: minMax, dim: dim}
	}
	return pick(p.Measure(scope, fakes, intrinsicConstraints(dim, size)).Size(), dim)
}

// policyIntrinsic answers an intrinsic query against a measure policy.
func policyIntrinsic(
	p MeasurePolicy,
	scope MeasureScope,
	children []IntrinsicMeasurable,
	minMax intrinsicMinMax,
	dim intrinsicDimension,
	size int,
) int {
	ip, ok := p.(IntrinsicPolicy)
	if !ok {
		return measuringIntrinsic(p, scope, children, minMax, dim, size)
	}
	switch {
	case dim == intrinsicWidth && minMax == intrinsicMin:
		return ip.MinIntrinsicWidth(children, size)
	case dim == intrinsicWidth:
		return ip.MaxIntrinsicWidth(children, size)
	case minMax == intrinsicMin:
		return ip.MinIntrinsicHeight(children, size)
	default:
		return ip.MaxIntrinsicHeight(children, size)
	}
}
