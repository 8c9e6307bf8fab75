package policy

import (
	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/layout"
)

// =============================================================================
// Padding
// =============================================================================

type padding struct {
	left, top, right, bottom int
}

// Padding insets the content by n on every side.
func Padding(n int) layout.Element { return padding{n, n, n, n} }

// PaddingXY insets the content by x horizontally and y vertically.
func PaddingXY(x, y int) layout.Element { return padding{x, y, x, y} }

// PaddingLTRB insets each side separately.
func PaddingLTRB(left, top, right, bottom int) layout.Element {
	return padding{left, top, right, bottom}
}

func (padding) Kinds() layout.Kind { return layout.KindLayout }

func (p padding) Measure(_ layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	h, v := p.left+p.right, p.top+p.bottom
	pl := m.Measure(c.Offset(-h, -v))
	w := c.ConstrainWidth(pl.Width() + h)
	ht := c.ConstrainHeight(pl.Height() + v)
	return layout.Layout(w, ht, nil, func(s *layout.PlacementScope) {
		s.PlaceRelative(pl, p.left, p.top)
	})
}

func (p padding) MinIntrinsicWidth(_ layout.MeasureScope, m layout.IntrinsicMeasurable, height int) int {
	return m.MinIntrinsicWidth(shrink(height, p.top+p.bottom)) + p.left + p.right
}

func (p padding) MaxIntrinsicWidth(_ layout.MeasureScope, m layout.IntrinsicMeasurable, height int) int {
	return m.MaxIntrinsicWidth(shrink(height, p.top+p.bottom)) + p.left + p.right
}

func (p padding) MinIntrinsicHeight(_ layout.MeasureScope, m layout.IntrinsicMeasurable, width int) int {
	return m.MinIntrinsicHeight(shrink(width, p.left+p.right)) + p.top + p.bottom
}

func (p padding) MaxIntrinsicHeight(_ layout.MeasureScope, m layout.IntrinsicMeasurable, width int) int {
	return m.MaxIntrinsicHeight(shrink(width, p.left+p.right)) + p.top + p.bottom
}

func shrink(v, by int) int {
	if v == geom.Infinity {
		return v
	}
	return max(v-by, 0)
}

// =============================================================================
// Size
// =============================================================================

type size struct{ width, height int }

// Size asks for exactly width x height, within the incoming constraints.
func Size(width, height int) layout.Element { return size{width, height} }

// Width fixes the width and leaves the height to the content.
func Width(width int) layout.Element { return size{width, -1} }

// Height fixes the height and leaves the width to the content.
func Height(height int) layout.Element { return size{-1, height} }

func (size) Kinds() layout.Kind { return layout.KindLayout }

func (s size) Measure(_ layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	cc := c
	if s.width >= 0 {
		w := c.ConstrainWidth(s.width)
		cc.MinWidth, cc.MaxWidth = w, w
	}
	if s.height >= 0 {
		h := c.ConstrainHeight(s.height)
		cc.MinHeight, cc.MaxHeight = h, h
	}
	p := m.Measure(cc)
	return layout.Layout(p.Width(), p.Height(), nil, func(ps *layout.PlacementScope) {
		ps.Place(p, 0, 0)
	})
}

// =============================================================================
// Offset and z
// =============================================================================

type offset struct{ x, y int }

// Offset shifts the content by (x, y) without changing the node's size.
func Offset(x, y int) layout.Element { return offset{x, y} }

func (offset) Kinds() layout.Kind { return layout.KindLayout }

func (o offset) Measure(_ layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	p := m.Measure(c)
	return layout.Layout(p.Width(), p.Height(), nil, func(s *layout.PlacementScope) {
		s.PlaceRelative(p, o.x, o.y)
	})
}

type zIndex float64

// ZIndex adds z to the node's z-index among its siblings.
func ZIndex(z float64) layout.Element { return zIndex(z) }

func (zIndex) Kinds() layout.Kind { return layout.KindLayout }

func (z zIndex) Measure(_ layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	p := m.Measure(c)
	return layout.Layout(p.Width(), p.Height(), nil, func(s *layout.PlacementScope) {
		s.PlaceAt(p, geom.Offset{}, float64(z))
	})
}

// =============================================================================
// Layers
// =============================================================================

type graphicsLayer struct{ props layout.LayerProperties }

// GraphicsLayer draws the content into its own layer with the given
// properties, usually built from layout.DefaultLayerProperties. Coordinate
// conversions through the node apply the layer's transform.
func GraphicsLayer(p layout.LayerProperties) layout.Element { return graphicsLayer{p} }

func (graphicsLayer) Kinds() layout.Kind { return layout.KindLayout | layout.KindLayer }

func (g graphicsLayer) Measure(_ layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	p := m.Measure(c)
	return layout.Layout(p.Width(), p.Height(), nil, func(s *layout.PlacementScope) {
		s.PlaceWithLayer(p, geom.Offset{}, 0, func(lp *layout.LayerProperties) { *lp = g.props })
	})
}

// =============================================================================
// Drawing and callbacks
// =============================================================================

type background string

// Background fills the node's bounds with color before drawing the content.
func Background(color string) layout.Element { return background(color) }

func (background) Kinds() layout.Kind { return layout.KindDraw }

func (b background) Draw(s *layout.DrawScope) {
	s.FillRect(geom.RectOf(geom.Offset{}, s.Size), string(b), s.Node.String())
	s.DrawContent()
}

type onPositioned struct{ fn *func(*layout.Node) }

// OnPositioned calls fn after every pass in which the node's position or size
// may have changed.
func OnPositioned(fn func(*layout.Node)) layout.Element { return onPositioned{&fn} }

func (onPositioned) Kinds() layout.Kind { return layout.KindPositioned }

func (o onPositioned) OnPositioned(n *layout.Node) { (*o.fn)(n) }

// =============================================================================
// Baselines
// =============================================================================

type paddingFromBaseline struct{ top, bottom int }

// PaddingFromBaseline pads the content so that its first baseline sits top
// below the node's top edge and its last baseline sits bottom above the
// bottom edge. Sides without a baseline get no padding.
func PaddingFromBaseline(top, bottom int) layout.Element {
	return paddingFromBaseline{top, bottom}
}

func (paddingFromBaseline) Kinds() layout.Kind { return layout.KindLayout }

func (p paddingFromBaseline) Measure(_ layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	pl := m.Measure(geom.Constraints{MinWidth: c.MinWidth, MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight})
	before, after := 0, 0
	if first := pl.Get(layout.FirstBaseline); first != layout.Unspecified {
		before = max(p.top-first, 0)
	}
	if last := pl.Get(layout.LastBaseline); last != layout.Unspecified {
		after = max(p.bottom-(pl.Height()-last), 0)
	}
	h := c.ConstrainHeight(pl.Height() + before + after)
	return layout.Layout(pl.Width(), h, nil, func(s *layout.PlacementScope) {
		s.Place(pl, 0, before)
	})
}

// =============================================================================
// Lookahead
// =============================================================================

type snapToLookahead struct{}

// SnapToLookahead makes the committed pass measure the content at the size
// the lookahead pass computed for it. Outside a lookahead scope it does
// nothing.
func SnapToLookahead() layout.Element { return snapToLookahead{} }

func (snapToLookahead) Kinds() layout.Kind { return layout.KindLayout }

func (snapToLookahead) Measure(s layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	cc := c
	if !s.IsLookingAhead() {
		if target, ok := s.LookaheadSize(); ok {
			cc = geom.Fixed(c.ConstrainWidth(target.Width), c.ConstrainHeight(target.Height))
		}
	}
	p := m.Measure(cc)
	return layout.Layout(p.Width(), p.Height(), nil, func(ps *layout.PlacementScope) {
		ps.Place(p, 0, 0)
	})
}

// =============================================================================
// Intrinsics
// =============================================================================

// IntrinsicSize selects which intrinsic an intrinsic modifier uses.
type IntrinsicSize int

const (
	Min IntrinsicSize = iota
	Max
)

type intrinsicWidth struct{ size IntrinsicSize }

// IntrinsicWidth fixes the width to the content's min or max intrinsic width.
func IntrinsicWidth(s IntrinsicSize) layout.Element { return intrinsicWidth{s} }

func (intrinsicWidth) Kinds() layout.Kind { return layout.KindLayout }

func (iw intrinsicWidth) Measure(_ layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	var w int
	if iw.size == Min {
		w = m.MinIntrinsicWidth(c.MaxHeight)
	} else {
		w = m.MaxIntrinsicWidth(c.MaxHeight)
	}
	w = c.ConstrainWidth(w)
	p := m.Measure(geom.Constraints{MinWidth: w, MaxWidth: w, MinHeight: c.MinHeight, MaxHeight: c.MaxHeight})
	return layout.Layout(p.Width(), p.Height(), nil, func(s *layout.PlacementScope) {
		s.Place(p, 0, 0)
	})
}

type intrinsicHeight struct{ size IntrinsicSize }

// IntrinsicHeight fixes the height to the content's min or max intrinsic
// height.
func IntrinsicHeight(s IntrinsicSize) layout.Element { return intrinsicHeight{s} }

func (intrinsicHeight) Kinds() layout.Kind { return layout.KindLayout }

func (ih intrinsicHeight) Measure(_ layout.MeasureScope, m layout.Measurable, c geom.Constraints) layout.MeasureResult {
	var h int
	if ih.size == Min {
		h = m.MinIntrinsicHeight(c.MaxWidth)
	} else {
		h = m.MaxIntrinsicHeight(c.MaxWidth)
	}
	h = c.ConstrainHeight(h)
	p := m.Measure(geom.Constraints{MinWidth: c.MinWidth, MaxWidth: c.MaxWidth, MinHeight: h, MaxHeight: h})
	return layout.Layout(p.Width(), p.Height(), nil, func(s *layout.PlacementScope) {
		s.Place(p, 0, 0)
	})
}
