package layout

import (
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

// coordState is what a coordinator remembers about one pass.
type coordState struct {
	result      MeasureResult
	lines       map[*AlignmentLine]int
	measured    geom.Size // as returned by the measure block
	size        geom.Size // measured, coerced into constraints
	constraints geom.Constraints
	position    geom.Offset
	shallowPos  geom.Offset
	z           float64
}

// coordinator is one entry of a node's chain. The outermost coordinator is
// what the parent measures and places. Each layout modifier gets one, and the
// innermost one runs the node's measure policy. Non-layout elements attach to
// the next layout coordinator inward, or to the inner coordinator.
type coordinator struct {
	node *Node
	elem LayoutModifier // nil for the inner coordinator

	// wrapped is the next coordinator inward, outerward the next one outward
	// within the same node.
	wrapped   *coordinator
	outerward *coordinator

	entries []Element
	kinds   Kind

	res   [2]coordState
	views [2]coordView

	layer       OwnedLayer
	layerEffect LayerEffect
}

func newCoordinator(n *Node, elem LayoutModifier) *coordinator {
	c := &coordinator{node: n, elem: elem}
	c.views[PassMain] = coordView{c: c, pass: PassMain}
	c.views[PassLookahead] = coordView{c: c, pass: PassLookahead}
	return c
}

func (c *coordinator) isInner() bool { return c.elem == nil }

func (c *coordinator) view(pass Pass) *coordView { return &c.views[pass] }

// parentCoord is the coordinator this one is positioned in: the next one
// outward in the node, or the parent's inner coordinator for the outermost.
func (c *coordinator) parentCoord() *coordinator {
	if c.outerward != nil {
		return c.outerward
	}
	if p := c.node.Parent(); p != nil {
		return p.inner
	}
	return nil
}

func (c *coordinator) apparentOffset(pass Pass) geom.Offset {
	st := &c.res[pass]
	return geom.Pt(
		(st.size.Width-st.measured.Width)/2,
		(st.size.Height-st.measured.Height)/2,
	)
}

// toParentPosition maps p from this coordinator into parentCoord.
func (c *coordinator) toParentPosition(pass Pass, p geom.Offset) geom.Offset {
	if pass == PassMain && c.layer != nil {
		p = c.layer.Transform().Apply(p)
	}
	return p.Add(c.res[pass].position)
}

// fromParentPosition is the inverse of toParentPosition.
func (c *coordinator) fromParentPosition(p geom.Offset) geom.Offset {
	p = p.Sub(c.res[PassMain].position)
	if c.layer != nil {
		p = c.layer.Transform().Invert().Apply(p)
	}
	return p
}

func (c *coordinator) measure(pass Pass, cons geom.Constraints) {
	st := &c.res[pass]
	st.constraints = cons
	scope := measureScope{c: c, pass: pass}
	if !c.isInner() {
		c.setResult(pass, c.elem.Measure(scope, c.wrapped.view(pass), cons))
		return
	}
	n := c.node
	for _, ch := range n.Children() {
		if pass == PassMain {
			ch.measuredByParent = NotUsed
		} else {
			ch.measuredByParentInLookahead = NotUsed
		}
	}
	if n.policy == nil {
		panic(errors.New(errors.ErrCodeMissingPolicy, "%s has no measure policy", n))
	}
	c.setResult(pass, n.policy.Measure(scope, n.delegate(pass).childMeasurables(), cons))
}

func (c *coordinator) setResult(pass Pass, r MeasureResult) {
	st := &c.res[pass]
	oldLines := st.lines
	st.result = r
	size := r.Size()
	changed := size != st.measured
	st.measured = size
	st.size = st.constraints.Constrain(size)
	if changed && pass == PassMain {
		if c.layer != nil {
			c.layer.Resize(st.size)
		} else {
			c.invalidateParentLayer()
		}
		if o := c.node.owner; o != nil {
			o.OnLayoutChange(c.node)
		}
	}
	newLines := r.AlignmentLines()
	if !sameLines(oldLines, newLines) {
		st.lines = cloneLines(newLines)
		if d := c.node.delegate(pass); d != nil {
			d.lines.onAlignmentsChanged()
		}
	}
}

func cloneLines(m map[*AlignmentLine]int) map[*AlignmentLine]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[*AlignmentLine]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *coordinator) placeAt(pass Pass, pos geom.Offset, z float64, effect LayerEffect, shallow bool) {
	st := &c.res[pass]
	if shallow {
		st.shallowPos = pos
		return
	}
	if pass == PassMain {
		c.updateLayer(effect)
	}
	if st.position != pos {
		st.position = pos
		if pass == PassMain {
			if c.layer != nil {
				c.layer.Move(pos)
			} else {
				c.invalidateParentLayer()
			}
			if o := c.node.owner; o != nil {
				o.OnLayoutChange(c.node)
			}
		}
		if p := c.node.Parent(); p != nil {
			if pd := p.delegate(pass); pd != nil {
				pd.lines.onAlignmentsChanged()
			}
		}
	}
	st.z = z
	if c.isInner() {
		if pass == PassMain {
			c.node.onNodePlaced()
		} else {
			c.node.lookahead.onPlaced()
			c.node.lookahead.layoutChildren()
		}
		return
	}
	if st.result != nil {
		st.result.PlaceChildren(c.placementScope(pass, false))
	}
}

func (c *coordinator) placementScope(pass Pass, shallow bool) *PlacementScope {
	return &PlacementScope{
		shallow:     shallow,
		direction:   c.node.direction,
		parentWidth: c.res[pass].size.Width,
	}
}

// calculateAlignmentLine returns the position of line in this coordinator's
// own coordinates, or Unspecified.
func (c *coordinator) calculateAlignmentLine(pass Pass, line *AlignmentLine) int {
	if c.isInner() {
		if v, ok := c.node.delegate(pass).calculateAlignmentLines()[line]; ok {
			return v
		}
		return Unspecified
	}
	st := &c.res[pass]
	if st.result != nil {
		if v, ok := st.result.AlignmentLines()[line]; ok {
			return v
		}
	}
	child := c.wrapped.view(pass).Get(line)
	if child == Unspecified {
		return Unspecified
	}
	if st.result != nil {
		st.result.PlaceChildren(c.placementScope(pass, true))
	}
	return child + line.along(c.wrapped.res[pass].shallowPos)
}

func (c *coordinator) intrinsic(pass Pass, minMax intrinsicMinMax, dim intrinsicDimension, size int) int {
	scope := measureScope{c: c, pass: pass}
	if c.isInner() {
		n := c.node
		if n.policy == nil {
			panic(errors.New(errors.ErrCodeMissingPolicy, "%s has no measure policy for intrinsics", n))
		}
		ms := n.delegate(pass).childMeasurables()
		children := make([]IntrinsicMeasurable, len(ms))
		for i, m := range ms {
			children[i] = m
		}
		return policyIntrinsic(n.policy, scope, children, minMax, dim, size)
	}
	wrapped := c.wrapped.view(pass)
	if im, ok := c.elem.(IntrinsicModifier); ok {
		switch {
		case dim == intrinsicWidth && minMax == intrinsicMin:
			return im.MinIntrinsicWidth(scope, wrapped, size)
		case dim == intrinsicWidth:
			return im.MaxIntrinsicWidth(scope, wrapped, size)
		case minMax == intrinsicMin:
			return im.MinIntrinsicHeight(scope, wrapped, size)
		default:
			return im.MaxIntrinsicHeight(scope, wrapped, size)
		}
	}
	fake := intrinsicMeasurable{m: wrapped, minMax: minMax, dim: dim}
	return pick(c.elem.Measure(scope, fake, intrinsicConstraints(dim, size)).Size(), dim)
}

// =============================================================================
// Layers
// =============================================================================

func (c *coordinator) updateLayer(effect LayerEffect) {
	c.layerEffect = effect
	if effect == nil {
		if c.layer != nil {
			c.layer.Destroy()
			c.layer = nil
			c.invalidateParentLayer()
		}
		return
	}
	o := c.node.owner
	if o == nil {
		return
	}
	if c.layer == nil {
		c.layer = o.CreateLayer(c.drawContent, c.invalidateParentLayer)
		c.layer.Resize(c.res[PassMain].size)
		c.layer.Move(c.res[PassMain].position)
		c.invalidateParentLayer()
	}
	c.layer.UpdateEffect(effect.Apply())
}

// invalidateLayer invalidates the layer this coordinator draws into.
func (c *coordinator) invalidateLayer() {
	if c.layer != nil {
		c.layer.Invalidate()
		return
	}
	c.invalidateParentLayer()
}

func (c *coordinator) invalidateParentLayer() {
	if p := c.parentCoord(); p != nil {
		p.invalidateLayer()
	}
}

func (c *coordinator) destroyLayer() {
	if c.layer != nil {
		c.layer.Destroy()
		c.layer = nil
	}
}

// =============================================================================
// coordView
// =============================================================================

// coordView is a coordinator seen through one pass. Layout modifiers measure
// and place the view of the coordinator they wrap.
type coordView struct {
	c    *coordinator
	pass Pass
}

func (v *coordView) Measure(cons geom.Constraints) Placeable {
	v.c.measure(v.pass, cons)
	return v
}

func (v *coordView) ParentData() any {
	return v.c.node.delegate(v.pass).ParentData()
}

func (v *coordView) MinIntrinsicWidth(h int) int {
	return v.c.intrinsic(v.pass, intrinsicMin, intrinsicWidth, h)
}

func (v *coordView) MaxIntrinsicWidth(h int) int {
	return v.c.intrinsic(v.pass, intrinsicMax, intrinsicWidth, h)
}

func (v *coordView) MinIntrinsicHeight(w int) int {
	return v.c.intrinsic(v.pass, intrinsicMin, intrinsicHeight, w)
}

func (v *coordView) MaxIntrinsicHeight(w int) int {
	return v.c.intrinsic(v.pass, intrinsicMax, intrinsicHeight, w)
}

func (v *coordView) Width() int              { return v.c.res[v.pass].size.Width }
func (v *coordView) Height() int             { return v.c.res[v.pass].size.Height }
func (v *coordView) Size() geom.Size         { return v.c.res[v.pass].size }
func (v *coordView) MeasuredSize() geom.Size { return v.c.res[v.pass].measured }

func (v *coordView) Get(line *AlignmentLine) int {
	r := v.c.calculateAlignmentLine(v.pass, line)
	if r == Unspecified {
		return Unspecified
	}
	return r + line.along(v.c.apparentOffset(v.pass))
}

func (v *coordView) placeAt(pos geom.Offset, z float64, effect LayerEffect, shallow bool) {
	v.c.placeAt(v.pass, pos, z, effect, shallow)
}

func (v *coordView) apparentOffset() geom.Offset { return v.c.apparentOffset(v.pass) }
