package layout

import (
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

// passDelegate drives one pass of one node. It is what the parent's measure
// policy sees as a Measurable and, once measured, as a Placeable.
//
// A node always has a main delegate. Nodes inside a lookahead scope also have
// a lookahead delegate whose results the main pass can follow.
type passDelegate struct {
	node *Node
	pass Pass

	measurePending bool
	layoutPending  bool

	constraints          geom.Constraints
	measuredOnce         bool
	placedOnce           bool
	lastMeasureIteration int64

	// isPlaced is tracked here for the lookahead pass only; the main pass
	// uses Node.isPlaced.
	isPlaced         bool
	previouslyPlaced bool

	lastPosition geom.Offset
	lastZ        float64
	lastEffect   LayerEffect

	size geom.Size

	duringAlignmentQuery bool
	lines                *AlignmentLines

	measurables      []Measurable
	measurablesDirty bool
}

func newPassDelegate(n *Node, pass Pass) *passDelegate {
	d := &passDelegate{
		node:             n,
		pass:             pass,
		measurablesDirty: true,
		isPlaced:         pass == PassLookahead,
	}
	d.lines = newAlignmentLines(d)
	return d
}

func (d *passDelegate) parentDelegate() *passDelegate {
	p := d.node.Parent()
	if p == nil {
		return nil
	}
	return p.delegate(d.pass)
}

func (d *passDelegate) placed() bool {
	if d.pass == PassMain {
		return d.node.isPlaced
	}
	return d.isPlaced
}

func (d *passDelegate) requestMeasure() {
	if d.pass == PassMain {
		d.node.RequestRemeasure(false)
		return
	}
	d.node.RequestLookaheadRemeasure(false)
}

func (d *passDelegate) requestLayout() {
	if d.pass == PassMain {
		d.node.RequestRelayout(false)
		return
	}
	d.node.RequestLookaheadRelayout(false)
}

// usage is the field recording how the parent used this node in this pass.
func (d *passDelegate) usage() *UsageByParent {
	if d.pass == PassMain {
		return &d.node.measuredByParent
	}
	return &d.node.measuredByParentInLookahead
}

func (d *passDelegate) childMeasurables() []Measurable {
	children := d.node.Children()
	if !d.measurablesDirty && len(d.measurables) == len(children) {
		return d.measurables
	}
	d.measurables = d.measurables[:0]
	for _, ch := range children {
		d.measurables = append(d.measurables, ch.delegate(d.pass))
	}
	d.measurablesDirty = false
	return d.measurables
}

// =============================================================================
// Measurable
// =============================================================================

func (d *passDelegate) Measure(c geom.Constraints) Placeable {
	n := d.node
	if n.intrinsicsUsage == NotUsed {
		n.clearSubtreeIntrinsicsUsage()
	}
	if d.pass == PassMain && n.isOutermostLookaheadRoot() {
		n.measuredByParentInLookahead = NotUsed
		n.lookahead.Measure(c)
	}
	d.trackMeasurementByParent()
	d.remeasure(c)
	return d
}

func (d *passDelegate) trackMeasurementByParent() {
	n := d.node
	u := d.usage()
	parent := n.Parent()
	if parent == nil {
		*u = NotUsed
		return
	}
	if *u != NotUsed && !n.canMultiMeasure {
		panic(errors.New(errors.ErrCodeMultipleMeasure,
			"%s measured twice by its parent in one %s pass (usage %s, parent %s)",
			n, d.pass, *u, parent.state))
	}
	switch parent.state {
	case Measuring:
		*u = InMeasureBlock
	case LayingOut:
		*u = InLayoutBlock
	case LookaheadMeasuring:
		if d.pass == PassMain {
			panic(measuredOutsideParent(n, parent))
		}
		*u = InMeasureBlock
	case LookaheadLayingOut:
		if d.pass == PassMain {
			panic(measuredOutsideParent(n, parent))
		}
		*u = InLayoutBlock
	default:
		panic(measuredOutsideParent(n, parent))
	}
}

func measuredOutsideParent(n, parent *Node) error {
	return errors.New(errors.ErrCodeIllegalState,
		"%s can only be measured from its parent's measure or layout block, parent is %s",
		n, parent.state)
}

// remeasure measures the node again if something it depends on changed and
// reports whether its size changed.
func (d *passDelegate) remeasure(c geom.Constraints) bool {
	n := d.node
	if parent := n.Parent(); parent != nil && parent.canMultiMeasure {
		n.canMultiMeasure = true
	}
	if d.measurePending || !d.measuredOnce || d.constraints != c {
		d.lines.usedByModifierMeasurement = false
		for _, ch := range n.Children() {
			if cd := ch.delegate(d.pass); cd != nil {
				cd.lines.usedDuringParentMeasurement = false
			}
		}
		d.measuredOnce = true
		d.constraints = c
		if n.owner != nil {
			d.lastMeasureIteration = n.owner.MeasureIteration()
		}
		outer := &n.outer.res[d.pass]
		prevMeasured, prevSize := outer.measured, outer.size
		if d.pass == PassMain {
			d.performMeasure(c)
		} else {
			d.performLookaheadMeasure(c)
		}
		changed := outer.measured != prevMeasured || outer.size != prevSize || d.size != outer.size
		d.size = outer.size
		return changed
	}
	if d.pass == PassMain && n.owner != nil {
		n.owner.ForceMeasureTheSubtree(n)
		n.resetSubtreeIntrinsicsUsage()
	}
	return false
}

func (d *passDelegate) performMeasure(c geom.Constraints) {
	n := d.node
	if n.state != Idle {
		panic(errors.New(errors.ErrCodeIllegalState,
			"%s must be idle before measure starts, is %s", n, n.state))
	}
	n.state = Measuring
	d.measurePending = false
	n.observe(readMeasure, PassMain, func() {
		n.outer.measure(PassMain, c)
	})
	if n.state == Measuring {
		d.layoutPending = true
		n.state = Idle
	}
	n.measureCount++
	size := n.outer.res[PassMain].size
	layoutHooks().OnNodeMeasured(n.String(), n.depth, size.Width, size.Height)
}

func (d *passDelegate) performLookaheadMeasure(c geom.Constraints) {
	n := d.node
	n.state = LookaheadMeasuring
	d.measurePending = false
	n.observe(readMeasure, PassLookahead, func() {
		n.outer.measure(PassLookahead, c)
	})
	d.layoutPending = true
	if n.isOutermostLookaheadRoot() {
		n.main.layoutPending = true
	} else {
		n.main.measurePending = true
	}
	n.state = Idle
}

func (d *passDelegate) ParentData() any { return d.node.parentData }

func (d *passDelegate) MinIntrinsicWidth(height int) int {
	d.onIntrinsicsQueried()
	return d.node.outer.view(d.pass).MinIntrinsicWidth(height)
}

func (d *passDelegate) MaxIntrinsicWidth(height int) int {
	d.onIntrinsicsQueried()
	return d.node.outer.view(d.pass).MaxIntrinsicWidth(height)
}

func (d *passDelegate) MinIntrinsicHeight(width int) int {
	d.onIntrinsicsQueried()
	return d.node.outer.view(d.pass).MinIntrinsicHeight(width)
}

func (d *passDelegate) MaxIntrinsicHeight(width int) int {
	d.onIntrinsicsQueried()
	return d.node.outer.view(d.pass).MaxIntrinsicHeight(width)
}

// onIntrinsicsQueried requests a real measure to follow the intrinsic one and
// records which step of the parent depends on the answer.
func (d *passDelegate) onIntrinsicsQueried() {
	n := d.node
	d.requestMeasure()
	parent := n.Parent()
	if parent == nil || n.intrinsicsUsage != NotUsed {
		return
	}
	switch parent.state {
	case Measuring:
		n.intrinsicsUsage = InMeasureBlock
	case LayingOut:
		n.intrinsicsUsage = InLayoutBlock
	default:
		n.intrinsicsUsage = parent.intrinsicsUsage
	}
}

// invalidateIntrinsicsParent asks the closest ancestor that read this node's
// intrinsics to measure or lay out again.
func (d *passDelegate) invalidateIntrinsicsParent(force bool) {
	n := d.node
	usage := n.intrinsicsUsage
	parent := n.Parent()
	if parent == nil || usage == NotUsed {
		return
	}
	reader := parent
	for reader.intrinsicsUsage == usage {
		p := reader.Parent()
		if p == nil {
			break
		}
		reader = p
	}
	lookahead := d.pass == PassLookahead
	switch {
	case usage == InMeasureBlock && lookahead:
		reader.RequestLookaheadRemeasure(force)
	case usage == InMeasureBlock:
		reader.RequestRemeasure(force)
	case lookahead:
		reader.RequestLookaheadRelayout(force)
	default:
		reader.RequestRelayout(force)
	}
}

// =============================================================================
// Placeable
// =============================================================================

func (d *passDelegate) Width() int      { return d.size.Width }
func (d *passDelegate) Height() int     { return d.size.Height }
func (d *passDelegate) Size() geom.Size { return d.size }

func (d *passDelegate) MeasuredSize() geom.Size {
	return d.node.outer.res[d.pass].measured
}

func (d *passDelegate) apparentOffset() geom.Offset { return geom.Offset{} }

// Get returns the position of line in the node and records which step of the
// parent read it.
func (d *passDelegate) Get(line *AlignmentLine) int {
	if parent := d.node.Parent(); parent != nil {
		switch parent.state {
		case d.pass.measuringState():
			d.lines.usedDuringParentMeasurement = true
		case d.pass.layingOutState():
			d.lines.usedDuringParentLayout = true
		}
	}
	d.duringAlignmentQuery = true
	defer func() { d.duringAlignmentQuery = false }()
	return d.node.outer.view(d.pass).Get(line)
}

// calculateAlignmentLines returns the merged lines of the node, laying out its
// children first if needed.
func (d *passDelegate) calculateAlignmentLines() map[*AlignmentLine]int {
	if !d.duringAlignmentQuery {
		if d.node.state == d.pass.measuringState() {
			d.lines.usedByModifierMeasurement = true
			if d.lines.dirty {
				d.layoutPending = true
			}
		} else {
			d.lines.usedByModifierLayout = true
		}
	}
	d.layoutChildren()
	return d.lines.lines
}

func (d *passDelegate) placeAt(pos geom.Offset, z float64, effect LayerEffect, shallow bool) {
	if shallow {
		d.node.outer.placeAt(d.pass, pos.Add(d.node.outer.apparentOffset(d.pass)), z, effect, true)
		return
	}
	n := d.node
	if d.pass == PassLookahead {
		d.placedOnce = true
		d.lines.usedByModifierLayout = false
		n.observe(readLayoutModifier, PassLookahead, func() {
			n.outer.placeAt(PassLookahead, pos.Add(n.outer.apparentOffset(PassLookahead)), z, nil, false)
		})
		d.lastPosition = pos
		d.lastZ = z
		return
	}
	if n.isOutermostLookaheadRoot() {
		n.lookahead.placeAt(pos, z, nil, false)
	}
	d.placeOuter(pos, z, effect)
}

func (d *passDelegate) placeOuter(pos geom.Offset, z float64, effect LayerEffect) {
	n := d.node
	d.lastPosition = pos
	d.lastZ = z
	d.lastEffect = effect
	d.placedOnce = true
	d.lines.usedByModifierLayout = false
	n.observe(readLayoutModifier, PassMain, func() {
		n.outer.placeAt(PassMain, pos.Add(n.outer.apparentOffset(PassMain)), z, effect, false)
	})
	layoutHooks().OnNodePlaced(n.String(), n.depth, pos.X, pos.Y)
}

// replace places the node again where its parent placed it last.
func (d *passDelegate) replace() {
	if !d.placedOnce {
		panic(errors.New(errors.ErrCodeIllegalState, "%s replaced before it was placed", d.node))
	}
	if d.pass == PassLookahead {
		d.placeAt(d.lastPosition, d.lastZ, nil, false)
		return
	}
	d.placeOuter(d.lastPosition, d.lastZ, d.lastEffect)
}

// =============================================================================
// Layout
// =============================================================================

// layoutChildren places the children if a layout is pending and brings the
// alignment lines up to date.
func (d *passDelegate) layoutChildren() {
	n := d.node
	d.lines.recalculateQueryOwner()
	if d.layoutPending {
		d.onBeforeLayoutChildren()
	}
	if d.layoutPending {
		d.layoutPending = false
		n.state = d.pass.layingOutState()
		n.observe(readLayout, d.pass, func() {
			children := n.Children()
			if d.pass == PassMain {
				n.clearPlaceOrder()
			} else {
				for _, ch := range children {
					cd := ch.lookahead
					cd.previouslyPlaced = cd.isPlaced
					cd.isPlaced = false
					if ch.measuredByParentInLookahead == InLayoutBlock {
						ch.measuredByParentInLookahead = NotUsed
					}
				}
			}
			for _, ch := range children {
				ch.delegate(d.pass).lines.usedDuringParentLayout = false
			}
			if r := n.inner.res[d.pass].result; r != nil {
				r.PlaceChildren(n.inner.placementScope(d.pass, false))
			}
			if d.pass == PassMain {
				n.checkChildrenPlaceOrderForUpdates()
			} else {
				for _, ch := range children {
					if !ch.lookahead.isPlaced {
						ch.lookahead.markSubtreeNotPlaced()
					}
				}
			}
			for _, ch := range children {
				cl := ch.delegate(d.pass).lines
				cl.previousUsedDuringParentLayout = cl.usedDuringParentLayout
			}
		})
		n.state = Idle
	}
	if d.lines.usedDuringParentLayout {
		d.lines.previousUsedDuringParentLayout = true
	}
	if d.lines.dirty && d.lines.required() {
		d.lines.recalculate()
	}
}

// onBeforeLayoutChildren measures children that are still waiting for a
// remeasure their parent's measure block would have done.
func (d *passDelegate) onBeforeLayoutChildren() {
	n := d.node
	for _, ch := range n.Children() {
		cd := ch.delegate(d.pass)
		if !cd.measurePending || *cd.usage() != InMeasureBlock {
			continue
		}
		if ch.remeasure(d.pass) {
			d.requestMeasure()
		}
	}
}

func (d *passDelegate) markSubtreeNotPlaced() {
	d.isPlaced = false
	for _, ch := range d.node.Children() {
		if ch.lookahead != nil {
			ch.lookahead.markSubtreeNotPlaced()
		}
	}
}

// onPlaced is called when the lookahead pass placed the node.
func (d *passDelegate) onPlaced() {
	if d.isPlaced {
		return
	}
	d.isPlaced = true
	if !d.previouslyPlaced {
		d.requestSubtreeForLookahead()
	}
}

func (d *passDelegate) requestSubtreeForLookahead() {
	for _, ch := range d.node.Children() {
		ch.rescheduleRemeasureOrRelayout()
		ch.lookahead.requestSubtreeForLookahead()
	}
}
