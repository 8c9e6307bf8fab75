package layout

import (
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

// onNodePlaced runs when the node's inner coordinator was placed in the
// committed pass. It refreshes the z-index, assigns the place order and lays
// out the children.
func (n *Node) onNodePlaced() {
	parent := n.Parent()

	z := n.inner.res[PassMain].z
	for c := n.outer; c != n.inner; c = c.wrapped {
		z += c.res[PassMain].z
	}
	if z != n.zIndex {
		n.zIndex = z
		if parent != nil {
			parent.invalidateZSort()
			parent.inner.invalidateLayer()
		}
	}

	if !n.isPlaced {
		if parent != nil {
			parent.inner.invalidateLayer()
		}
		n.markNodeAndSubtreeAsPlaced()
	}

	switch {
	case parent == nil:
		n.placeOrder = 0
	case !n.relayoutWithoutParent && parent.state == LayingOut:
		if n.placeOrder != NotPlacedPlaceOrder {
			panic(errors.New(errors.ErrCodePlaceOrder,
				"%s placed twice in one layout of %s", n, parent))
		}
		n.placeOrder = parent.nextChildPlaceOrder
		parent.nextChildPlaceOrder++
	}

	n.main.layoutChildren()
}

func (n *Node) clearPlaceOrder() {
	n.nextChildPlaceOrder = 0
	for _, ch := range n.Children() {
		ch.previousPlaceOrder = ch.placeOrder
		ch.placeOrder = NotPlacedPlaceOrder
		if ch.measuredByParent == InLayoutBlock {
			ch.measuredByParent = NotUsed
		}
	}
}

func (n *Node) checkChildrenPlaceOrderForUpdates() {
	for _, ch := range n.Children() {
		if ch.previousPlaceOrder == ch.placeOrder {
			continue
		}
		n.invalidateZSort()
		n.inner.invalidateLayer()
		if ch.placeOrder == NotPlacedPlaceOrder {
			ch.markSubtreeAsNotPlaced()
		}
	}
}

func (n *Node) markNodeAndSubtreeAsPlaced() {
	wasPlaced := n.isPlaced
	n.isPlaced = true
	if !wasPlaced {
		switch {
		case n.main.measurePending:
			n.RequestRemeasure(true)
		case n.LookaheadMeasurePending():
			n.RequestLookaheadRemeasure(true)
		}
	}
	for _, ch := range n.Children() {
		if ch.placeOrder != NotPlacedPlaceOrder {
			ch.markNodeAndSubtreeAsPlaced()
			ch.rescheduleRemeasureOrRelayout()
		}
	}
}

func (n *Node) markSubtreeAsNotPlaced() {
	if !n.isPlaced {
		return
	}
	n.isPlaced = false
	for _, ch := range n.Children() {
		ch.markSubtreeAsNotPlaced()
	}
}

// rescheduleRemeasureOrRelayout forwards pending work of a node that becomes
// placed again to the scheduler.
func (n *Node) rescheduleRemeasureOrRelayout() {
	if n.state != Idle {
		panic(errors.New(errors.ErrCodeIllegalState, "unexpected state %s of %s", n.state, n))
	}
	switch {
	case n.main.measurePending:
		n.RequestRemeasure(true)
	case n.main.layoutPending:
		n.RequestRelayout(true)
	case n.LookaheadMeasurePending():
		n.RequestLookaheadRemeasure(true)
	case n.LookaheadLayoutPending():
		n.RequestLookaheadRelayout(true)
	}
}

// replace places the node again where its parent placed it last, without the
// parent laying out. Calling it twice in a row changes nothing.
func (n *Node) replace() {
	if n.intrinsicsUsage == NotUsed {
		n.clearSubtreePlacementIntrinsicsUsage()
	}
	n.relayoutWithoutParent = true
	defer func() { n.relayoutWithoutParent = false }()
	n.main.replace()
}

func (n *Node) lookaheadReplace() {
	if n.intrinsicsUsage == NotUsed {
		n.clearSubtreePlacementIntrinsicsUsage()
	}
	n.lookahead.replace()
}

// placeRoot places a root node at the origin.
func (n *Node) placeRoot() {
	if n.intrinsicsUsage == NotUsed {
		n.clearSubtreePlacementIntrinsicsUsage()
	}
	n.main.placeAt(geom.Offset{}, 0, nil, false)
}

// =============================================================================
// Coordinates
// =============================================================================

// PositionInRoot returns the node's top-left corner in the root's coordinates,
// with layer transforms applied.
func (n *Node) PositionInRoot() geom.Offset {
	return n.LocalToRoot(geom.Offset{})
}

// LocalToRoot maps a point in the node's content coordinates to the root.
func (n *Node) LocalToRoot(p geom.Offset) geom.Offset {
	for c := n.inner; c != nil; c = c.parentCoord() {
		p = c.toParentPosition(PassMain, p)
	}
	return p
}

// PositionInWindow maps the node's top-left corner to window coordinates.
func (n *Node) PositionInWindow() geom.Offset {
	p := n.PositionInRoot()
	if n.owner != nil {
		p = n.owner.CalculatePositionInWindow(p)
	}
	return p
}

// WindowToLocal maps a window point to the node's content coordinates.
func (n *Node) WindowToLocal(p geom.Offset) geom.Offset {
	if n.owner != nil {
		p = n.owner.CalculateLocalPosition(p)
	}
	var chain []*coordinator
	for c := n.inner; c != nil; c = c.parentCoord() {
		chain = append(chain, c)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		p = chain[i].fromParentPosition(p)
	}
	return p
}
