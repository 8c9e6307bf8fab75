package layout

import "github.com/matzehuels/lattice/pkg/geom"

// Owner is the environment a tree is attached to. It routes requests to the
// tree's [Scheduler], creates layers, and knows where the root sits on screen.
type Owner interface {
	// OnRequestMeasure is called when n asks to be measured again.
	OnRequestMeasure(n *Node, lookahead, force bool)
	// OnRequestRelayout is called when n asks to place its children again.
	OnRequestRelayout(n *Node, lookahead, force bool)

	OnAttach(n *Node)
	OnDetach(n *Node)

	// OnLayoutChange is called when the size or position of n changed.
	OnLayoutChange(n *Node)

	// ForceMeasureTheSubtree measures every pending node below n that n's
	// measurement depends on. Called when n itself did not need measuring.
	ForceMeasureTheSubtree(n *Node)

	// MeasureIteration counts nodes processed by the scheduler so far.
	MeasureIteration() int64

	CreateLayer(draw func(Canvas), invalidateParent func()) OwnedLayer

	CalculatePositionInWindow(local geom.Offset) geom.Offset
	CalculateLocalPosition(window geom.Offset) geom.Offset

	// Observer returns the read observer measure and layout blocks run under,
	// or nil when reads are not tracked.
	Observer() ReadObserver
}

// OwnedLayer is a separately drawn and transformed surface.
type OwnedLayer interface {
	Move(pos geom.Offset)
	Resize(size geom.Size)
	UpdateEffect(p LayerProperties)
	Invalidate()
	Destroy()

	// Transform maps content coordinates to the layer's parent.
	Transform() geom.Transform
}

// ReadObserver records state reads made by a block.
//
// ObserveReads runs block and remembers everything it read under scope. The
// first time one of those values changes afterwards, onChanged(scope) runs
// once. Running block again replaces the recorded reads.
type ReadObserver interface {
	ObserveReads(scope any, onChanged func(scope any), block func())
}

type readKind int

const (
	readMeasure readKind = iota
	readLayout
	readLayoutModifier
)

// readScope identifies one observed block of one node.
type readScope struct {
	node *Node
	kind readKind
	pass Pass
}

// ReadScopeNode returns the node a scope passed to ObserveReads belongs to.
// Owners use it to drop the reads of detached nodes.
func ReadScopeNode(scope any) (*Node, bool) {
	s, ok := scope.(readScope)
	return s.node, ok
}

// observe runs block under the owner's read observer. A change to anything
// the block read requests a remeasure for measure blocks and a relayout
// otherwise.
func (n *Node) observe(kind readKind, pass Pass, block func()) {
	var obs ReadObserver
	if n.owner != nil {
		obs = n.owner.Observer()
	}
	if obs == nil {
		block()
		return
	}
	obs.ObserveReads(readScope{node: n, kind: kind, pass: pass}, onReadChanged, block)
}

func onReadChanged(scope any) {
	s, ok := scope.(readScope)
	if !ok || !s.node.IsAttached() {
		return
	}
	switch {
	case s.kind == readMeasure && s.pass == PassLookahead:
		s.node.RequestLookaheadRemeasure(false)
	case s.kind == readMeasure:
		s.node.RequestRemeasure(false)
	case s.pass == PassLookahead:
		s.node.RequestLookaheadRelayout(false)
	default:
		s.node.RequestRelayout(false)
	}
}
