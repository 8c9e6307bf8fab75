package layout

import (
	"fmt"
	"sync/atomic"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

var nextNodeID atomic.Int64

// Node is one element of a layout tree.
//
// Nodes are created detached with [New] or [NewVirtual], assembled with
// [Node.InsertAt], and attached to an [Owner] through the root. A Node is not
// safe for concurrent use; a tree and its scheduler belong to one goroutine.
type Node struct {
	id   int64
	name string

	parent   *Node // folded parent, may be virtual
	children []*Node

	virtual              bool
	virtualChildrenCount int
	unfolded             []*Node
	unfoldedDirty        bool

	owner     Owner
	depth     int
	state     LayoutState
	direction Direction

	isPlaced              bool
	placeOrder            int
	previousPlaceOrder    int
	nextChildPlaceOrder   int
	relayoutWithoutParent bool

	zIndex       float64
	zSorted      []*Node
	zSortedDirty bool

	measuredByParent            UsageByParent
	measuredByParentInLookahead UsageByParent
	intrinsicsUsage             UsageByParent
	previousIntrinsicsUsage     UsageByParent
	canMultiMeasure             bool
	ignoreRemeasureRequests     bool
	measureCount                int

	policy     MeasurePolicy
	modifier   Modifier
	elemCoords []*coordinator
	inner      *coordinator
	outer      *coordinator
	kinds      Kind
	parentData any

	lookaheadRoot  bool
	lookaheadScope *Node
	main           *passDelegate
	lookahead      *passDelegate
}

// New returns a detached node measured by policy.
func New(policy MeasurePolicy) *Node {
	n := &Node{
		id:                 nextNodeID.Add(1),
		policy:             policy,
		placeOrder:         NotPlacedPlaceOrder,
		previousPlaceOrder: NotPlacedPlaceOrder,
		zSortedDirty:       true,
	}
	n.inner = newCoordinator(n, nil)
	n.outer = n.inner
	n.main = newPassDelegate(n, PassMain)
	return n
}

// NewVirtual returns a node that only groups children. Its children are laid
// out as children of the first non-virtual ancestor.
func NewVirtual() *Node {
	n := New(nil)
	n.virtual = true
	return n
}

// Named sets a debug name and returns n.
func (n *Node) Named(name string) *Node {
	n.name = name
	return n
}

func (n *Node) ID() int64       { return n.id }
func (n *Node) Name() string    { return n.name }
func (n *Node) IsVirtual() bool { return n.virtual }

func (n *Node) String() string {
	if n.name != "" {
		return n.name
	}
	return fmt.Sprintf("node#%d", n.id)
}

// Parent returns the closest non-virtual ancestor, or nil for a root.
func (n *Node) Parent() *Node {
	p := n.parent
	for p != nil && p.virtual {
		p = p.parent
	}
	return p
}

// FoldedParent returns the direct parent, which may be virtual.
func (n *Node) FoldedParent() *Node { return n.parent }

func (n *Node) Owner() Owner         { return n.owner }
func (n *Node) IsAttached() bool     { return n.owner != nil }
func (n *Node) Depth() int           { return n.depth }
func (n *Node) State() LayoutState   { return n.state }
func (n *Node) IsPlaced() bool       { return n.isPlaced }
func (n *Node) PlaceOrder() int      { return n.placeOrder }
func (n *Node) ZIndex() float64      { return n.zIndex }
func (n *Node) Modifier() Modifier   { return n.modifier }
func (n *Node) ParentData() any      { return n.parentData }
func (n *Node) Direction() Direction { return n.direction }

// MeasureCount is the number of times the node's committed measure ran.
func (n *Node) MeasureCount() int { return n.measureCount }

// MeasuredByParent reports which step of the parent measured the node in the
// committed pass.
func (n *Node) MeasuredByParent() UsageByParent { return n.measuredByParent }

// IntrinsicsUsage reports which step of the parent read the node's intrinsics.
func (n *Node) IntrinsicsUsage() UsageByParent { return n.intrinsicsUsage }

func (n *Node) MeasurePending() bool { return n.main.measurePending }
func (n *Node) LayoutPending() bool  { return n.main.layoutPending }

func (n *Node) LookaheadMeasurePending() bool {
	return n.lookahead != nil && n.lookahead.measurePending
}

func (n *Node) LookaheadLayoutPending() bool {
	return n.lookahead != nil && n.lookahead.layoutPending
}

// Size is the node's size after the last committed measure. It panics if the
// node was never measured.
func (n *Node) Size() geom.Size {
	if !n.main.measuredOnce {
		panic(errors.New(errors.ErrCodeNotMeasured, "%s was never measured", n))
	}
	return n.main.size
}

// MeasuredSize is Size for nodes that may not have been measured yet.
func (n *Node) MeasuredSize() (geom.Size, bool) {
	return n.main.size, n.main.measuredOnce
}

// LookaheadSize is the node's size after the last lookahead measure.
func (n *Node) LookaheadSize() (geom.Size, bool) {
	if n.lookahead == nil || !n.lookahead.measuredOnce {
		return geom.Size{}, false
	}
	return n.lookahead.size, true
}

// Position is where the parent placed the node, in the parent's content
// coordinates.
func (n *Node) Position() geom.Offset { return n.main.lastPosition }

// Constraints returns the constraints of the last committed measure.
func (n *Node) Constraints() (geom.Constraints, bool) {
	return n.main.constraints, n.main.measuredOnce
}

// SetPolicy replaces the measure policy and requests a remeasure.
func (n *Node) SetPolicy(p MeasurePolicy) {
	n.policy = p
	n.invalidateMeasurements()
}

// SetDirection sets the layout direction used by relative placement.
func (n *Node) SetDirection(d Direction) {
	if n.direction == d {
		return
	}
	n.direction = d
	n.RequestRelayout(false)
}

// SetCanMultiMeasure allows the parent to measure this node, and with it the
// node's whole subtree, more than once per pass.
func (n *Node) SetCanMultiMeasure(v bool) { n.canMultiMeasure = v }

// SetLookaheadRoot makes the node open a lookahead scope. Takes effect the
// next time the node is attached.
func (n *Node) SetLookaheadRoot(v bool) {
	if n.owner != nil {
		panic(errors.New(errors.ErrCodeIllegalState, "lookahead root flag changed on attached node %s", n))
	}
	n.lookaheadRoot = v
}

// IsLookaheadRoot reports whether the node opens a lookahead scope.
func (n *Node) IsLookaheadRoot() bool { return n.lookaheadRoot }

// InLookaheadScope reports whether the node runs a lookahead pass.
func (n *Node) InLookaheadScope() bool { return n.lookaheadScope != nil }

// WithoutRemeasureRequests runs fn with remeasure requests of n ignored.
func (n *Node) WithoutRemeasureRequests(fn func()) {
	n.ignoreRemeasureRequests = true
	defer func() { n.ignoreRemeasureRequests = false }()
	fn()
}

func (n *Node) delegate(pass Pass) *passDelegate {
	if pass == PassLookahead {
		return n.lookahead
	}
	return n.main
}

func (n *Node) isOutermostLookaheadRoot() bool {
	return n.lookaheadScope == n
}

// =============================================================================
// Requests
// =============================================================================

// RequestRemeasure asks for the node to be measured in the next pass.
func (n *Node) RequestRemeasure(force bool) {
	if n.ignoreRemeasureRequests || n.virtual || n.owner == nil {
		return
	}
	n.owner.OnRequestMeasure(n, false, force)
	n.main.invalidateIntrinsicsParent(force)
}

// RequestLookaheadRemeasure asks for both passes of the node to measure again.
// The node must be inside a lookahead scope.
func (n *Node) RequestLookaheadRemeasure(force bool) {
	if n.owner == nil {
		return
	}
	if n.lookahead == nil {
		panic(errors.New(errors.ErrCodeIllegalState, "lookahead remeasure requested outside a lookahead scope on %s", n))
	}
	if n.ignoreRemeasureRequests || n.virtual {
		return
	}
	n.owner.OnRequestMeasure(n, true, force)
	n.lookahead.invalidateIntrinsicsParent(force)
}

// RequestRelayout asks for the node's children to be placed again.
func (n *Node) RequestRelayout(force bool) {
	if n.virtual || n.owner == nil {
		return
	}
	n.owner.OnRequestRelayout(n, false, force)
}

// RequestLookaheadRelayout asks for both passes to place the children again.
func (n *Node) RequestLookaheadRelayout(force bool) {
	if n.virtual || n.owner == nil {
		return
	}
	n.owner.OnRequestRelayout(n, true, force)
}

// invalidateMeasurements requests a remeasure in every pass the node runs.
// Virtual nodes forward to their parent.
func (n *Node) invalidateMeasurements() {
	if n.virtual {
		if p := n.Parent(); p != nil {
			p.invalidateMeasurements()
		}
		return
	}
	if n.lookaheadScope != nil {
		n.RequestLookaheadRemeasure(false)
		return
	}
	n.RequestRemeasure(false)
}

// remeasure measures the node again in pass with its last constraints.
func (n *Node) remeasure(pass Pass) bool {
	d := n.delegate(pass)
	if d == nil || !d.measuredOnce {
		return false
	}
	if pass == PassMain && n.intrinsicsUsage == NotUsed {
		n.clearSubtreeIntrinsicsUsage()
	}
	return d.remeasure(d.constraints)
}

// =============================================================================
// Intrinsics usage
// =============================================================================

func (n *Node) clearSubtreeIntrinsicsUsage() {
	n.previousIntrinsicsUsage = n.intrinsicsUsage
	n.intrinsicsUsage = NotUsed
	for _, ch := range n.Children() {
		if ch.intrinsicsUsage != NotUsed {
			ch.clearSubtreeIntrinsicsUsage()
		}
	}
}

func (n *Node) clearSubtreePlacementIntrinsicsUsage() {
	n.previousIntrinsicsUsage = n.intrinsicsUsage
	n.intrinsicsUsage = NotUsed
	for _, ch := range n.Children() {
		if ch.intrinsicsUsage == InLayoutBlock {
			ch.clearSubtreePlacementIntrinsicsUsage()
		}
	}
}

func (n *Node) resetSubtreeIntrinsicsUsage() {
	for _, ch := range n.Children() {
		ch.intrinsicsUsage = ch.previousIntrinsicsUsage
		if ch.intrinsicsUsage != NotUsed {
			ch.resetSubtreeIntrinsicsUsage()
		}
	}
}

func invalidTree(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidTree, format, args...)
}
