package layout

import (
	"cmp"
	"slices"
)

// OnPositionedDispatcher collects nodes laid out during a pass and, once the
// pass is over, tells the PositionedModifier elements of them and their
// subtrees that positions are final.
type OnPositionedDispatcher struct {
	nodes   []*Node
	pending map[*Node]bool
}

// NewOnPositionedDispatcher returns an empty dispatcher.
func NewOnPositionedDispatcher() *OnPositionedDispatcher {
	return &OnPositionedDispatcher{pending: make(map[*Node]bool)}
}

func (d *OnPositionedDispatcher) onNodePositioned(n *Node) {
	if d.pending[n] {
		return
	}
	d.pending[n] = true
	d.nodes = append(d.nodes, n)
}

func (d *OnPositionedDispatcher) remove(n *Node) {
	if !d.pending[n] {
		return
	}
	delete(d.pending, n)
	d.nodes = slices.DeleteFunc(d.nodes, func(m *Node) bool { return m == n })
}

// dispatch notifies the deepest collected nodes first. Each node is notified
// at most once, even when an ancestor was collected as well.
func (d *OnPositionedDispatcher) dispatch() {
	if len(d.nodes) == 0 {
		return
	}
	nodes := d.nodes
	d.nodes = nil
	slices.SortStableFunc(nodes, func(a, b *Node) int { return cmp.Compare(b.depth, a.depth) })
	done := make(map[*Node]bool)
	for _, n := range nodes {
		if d.pending[n] {
			d.dispatchHierarchy(n, done)
		}
	}
	clear(d.pending)
}

func (d *OnPositionedDispatcher) dispatchHierarchy(n *Node, done map[*Node]bool) {
	if done[n] {
		return
	}
	done[n] = true
	delete(d.pending, n)
	n.dispatchOnPositioned()
	for _, ch := range n.Children() {
		d.dispatchHierarchy(ch, done)
	}
}

// dispatchOnPositioned calls the node's positioned elements if it has a final
// position.
func (n *Node) dispatchOnPositioned() {
	if n.state != Idle || n.main.layoutPending || n.main.measurePending || !n.isPlaced {
		return
	}
	for _, e := range n.elements(KindPositioned) {
		if pm, ok := e.(PositionedModifier); ok {
			pm.OnPositioned(n)
		}
	}
}
