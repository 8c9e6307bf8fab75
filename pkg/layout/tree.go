package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/lattice/pkg/errors"
)

// =============================================================================
// Children
// =============================================================================

// Children returns the children the node lays out: its direct children with
// every virtual child replaced by that child's own children. The returned
// slice is owned by the node and must not be modified.
func (n *Node) Children() []*Node {
	if n.virtualChildrenCount == 0 {
		return n.children
	}
	if n.unfoldedDirty || n.unfolded == nil {
		n.unfolded = n.unfolded[:0]
		for _, ch := range n.children {
			if ch.virtual {
				n.unfolded = append(n.unfolded, ch.children...)
			} else {
				n.unfolded = append(n.unfolded, ch)
			}
		}
		n.unfoldedDirty = false
		n.markMeasurablesDirty()
	}
	return n.unfolded
}

// FoldedChildren returns the direct children, virtual ones included.
func (n *Node) FoldedChildren() []*Node { return n.children }

// ZSortedChildren returns the children ordered by z-index, ties broken by the
// order their parent placed them in. Unplaced children are included.
func (n *Node) ZSortedChildren() []*Node {
	if n.zSortedDirty {
		n.zSorted = append(n.zSorted[:0], n.Children()...)
		slices.SortStableFunc(n.zSorted, func(a, b *Node) int {
			if c := cmp.Compare(a.zIndex, b.zIndex); c != 0 {
				return c
			}
			return cmp.Compare(a.placeOrder, b.placeOrder)
		})
		n.zSortedDirty = false
	}
	return n.zSorted
}

func (n *Node) invalidateZSort() {
	if n.virtual {
		if p := n.Parent(); p != nil {
			p.invalidateZSort()
		}
		return
	}
	n.zSortedDirty = true
}

func (n *Node) markMeasurablesDirty() {
	n.main.measurablesDirty = true
	if n.lookahead != nil {
		n.lookahead.measurablesDirty = true
	}
}

// onChildrenChanged drops every cache derived from the child list.
func (n *Node) onChildrenChanged() {
	if n.virtualChildrenCount > 0 {
		n.unfoldedDirty = true
	}
	n.markMeasurablesDirty()
	if n.virtual && n.parent != nil {
		n.parent.unfoldedDirty = true
		n.parent.markMeasurablesDirty()
	}
	n.invalidateZSort()
}

// =============================================================================
// Structural edits
// =============================================================================

// InsertAt inserts child at index i of the direct children. The child must be
// detached and without a parent. A virtual child cannot go into a virtual node.
func (n *Node) InsertAt(i int, child *Node) {
	if child.parent != nil {
		panic(invalidTree("cannot insert %s into %s: it already has parent %s", child, n, child.parent))
	}
	if child.owner != nil {
		panic(invalidTree("cannot insert %s into %s: it is already attached", child, n))
	}
	if child.virtual && n.virtual {
		panic(invalidTree("cannot insert virtual %s into virtual %s", child, n))
	}
	if i < 0 || i > len(n.children) {
		panic(invalidTree("insert index %d out of range [0, %d] on %s", i, len(n.children), n))
	}
	child.parent = n
	n.children = slices.Insert(n.children, i, child)
	if child.virtual {
		n.virtualChildrenCount++
	}
	n.onChildrenChanged()
	if n.owner != nil {
		child.attach(n.owner)
	}
}

// Append inserts child after the last direct child.
func (n *Node) Append(child *Node) { n.InsertAt(len(n.children), child) }

// RemoveAt removes count direct children starting at index i.
func (n *Node) RemoveAt(i, count int) {
	if count < 0 || i < 0 || i+count > len(n.children) {
		panic(invalidTree("remove range [%d, %d) out of range on %s", i, i+count, n))
	}
	for j := i + count - 1; j >= i; j-- {
		child := n.children[j]
		n.children = slices.Delete(n.children, j, j+1)
		n.onChildRemoved(child)
	}
}

// RemoveAll removes every direct child.
func (n *Node) RemoveAll() {
	for j := len(n.children) - 1; j >= 0; j-- {
		child := n.children[j]
		n.children = n.children[:j]
		n.onChildRemoved(child)
	}
}

func (n *Node) onChildRemoved(child *Node) {
	if n.owner != nil {
		child.detach()
	}
	child.parent = nil
	if child.virtual {
		n.virtualChildrenCount--
	}
	n.onChildrenChanged()
}

// Move moves count direct children starting at from so that they end up in
// front of the child at index to, where to is an index into the list before
// the move. Moving the second of A B C D E to 3 gives A C B D E.
func (n *Node) Move(from, to, count int) {
	if from == to {
		return
	}
	if count < 0 || from < 0 || from+count > len(n.children) || to < 0 || to > len(n.children) ||
		(to > from && to < from+count) {
		panic(invalidTree("move [%d, %d) to %d out of range on %s", from, from+count, to, n))
	}
	block := slices.Clone(n.children[from : from+count])
	n.children = slices.Delete(n.children, from, from+count)
	dest := to
	if from < to {
		dest = to - count
	}
	n.children = slices.Insert(n.children, dest, block...)
	n.onChildrenChanged()
	n.invalidateMeasurements()
}

// =============================================================================
// Attach / detach
// =============================================================================

// Attach attaches a root node, and with it the whole tree, to owner.
func (n *Node) Attach(owner Owner) {
	if n.parent != nil {
		panic(invalidTree("%s is not a root, attach its root instead", n))
	}
	n.attach(owner)
}

// Detach detaches a root node and its tree from its owner.
func (n *Node) Detach() {
	if n.parent != nil {
		panic(invalidTree("%s is not a root, remove it from %s instead", n, n.parent))
	}
	n.detach()
}

func (n *Node) attach(owner Owner) {
	if n.owner != nil {
		panic(errors.New(errors.ErrCodeIllegalState, "%s is already attached", n))
	}
	if n.parent != nil && n.parent.owner != owner {
		panic(errors.New(errors.ErrCodeIllegalState, "%s attached to an owner other than its parent's", n))
	}
	parent := n.Parent()
	if parent == nil {
		n.isPlaced = true
	}
	n.owner = owner
	if parent != nil {
		n.depth = parent.depth + 1
	} else {
		n.depth = 0
	}
	owner.OnAttach(n)

	switch {
	case parent != nil && parent.lookaheadScope != nil:
		n.lookaheadScope = parent.lookaheadScope
	case n.lookaheadRoot:
		n.lookaheadScope = n
	}
	if n.lookaheadScope != nil && n.lookahead == nil {
		n.lookahead = newPassDelegate(n, PassLookahead)
	}

	attachElements(n)
	for _, ch := range n.children {
		ch.attach(owner)
	}
	n.invalidateMeasurements()
	if parent != nil {
		parent.invalidateMeasurements()
	}
}

func (n *Node) detach() {
	owner := n.owner
	if owner == nil {
		panic(errors.New(errors.ErrCodeIllegalState, "%s is not attached", n))
	}
	if parent := n.Parent(); parent != nil {
		parent.inner.invalidateLayer()
		parent.invalidateMeasurements()
		n.measuredByParent = NotUsed
	}
	n.main.lines.reset()
	if n.lookahead != nil {
		n.lookahead.lines.reset()
	}
	detachElements(n)
	owner.OnDetach(n)
	n.owner = nil
	n.depth = 0
	for _, ch := range n.children {
		ch.detach()
	}
	n.placeOrder = NotPlacedPlaceOrder
	n.previousPlaceOrder = NotPlacedPlaceOrder
	n.isPlaced = false
	for _, c := range n.coordinators() {
		c.destroyLayer()
	}
	n.lookaheadScope = nil
	n.lookahead = nil
}
