package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/lattice/pkg/errors"
)

// assertConsistent panics with a tree dump if some pending node could never
// be reached by the scheduler.
func (s *Scheduler) assertConsistent() {
	bad := s.findInconsistent(s.root)
	if bad == nil {
		return
	}
	panic(errors.New(errors.ErrCodeInconsistentTree,
		"%s is in an inconsistent state\n%s", bad, DumpTree(s.root, bad)))
}

func (s *Scheduler) findInconsistent(n *Node) *Node {
	if !s.consistentState(n) {
		return n
	}
	for _, ch := range n.Children() {
		if bad := s.findInconsistent(ch); bad != nil {
			return bad
		}
	}
	return nil
}

// consistentState reports whether pending work on n has a path to being done:
// n is queued, postponed, or an ancestor step that will reach it is pending or
// running.
func (s *Scheduler) consistentState(n *Node) bool {
	parent := n.Parent()
	if !n.isPlaced && !(n.placeOrder != NotPlacedPlaceOrder && parent != nil && parent.isPlaced) {
		return true
	}
	if n.main.measurePending {
		return s.dirty.Contains(n) ||
			(parent != nil && (parent.main.measurePending || parent.state == Measuring || parent.state == LayingOut)) ||
			s.isPostponed(n)
	}
	if n.main.layoutPending {
		return s.dirty.Contains(n) ||
			parent == nil ||
			parent.main.measurePending ||
			parent.main.layoutPending ||
			parent.state == Measuring ||
			parent.state == LayingOut
	}
	if parent != nil && n.isPlaced && parent.isPlaced && parent.state == Idle &&
		!parent.main.layoutPending && !parent.main.measurePending &&
		n.placeOrder == NotPlacedPlaceOrder {
		return false
	}
	return true
}

// DumpTree renders the subtree of n, one node per line. The node mark, if not
// nil, is flagged.
func DumpTree(n *Node, mark *Node) string {
	var b strings.Builder
	dumpNode(&b, n, mark, 0)
	return b.String()
}

func dumpNode(b *strings.Builder, n *Node, mark *Node, indent int) {
	b.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(b, "%s [%s]", n, n.state)
	if n.main.measurePending {
		b.WriteString(" measure-pending")
	}
	if n.main.layoutPending {
		b.WriteString(" layout-pending")
	}
	if n.LookaheadMeasurePending() {
		b.WriteString(" lookahead-measure-pending")
	}
	if n.LookaheadLayoutPending() {
		b.WriteString(" lookahead-layout-pending")
	}
	if !n.isPlaced {
		b.WriteString(" unplaced")
	}
	fmt.Fprintf(b, " size=%s pos=%s", n.main.size, n.main.lastPosition)
	if n.placeOrder != NotPlacedPlaceOrder {
		fmt.Fprintf(b, " order=%d", n.placeOrder)
	}
	if n == mark {
		b.WriteString("  <--")
	}
	b.WriteByte('\n')
	for _, ch := range n.Children() {
		dumpNode(b, ch, mark, indent+1)
	}
}
