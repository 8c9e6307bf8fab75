package layout

import (
	"github.com/google/btree"

	"github.com/matzehuels/lattice/pkg/errors"
)

const depthSetDegree = 8

// DepthSortedSet is the set of nodes waiting for the scheduler, ordered by
// depth and then by id. Shallow nodes come first, so a parent is always
// handled before a child whose constraints it may change.
//
// A node's depth must not change while it is in the set. With extra
// assertions enabled the set records depths on insertion and checks them on
// every later access.
type DepthSortedSet struct {
	tree            *btree.BTreeG[*Node]
	extraAssertions bool
	depths          map[*Node]int
}

// NewDepthSortedSet returns an empty set.
func NewDepthSortedSet(extraAssertions bool) *DepthSortedSet {
	s := &DepthSortedSet{
		tree:            btree.NewG(depthSetDegree, nodeLess),
		extraAssertions: extraAssertions,
	}
	if extraAssertions {
		s.depths = make(map[*Node]int)
	}
	return s
}

func nodeLess(a, b *Node) bool {
	if a.depth != b.depth {
		return a.depth < b.depth
	}
	return a.id < b.id
}

// Add inserts n. The node must be attached.
func (s *DepthSortedSet) Add(n *Node) {
	if !n.IsAttached() {
		panic(errors.New(errors.ErrCodeNotAttached, "%s added to the dirty set while detached", n))
	}
	if s.extraAssertions {
		if d, ok := s.depths[n]; ok {
			s.checkDepth(n, d)
			return
		}
		s.depths[n] = n.depth
	}
	s.tree.ReplaceOrInsert(n)
}

// Remove deletes n and reports whether it was present.
func (s *DepthSortedSet) Remove(n *Node) bool {
	_, ok := s.tree.Delete(n)
	if s.extraAssertions && ok {
		s.checkDepth(n, s.depths[n])
		delete(s.depths, n)
	}
	return ok
}

// Contains reports whether n is in the set.
func (s *DepthSortedSet) Contains(n *Node) bool {
	ok := s.tree.Has(n)
	if s.extraAssertions && ok {
		s.checkDepth(n, s.depths[n])
	}
	return ok
}

// Pop removes and returns the shallowest node.
func (s *DepthSortedSet) Pop() (*Node, bool) {
	n, ok := s.tree.DeleteMin()
	if ok && s.extraAssertions {
		s.checkDepth(n, s.depths[n])
		delete(s.depths, n)
	}
	return n, ok
}

// PopEach pops nodes and hands them to fn until the set is empty. fn may add
// nodes to the set.
func (s *DepthSortedSet) PopEach(fn func(n *Node)) {
	for {
		n, ok := s.Pop()
		if !ok {
			return
		}
		fn(n)
	}
}

func (s *DepthSortedSet) Len() int      { return s.tree.Len() }
func (s *DepthSortedSet) IsEmpty() bool { return s.tree.Len() == 0 }

// Nodes returns the members in order without removing them.
func (s *DepthSortedSet) Nodes() []*Node {
	out := make([]*Node, 0, s.tree.Len())
	s.tree.Ascend(func(n *Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

func (s *DepthSortedSet) checkDepth(n *Node, want int) {
	if n.depth != want {
		panic(errors.New(errors.ErrCodeIllegalState,
			"%s changed depth from %d to %d while in the dirty set", n, want, n.depth))
	}
}
