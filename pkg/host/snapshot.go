package host

import (
	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/layout"
)

// NodeSnapshot is the committed geometry of one node.
type NodeSnapshot struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Size         geom.Size       `json:"size"`
	Position     geom.Offset     `json:"position"`
	InRoot       geom.Offset     `json:"in_root"`
	Z            float64         `json:"z,omitempty"`
	PlaceOrder   int             `json:"place_order"`
	Placed       bool            `json:"placed"`
	MeasureCount int             `json:"measure_count"`
	Lookahead    *geom.Size      `json:"lookahead,omitempty"`
	Children     []*NodeSnapshot `json:"children,omitempty"`
}

// Snapshot is the geometry of a whole tree after a frame.
type Snapshot struct {
	Frame int           `json:"frame"`
	Root  *NodeSnapshot `json:"root"`
}

// Snapshot captures the current geometry of the tree.
func (s *Surface) Snapshot() *Snapshot {
	return &Snapshot{Frame: s.frames, Root: SnapshotNode(s.root)}
}

// SnapshotNode captures n and its subtree. Unplaced nodes get place order -1.
func SnapshotNode(n *layout.Node) *NodeSnapshot {
	order := n.PlaceOrder()
	if order == layout.NotPlacedPlaceOrder {
		order = -1
	}
	size, _ := n.MeasuredSize()
	ns := &NodeSnapshot{
		ID:           n.ID(),
		Name:         n.String(),
		Size:         size,
		Position:     n.Position(),
		Z:            n.ZIndex(),
		PlaceOrder:   order,
		Placed:       n.IsPlaced(),
		MeasureCount: n.MeasureCount(),
	}
	if n.IsAttached() {
		ns.InRoot = n.PositionInRoot()
	}
	if la, ok := n.LookaheadSize(); ok {
		ns.Lookahead = &la
	}
	for _, ch := range n.Children() {
		ns.Children = append(ns.Children, SnapshotNode(ch))
	}
	return ns
}

// Find returns the first node named name, depth first.
func (ns *NodeSnapshot) Find(name string) *NodeSnapshot {
	if ns.Name == name {
		return ns
	}
	for _, ch := range ns.Children {
		if f := ch.Find(name); f != nil {
			return f
		}
	}
	return nil
}

// Count returns the number of nodes in the subtree.
func (ns *NodeSnapshot) Count() int {
	n := 1
	for _, ch := range ns.Children {
		n += ch.Count()
	}
	return n
}
