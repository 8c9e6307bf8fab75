package layout

import (
	"strings"
	"testing"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

func names(nodes []*Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}

func namedLeaves(ns ...string) []*Node {
	out := make([]*Node, len(ns))
	for i, n := range ns {
		out[i] = New(newLeaf(10, 10)).Named(n)
	}
	return out
}

func TestMove(t *testing.T) {
	tests := []struct {
		name            string
		from, to, count int
		want            string
	}{
		{name: "forward", from: 1, to: 3, count: 1, want: "A C B D E"},
		{name: "backward pair", from: 3, to: 0, count: 2, want: "D E A B C"},
		{name: "forward pair", from: 0, to: 4, count: 2, want: "C D A B E"},
		{name: "no-op", from: 2, to: 2, count: 1, want: "A B C D E"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(column)
			for _, ch := range namedLeaves("A", "B", "C", "D", "E") {
				p.Append(ch)
			}
			p.Move(tt.from, tt.to, tt.count)
			if got := names(p.Children()); got != tt.want {
				t.Errorf("Move(%d, %d, %d) = %q, want %q", tt.from, tt.to, tt.count, got, tt.want)
			}
		})
	}
}

func TestMoveRelayouts(t *testing.T) {
	root := New(column)
	leaves := namedLeaves("A", "B", "C")
	for _, ch := range leaves {
		root.Append(ch)
	}
	s, _ := newTestTree(t, root, geom.Loose(100, 100))

	root.Move(0, 3, 1)
	mustLayout(t, s)
	if got, want := leaves[0].Position(), geom.Pt(0, 20); got != want {
		t.Errorf("A.Position() = %v, want %v", got, want)
	}
	if got, want := leaves[1].Position(), geom.Pt(0, 0); got != want {
		t.Errorf("B.Position() = %v, want %v", got, want)
	}
}

func TestInsertAtErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Node, *Node, int)
	}{
		{
			name: "has parent",
			build: func() (*Node, *Node, int) {
				child := New(stack)
				New(stack).Append(child)
				return New(stack), child, 0
			},
		},
		{
			name: "virtual into virtual",
			build: func() (*Node, *Node, int) {
				return NewVirtual(), NewVirtual(), 0
			},
		},
		{
			name: "index out of range",
			build: func() (*Node, *Node, int) {
				return New(stack), New(stack), 2
			},
		},
		{
			name: "attached child",
			build: func() (*Node, *Node, int) {
				child := New(stack)
				child.Attach(newTestOwner(NewScheduler(child, Options{})))
				return New(stack), child, 0
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, child, i := tt.build()
			expectPanic(t, errors.ErrCodeInvalidTree, func() { parent.InsertAt(i, child) })
		})
	}
}

func TestVirtualNodeTransparency(t *testing.T) {
	build := func(withVirtual bool) (*Node, []*Node) {
		leaves := namedLeaves("A", "B", "C", "D")
		root := New(column).Named("root")
		root.Append(leaves[0])
		if withVirtual {
			v := NewVirtual().Named("V")
			v.Append(leaves[1])
			v.Append(leaves[2])
			root.Append(v)
		} else {
			root.Append(leaves[1])
			root.Append(leaves[2])
		}
		root.Append(leaves[3])
		return root, leaves
	}

	plainRoot, plain := build(false)
	newTestTree(t, plainRoot, geom.Loose(100, 100))
	virtRoot, virt := build(true)
	newTestTree(t, virtRoot, geom.Loose(100, 100))

	if got := names(virtRoot.Children()); got != "A B C D" {
		t.Errorf("Children() = %q, want %q", got, "A B C D")
	}
	if got := len(virtRoot.FoldedChildren()); got != 3 {
		t.Errorf("len(FoldedChildren()) = %d, want 3", got)
	}
	for i := range plain {
		if plain[i].Position() != virt[i].Position() {
			t.Errorf("%s.Position() = %v with virtual parent, want %v", virt[i], virt[i].Position(), plain[i].Position())
		}
		if plain[i].PlaceOrder() != virt[i].PlaceOrder() {
			t.Errorf("%s.PlaceOrder() = %d with virtual parent, want %d", virt[i], virt[i].PlaceOrder(), plain[i].PlaceOrder())
		}
	}
	if virt[1].Parent() != virtRoot {
		t.Errorf("B.Parent() = %v, want root", virt[1].Parent())
	}
	if virt[1].FoldedParent().Name() != "V" {
		t.Errorf("B.FoldedParent() = %v, want V", virt[1].FoldedParent())
	}
	if got := virt[1].Depth(); got != 1 {
		t.Errorf("B.Depth() = %d, want 1", got)
	}
	if virtRoot.Size() != plainRoot.Size() {
		t.Errorf("root.Size() = %v, want %v", virtRoot.Size(), plainRoot.Size())
	}
}

func TestVirtualNodeEdits(t *testing.T) {
	root := New(column).Named("root")
	v := NewVirtual().Named("V")
	root.Append(v)
	s, _ := newTestTree(t, root, geom.Loose(100, 100))

	for _, ch := range namedLeaves("A", "B") {
		v.Append(ch)
	}
	mustLayout(t, s)
	if got, want := root.Size(), (geom.Size{Width: 10, Height: 20}); got != want {
		t.Errorf("root.Size() = %v, want %v", got, want)
	}

	v.RemoveAt(0, 1)
	mustLayout(t, s)
	if got := names(root.Children()); got != "B" {
		t.Errorf("Children() = %q, want %q", got, "B")
	}
	if got, want := root.Size(), (geom.Size{Width: 10, Height: 10}); got != want {
		t.Errorf("root.Size() = %v, want %v", got, want)
	}

	expectPanic(t, errors.ErrCodeInvalidTree, func() { v.SetModifier(Modifier{padding{1}}) })
}

func TestRemoveDetachesSubtree(t *testing.T) {
	A := New(stack).Named("A")
	A1 := New(newLeaf(10, 10)).Named("A1")
	A.Append(A1)
	B := New(newLeaf(5, 5)).Named("B")
	root := New(column)
	root.Append(A)
	root.Append(B)
	s, o := newTestTree(t, root, geom.Loose(100, 100))

	A1.RequestRemeasure(true)
	root.RemoveAt(0, 1)
	if A.IsAttached() || A1.IsAttached() {
		t.Fatal("removed subtree is still attached")
	}
	if got := o.detached; got != 2 {
		t.Errorf("OnDetach calls = %d, want 2", got)
	}
	if A1.PlaceOrder() != NotPlacedPlaceOrder || A1.IsPlaced() {
		t.Errorf("A1 placement = %d/%v, want cleared", A1.PlaceOrder(), A1.IsPlaced())
	}
	for _, n := range s.DirtyNodes() {
		if n == A1 {
			t.Fatal("detached node left in the dirty set")
		}
	}
	mustLayout(t, s)
	if got, want := B.Position(), geom.Pt(0, 0); got != want {
		t.Errorf("B.Position() = %v, want %v", got, want)
	}

	// A detached subtree can be inserted again.
	root.Append(A)
	mustLayout(t, s)
	if !A1.IsAttached() || A1.Depth() != 2 {
		t.Errorf("A1 attached = %v depth = %d, want true 2", A1.IsAttached(), A1.Depth())
	}
	if got, want := A.Position(), geom.Pt(0, 5); got != want {
		t.Errorf("A.Position() = %v, want %v", got, want)
	}
}

func TestRemoveAll(t *testing.T) {
	root := New(column)
	for _, ch := range namedLeaves("A", "B", "C") {
		root.Append(ch)
	}
	s, _ := newTestTree(t, root, geom.Loose(100, 100))
	root.RemoveAll()
	mustLayout(t, s)
	if len(root.Children()) != 0 {
		t.Errorf("len(Children()) = %d, want 0", len(root.Children()))
	}
	if !root.Size().IsZero() {
		t.Errorf("root.Size() = %v, want 0x0", root.Size())
	}
}

func TestAttachNonRoot(t *testing.T) {
	p := New(stack)
	child := New(stack)
	p.Append(child)
	expectPanic(t, errors.ErrCodeInvalidTree, func() { child.Attach(newTestOwner(NewScheduler(p, Options{}))) })
	expectPanic(t, errors.ErrCodeInvalidTree, func() { child.Detach() })
}

func TestSizeBeforeMeasure(t *testing.T) {
	root := New(stack)
	child := New(newLeaf(10, 10)).Named("C")
	root.Append(child)
	s := NewScheduler(root, Options{})
	root.Attach(newTestOwner(s))

	if _, ok := child.MeasuredSize(); ok {
		t.Error("MeasuredSize() ok = true before the first pass")
	}
	expectPanic(t, errors.ErrCodeNotMeasured, func() { child.Size() })

	s.UpdateRootConstraints(geom.Loose(50, 50))
	mustLayout(t, s)
	if got, ok := child.MeasuredSize(); !ok || got != child.Size() {
		t.Errorf("MeasuredSize() = %v, %v, want %v, true", got, ok, child.Size())
	}
}
