package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

// placing measures every child and places them in the given order with the
// given z-indices, skipping children listed in skip.
type placing struct {
	order []int
	z     map[int]float64
	skip  map[int]bool
}

func (p *placing) Measure(_ MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
	ps := measureAll(children, c.Loosen())
	return Layout(c.MaxWidth, c.MaxHeight, nil, func(s *PlacementScope) {
		for _, i := range p.order {
			if !p.skip[i] {
				s.PlaceAt(ps[i], geom.Pt(i*10, 0), p.z[i])
			}
		}
	})
}

func TestPlaceOrder(t *testing.T) {
	leaves := namedLeaves("A", "B", "C", "D")
	pol := &placing{order: []int{3, 1, 0, 2}, skip: map[int]bool{1: true}}
	root := New(pol)
	for _, ch := range leaves {
		root.Append(ch)
	}
	s, _ := newTestTree(t, root, geom.Fixed(100, 100))

	want := map[string]int{"D": 0, "A": 1, "C": 2, "B": NotPlacedPlaceOrder}
	for _, ch := range leaves {
		if got := ch.PlaceOrder(); got != want[ch.String()] {
			t.Errorf("%s.PlaceOrder() = %d, want %d", ch, got, want[ch.String()])
		}
	}
	if leaves[1].IsPlaced() {
		t.Error("B.IsPlaced() = true, want false")
	}
	if root.PlaceOrder() != 0 {
		t.Errorf("root.PlaceOrder() = %d, want 0", root.PlaceOrder())
	}

	// Placing B again marks it placed and gives it the next order.
	pol.skip = nil
	root.RequestRelayout(false)
	mustLayout(t, s)
	if !leaves[1].IsPlaced() || leaves[1].PlaceOrder() != 1 {
		t.Errorf("B placed = %v order = %d, want true 1", leaves[1].IsPlaced(), leaves[1].PlaceOrder())
	}
	var orders []int
	for _, ch := range leaves {
		orders = append(orders, ch.PlaceOrder())
	}
	slices.Sort(orders)
	if !slices.Equal(orders, []int{0, 1, 2, 3}) {
		t.Errorf("place orders = %v, want 0..3", orders)
	}
}

func TestPlaceTwicePanics(t *testing.T) {
	twice := MeasurePolicyFunc(func(_ MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
		p := children[0].Measure(c)
		return Layout(10, 10, nil, func(s *PlacementScope) {
			s.Place(p, 0, 0)
			s.Place(p, 5, 5)
		})
	})
	root := New(twice)
	root.Append(New(newLeaf(1, 1)))
	s := NewScheduler(root, Options{})
	root.Attach(newTestOwner(s))
	s.UpdateRootConstraints(geom.Fixed(10, 10))
	expectPanic(t, errors.ErrCodePlaceOrder, func() { s.MeasureAndLayout() })
}

func TestZSortedChildren(t *testing.T) {
	leaves := namedLeaves("A", "B", "C", "D")
	pol := &placing{order: []int{0, 1, 2, 3}, z: map[int]float64{0: 2, 2: -1}}
	root := New(pol)
	for _, ch := range leaves {
		root.Append(ch)
	}
	s, _ := newTestTree(t, root, geom.Fixed(100, 100))

	if got := names(root.ZSortedChildren()); got != "C B D A" {
		t.Errorf("ZSortedChildren() = %q, want %q", got, "C B D A")
	}

	// Equal z falls back to place order.
	pol.z = nil
	pol.order = []int{3, 2, 1, 0}
	root.RequestRelayout(false)
	mustLayout(t, s)
	if got := names(root.ZSortedChildren()); got != "D C B A" {
		t.Errorf("ZSortedChildren() = %q, want %q", got, "D C B A")
	}
}

type geometry struct {
	pos   geom.Offset
	root  geom.Offset
	size  geom.Size
	order int
}

func snapshot(nodes ...*Node) []geometry {
	out := make([]geometry, len(nodes))
	for i, n := range nodes {
		out[i] = geometry{n.Position(), n.PositionInRoot(), n.Size(), n.PlaceOrder()}
	}
	return out
}

func TestReplaceIsIdempotent(t *testing.T) {
	X := New(stack).Named("X")
	X.SetModifier(Modifier{padding{4}})
	Y := New(newLeaf(10, 10)).Named("Y")
	X.Append(Y)
	Z := New(newLeaf(5, 5)).Named("Z")
	root := New(column)
	root.Append(X)
	root.Append(Z)
	newTestTree(t, root, geom.Loose(100, 100))

	nodes := []*Node{root, X, Y, Z}
	want := snapshot(nodes...)
	counts := measureCounts(nodes...)
	for i := 0; i < 2; i++ {
		X.replace()
		if got := snapshot(nodes...); !slices.Equal(got, want) {
			t.Fatalf("replace #%d geometry = %v, want %v", i+1, got, want)
		}
	}
	if got := remeasured(counts); len(got) != 0 {
		t.Errorf("replace remeasured %v", got)
	}

	expectPanic(t, errors.ErrCodeIllegalState, func() { New(stack).replace() })
}

func TestLayerCoordinates(t *testing.T) {
	effect := LayerEffect(func(p *LayerProperties) {
		p.ScaleX = 2
		p.TranslationX = 5
	})
	child := New(newLeaf(10, 10)).Named("child")
	layered := MeasurePolicyFunc(func(_ MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
		p := children[0].Measure(c.Loosen())
		return Layout(50, 50, nil, func(s *PlacementScope) {
			if effect == nil {
				s.Place(p, 10, 10)
				return
			}
			s.PlaceWithLayer(p, geom.Pt(10, 10), 0, effect)
		})
	})
	root := New(layered)
	root.Append(child)
	s, o := newTestTree(t, root, geom.Loose(100, 100))

	if len(o.layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(o.layers))
	}
	l := o.layers[0]
	if l.pos != geom.Pt(10, 10) || l.size != (geom.Size{Width: 10, Height: 10}) {
		t.Errorf("layer at %v size %v, want (10, 10) 10x10", l.pos, l.size)
	}
	if got, want := child.PositionInRoot(), geom.Pt(15, 10); got != want {
		t.Errorf("PositionInRoot() = %v, want %v", got, want)
	}
	o.window = geom.Pt(100, 50)
	if got, want := child.PositionInWindow(), geom.Pt(115, 60); got != want {
		t.Errorf("PositionInWindow() = %v, want %v", got, want)
	}
	if got := child.WindowToLocal(geom.Pt(115, 60)); got != (geom.Offset{}) {
		t.Errorf("WindowToLocal() = %v, want (0, 0)", got)
	}

	// Dropping the effect destroys the layer.
	effect = nil
	root.RequestRelayout(false)
	mustLayout(t, s)
	if !l.destroyed {
		t.Error("layer not destroyed after placing without effect")
	}
}

func TestOnPositioned(t *testing.T) {
	var log []string
	el := positioned{log: &log}
	A1 := New(newLeaf(10, 10)).Named("A1")
	A1.SetModifier(Modifier{el})
	A := New(stack).Named("A")
	A.SetModifier(Modifier{el})
	A.Append(A1)
	root := New(stack).Named("root")
	root.SetModifier(Modifier{el})
	root.Append(A)
	s, _ := newTestTree(t, root, geom.Loose(100, 100))

	if !slices.Equal(log, []string{"root", "A", "A1"}) {
		t.Errorf("first pass positioned = %v, want [root A A1]", log)
	}

	log = log[:0]
	A1.RequestRelayout(false)
	mustLayout(t, s)
	if !slices.Equal(log, []string{"A1"}) {
		t.Errorf("relayout positioned = %v, want [A1]", log)
	}
}
