package policy

import (
	"testing"

	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/host"
	"github.com/matzehuels/lattice/pkg/layout"
)

func run(t *testing.T, root *layout.Node, c geom.Constraints) *host.Surface {
	t.Helper()
	s := host.New(root, host.Options{Layout: layout.Options{ConsistencyChecks: true}})
	t.Cleanup(s.Close)
	if err := s.SetConstraints(c); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Frame(); err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	return s
}

func node(p layout.MeasurePolicy, name string, mods ...layout.Element) *layout.Node {
	n := layout.New(p).Named(name)
	if len(mods) > 0 {
		n.SetModifier(mods)
	}
	return n
}

func parent(p layout.MeasurePolicy, children ...*layout.Node) *layout.Node {
	n := layout.New(p).Named("parent")
	for _, ch := range children {
		n.Append(ch)
	}
	return n
}

func wantPos(t *testing.T, n *layout.Node, x, y int) {
	t.Helper()
	if got := n.Position(); got != geom.Pt(x, y) {
		t.Errorf("%s.Position() = %v, want %v", n, got, geom.Pt(x, y))
	}
}

func wantSize(t *testing.T, n *layout.Node, w, h int) {
	t.Helper()
	if got := n.Size(); got != (geom.Size{Width: w, Height: h}) {
		t.Errorf("%s.Size() = %v, want %dx%d", n, got, w, h)
	}
}

func TestBox(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		x, y int
	}{
		{name: "start", box: Box{}, x: 0, y: 0},
		{name: "center end", box: Box{Horizontal: geom.Center, Vertical: geom.End}, x: 10, y: 20},
		{name: "end center", box: Box{Horizontal: geom.End, Vertical: geom.Center}, x: 20, y: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := node(FixedLeaf(10, 10), "A")
			p := parent(tt.box, a)
			run(t, p, geom.Fixed(30, 30))
			wantPos(t, a, tt.x, tt.y)
		})
	}
}

func TestBoxSizesToLargestChild(t *testing.T) {
	p := parent(Box{}, node(FixedLeaf(10, 40), "A"), node(FixedLeaf(30, 5), "B"))
	run(t, p, geom.Loose(100, 100))
	wantSize(t, p, 30, 40)
}

func TestEmpty(t *testing.T) {
	n := layout.New(Empty)
	run(t, n, geom.Constraints{MinWidth: 7, MaxWidth: 50, MinHeight: 3, MaxHeight: 50})
	wantSize(t, n, 7, 3)
}

func TestRowWeights(t *testing.T) {
	a := node(FixedLeaf(10, 10), "A")
	b := node(FixedLeaf(0, 0), "B", Weight(1))
	c := node(FixedLeaf(0, 0), "C", Weight(2))
	p := parent(Row{Spacing: 5}, a, b, c)
	run(t, p, geom.Loose(100, 50))

	wantSize(t, p, 100, 10)
	wantPos(t, a, 0, 0)
	wantPos(t, b, 15, 0)
	wantPos(t, c, 46, 0)
	wantSize(t, b, 26, 0)
	wantSize(t, c, 54, 0)
}

func TestRowUnboundedIgnoresWeights(t *testing.T) {
	a := node(FixedLeaf(10, 10), "A", Weight(1))
	b := node(FixedLeaf(20, 10), "B")
	p := parent(Row{}, a, b)
	run(t, p, geom.Constraints{MaxWidth: geom.Infinity, MaxHeight: 100})
	wantSize(t, p, 30, 10)
	wantPos(t, b, 10, 0)
}

func TestColumnAlign(t *testing.T) {
	a := node(FixedLeaf(10, 10), "A")
	b := node(FixedLeaf(30, 20), "B")
	p := parent(Column{Spacing: 2, Align: geom.Center}, a, b)
	run(t, p, geom.Loose(100, 100))
	wantSize(t, p, 30, 32)
	wantPos(t, a, 10, 0)
	wantPos(t, b, 0, 12)
}

func TestRowBaseline(t *testing.T) {
	a := node(Leaf(func() geom.Size { return geom.Size{Width: 10, Height: 20} }, WithBaseline(func() int { return 10 })), "A")
	b := node(Leaf(func() geom.Size { return geom.Size{Width: 10, Height: 30} }, WithBaseline(func() int { return 25 })), "B")
	c := node(FixedLeaf(10, 5), "C")
	p := parent(Row{AlignBaseline: true, Align: geom.End}, a, b, c)
	run(t, p, geom.Loose(100, 100))
	wantSize(t, p, 30, 35)
	wantPos(t, a, 0, 15)
	wantPos(t, b, 10, 0)
	wantPos(t, c, 20, 30)
}

func TestRowRightToLeft(t *testing.T) {
	a := node(FixedLeaf(10, 10), "A")
	b := node(FixedLeaf(20, 10), "B")
	p := parent(Row{}, a, b)
	p.SetDirection(layout.RightToLeft)
	run(t, p, geom.Fixed(50, 10))
	wantPos(t, a, 40, 0)
	wantPos(t, b, 20, 0)
}

func TestLinearIntrinsics(t *testing.T) {
	children := []layout.IntrinsicMeasurable{fakeIntrinsic{10, 5}, fakeIntrinsic{30, 7}}
	if got := (Row{Spacing: 4}).MaxIntrinsicWidth(children, 0); got != 44 {
		t.Errorf("Row.MaxIntrinsicWidth() = %d, want 44", got)
	}
	if got := (Row{}).MinIntrinsicHeight(children, 0); got != 7 {
		t.Errorf("Row.MinIntrinsicHeight() = %d, want 7", got)
	}
	if got := (Column{Spacing: 1}).MaxIntrinsicHeight(children, 0); got != 13 {
		t.Errorf("Column.MaxIntrinsicHeight() = %d, want 13", got)
	}
	if got := (Column{}).MinIntrinsicWidth(children, 0); got != 30 {
		t.Errorf("Column.MinIntrinsicWidth() = %d, want 30", got)
	}
	if got := (Box{}).MaxIntrinsicWidth(children, 0); got != 30 {
		t.Errorf("Box.MaxIntrinsicWidth() = %d, want 30", got)
	}
}

type fakeIntrinsic struct{ w, h int }

func (f fakeIntrinsic) ParentData() any            { return nil }
func (f fakeIntrinsic) MinIntrinsicWidth(int) int  { return f.w }
func (f fakeIntrinsic) MaxIntrinsicWidth(int) int  { return f.w }
func (f fakeIntrinsic) MinIntrinsicHeight(int) int { return f.h }
func (f fakeIntrinsic) MaxIntrinsicHeight(int) int { return f.h }

func TestParentData(t *testing.T) {
	n := node(FixedLeaf(1, 1), "A", LayoutID("outer"), Weight(2), LayoutID("inner"))
	got, _ := n.ParentData().(Data)
	if got != (Data{Weight: 2, ID: "outer"}) {
		t.Errorf("ParentData() = %+v, want weight 2 id outer", got)
	}
}

func TestFindByLayoutID(t *testing.T) {
	var found string
	pick := layout.MeasurePolicyFunc(func(_ layout.MeasureScope, children []layout.Measurable, c geom.Constraints) layout.MeasureResult {
		m, ok := Find(children, "b")
		if !ok {
			return layout.Layout(0, 0, nil, nil)
		}
		p := m.Measure(c)
		found = DataOf(m).ID
		return layout.Layout(p.Width(), p.Height(), nil, func(s *layout.PlacementScope) { s.Place(p, 0, 0) })
	})
	a := node(FixedLeaf(10, 10), "A", LayoutID("a"))
	b := node(FixedLeaf(20, 5), "B", LayoutID("b"))
	p := parent(pick, a, b)
	run(t, p, geom.Loose(100, 100))
	if found != "b" {
		t.Errorf("found %q, want b", found)
	}
	wantSize(t, p, 20, 5)
	if a.IsPlaced() {
		t.Error("A placed, want only B")
	}
}

func TestFindMissing(t *testing.T) {
	if _, ok := Find([]layout.IntrinsicMeasurable{fakeIntrinsic{}}, "x"); ok {
		t.Error("Find() ok = true for missing id")
	}
}
