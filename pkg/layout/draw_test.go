package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/lattice/pkg/geom"
)

func TestDrawModifierChain(t *testing.T) {
	root := New(stack).Named("root")
	root.SetModifier(Modifier{fill{"red"}, padding{5}, fill{"blue"}})
	A := New(newLeaf(10, 10)).Named("A")
	A.SetModifier(Modifier{fill{"green"}})
	root.Append(A)
	newTestTree(t, root, geom.Loose(100, 100))

	var cv recordingCanvas
	root.Draw(&cv)
	want := []string{
		"root red 20x20@(0, 0)",
		"root blue 10x10@(5, 5)",
		"A green 10x10@(5, 5)",
	}
	if !slices.Equal(cv.ops, want) {
		t.Errorf("ops = %q, want %q", cv.ops, want)
	}
	if len(cv.saved) != 0 {
		t.Errorf("unbalanced Save/Restore: %d left", len(cv.saved))
	}
}

func TestDrawZOrder(t *testing.T) {
	pol := &placing{order: []int{0, 1, 2}, z: map[int]float64{0: 1}}
	root := New(pol).Named("root")
	for i, name := range []string{"A", "B", "C"} {
		n := New(newLeaf(10, 10)).Named(name)
		n.SetModifier(Modifier{fill{[]string{"red", "green", "blue"}[i]}})
		root.Append(n)
	}
	s, _ := newTestTree(t, root, geom.Fixed(30, 10))

	var cv recordingCanvas
	root.Draw(&cv)
	want := []string{
		"B green 10x10@(10, 0)",
		"C blue 10x10@(20, 0)",
		"A red 10x10@(0, 0)",
	}
	if !slices.Equal(cv.ops, want) {
		t.Errorf("ops = %q, want %q", cv.ops, want)
	}

	// Unplaced children are not drawn.
	pol.skip = map[int]bool{2: true}
	root.RequestRelayout(false)
	mustLayout(t, s)
	cv = recordingCanvas{}
	root.Draw(&cv)
	if len(cv.ops) != 2 {
		t.Errorf("ops = %q, want 2 entries", cv.ops)
	}
}

func TestDrawAppliesLayers(t *testing.T) {
	child := New(newLeaf(10, 10)).Named("child")
	layered := MeasurePolicyFunc(func(_ MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
		p := children[0].Measure(c.Loosen())
		return Layout(20, 20, nil, func(s *PlacementScope) {
			s.PlaceWithLayer(p, geom.Pt(0, 0), 0, func(lp *LayerProperties) { lp.Alpha = 0.5 })
		})
	})
	root := New(layered)
	root.Append(child)
	newTestTree(t, root, geom.Loose(100, 100))

	var cv recordingCanvas
	root.Draw(&cv)
	if cv.layers != 1 {
		t.Errorf("ApplyLayer calls = %d, want 1", cv.layers)
	}
}
