package layout

import (
	"testing"

	"github.com/matzehuels/lattice/pkg/geom"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{0, "none"},
		{KindLayout, "layout"},
		{KindLayout | KindDraw, "layout|draw"},
		{KindParentData | KindPositioned, "parentdata|positioned"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestModifierThen(t *testing.T) {
	base := make(Modifier, 1, 4)
	base[0] = padding{1}
	a := base.Then(fill{"red"})
	b := base.Then(fill{"blue"})
	if a[1] != (fill{"red"}) || b[1] != (fill{"blue"}) {
		t.Errorf("Then() shared backing array: a = %v, b = %v", a, b)
	}
	if got := a.Kinds(); got != KindLayout|KindDraw {
		t.Errorf("Kinds() = %v, want layout|draw", got)
	}
}

func TestSetModifierReusesCoordinators(t *testing.T) {
	n := New(newLeaf(10, 10))
	n.SetModifier(Modifier{padding{2}, fill{"red"}, padding{4}})
	first, last := n.elemCoords[0], n.elemCoords[2]

	n.SetModifier(Modifier{padding{2}, fill{"blue"}, padding{4}})
	if n.elemCoords[0] != first || n.elemCoords[2] != last {
		t.Error("unchanged layout elements got new coordinators")
	}
	if got := len(n.coordinators()); got != 3 {
		t.Errorf("chain length = %d, want 3", got)
	}

	n.SetModifier(Modifier{padding{3}, fill{"blue"}, padding{4}})
	if n.elemCoords[0] == first {
		t.Error("changed layout element kept its coordinator")
	}
	if n.elemCoords[2] != last {
		t.Error("unchanged suffix element got a new coordinator")
	}
}

func TestSetModifierInvalidation(t *testing.T) {
	X := New(newLeaf(10, 10)).Named("X")
	X.SetModifier(Modifier{fill{"red"}, padding{4}})
	root := New(stack)
	root.Append(X)
	s, _ := newTestTree(t, root, geom.Loose(100, 100))

	// Draw only.
	before := measureCounts(root, X)
	X.SetModifier(Modifier{fill{"blue"}, padding{4}})
	if s.HasPendingWork() {
		t.Errorf("draw-only change left pending work: %v", s.DirtyNodes())
	}
	mustLayout(t, s)
	if got := remeasured(before); len(got) != 0 {
		t.Errorf("draw-only change remeasured %v", got)
	}

	// Layout.
	X.SetModifier(Modifier{fill{"blue"}, padding{8}})
	mustLayout(t, s)
	if got, want := X.Size(), (geom.Size{Width: 26, Height: 26}); got != want {
		t.Errorf("X.Size() = %v, want %v", got, want)
	}
	if got := remeasured(before); !got["X"] {
		t.Errorf("padding change remeasured %v, want X", got)
	}
}

func TestParentDataChangeRemeasuresParent(t *testing.T) {
	var seen []any
	reader := MeasurePolicyFunc(func(_ MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
		seen = seen[:0]
		for _, m := range children {
			seen = append(seen, m.ParentData())
		}
		return stack.Measure(nil, children, c)
	})
	A := New(newLeaf(10, 10)).Named("A")
	B := New(newLeaf(10, 10)).Named("B")
	B.SetModifier(Modifier{tag("first")})
	P := New(reader).Named("P")
	P.Append(A)
	P.Append(B)
	s, _ := newTestTree(t, P, geom.Loose(100, 100))
	if len(seen) != 2 || seen[0] != nil || seen[1] != "first" {
		t.Fatalf("parent data = %v, want [<nil> first]", seen)
	}

	A.SetModifier(Modifier{tag("outer"), tag("inner")})
	if !P.MeasurePending() {
		t.Error("P.MeasurePending() = false after a child's parent data changed")
	}
	mustLayout(t, s)
	if seen[0] != "outer" {
		t.Errorf("parent data = %v, want outer to win", seen[0])
	}

	// Same data again is not a change.
	count := P.MeasureCount()
	A.SetModifier(Modifier{tag("outer")})
	mustLayout(t, s)
	if P.MeasureCount() != count {
		t.Errorf("P.MeasureCount() = %d, want %d", P.MeasureCount(), count)
	}
}

// attachCounter counts attach and detach calls.
type attachCounter struct{ attached, detached *int }

func (a attachCounter) Kinds() Kind  { return KindSemantics }
func (a attachCounter) Attach(*Node) { *a.attached++ }
func (a attachCounter) Detach(*Node) { *a.detached++ }

func TestAttachableElements(t *testing.T) {
	var attached, detached int
	el := attachCounter{&attached, &detached}
	child := New(newLeaf(1, 1))
	child.SetModifier(Modifier{el})
	if attached != 0 {
		t.Fatalf("attached = %d before the node is attached", attached)
	}
	root := New(stack)
	root.Append(child)
	newTestTree(t, root, geom.Loose(10, 10))
	if attached != 1 {
		t.Errorf("attached = %d, want 1", attached)
	}

	child.SetModifier(nil)
	if detached != 1 {
		t.Errorf("detached = %d after removing the element, want 1", detached)
	}
	child.SetModifier(Modifier{el})
	root.RemoveAt(0, 1)
	if attached != 2 || detached != 2 {
		t.Errorf("attached, detached = %d, %d, want 2, 2", attached, detached)
	}
}
