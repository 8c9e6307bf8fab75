package layout

import (
	"strings"
	"testing"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

func TestDumpTree(t *testing.T) {
	A := New(newLeaf(10, 10)).Named("A")
	B := New(newLeaf(5, 5)).Named("B")
	root := New(column).Named("root")
	root.Append(A)
	root.Append(B)
	newTestTree(t, root, geom.Loose(100, 100))

	got := DumpTree(root, B)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("DumpTree() has %d lines, want 3:\n%s", len(lines), got)
	}
	if !strings.HasPrefix(lines[1], "  A [Idle]") {
		t.Errorf("line 1 = %q, want indented A", lines[1])
	}
	if !strings.Contains(lines[2], "pos=(0, 10)") || !strings.HasSuffix(lines[2], "<--") {
		t.Errorf("line 2 = %q, want marked B at (0, 10)", lines[2])
	}
	if strings.Contains(lines[1], "<--") {
		t.Errorf("line 1 = %q is marked", lines[1])
	}
}

func TestAssertConsistent(t *testing.T) {
	A := New(newLeaf(10, 10)).Named("A")
	root := New(stack).Named("root")
	root.Append(A)
	s, _ := newTestTree(t, root, geom.Loose(100, 100))

	s.assertConsistent()

	// A pending measure nobody will ever run.
	A.main.measurePending = true
	expectPanic(t, errors.ErrCodeInconsistentTree, s.assertConsistent)
	A.main.measurePending = false
}
