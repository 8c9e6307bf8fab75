package layout

import (
	"fmt"
	"testing"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/geom"
)

// =============================================================================
// Owner
// =============================================================================

// testOwner forwards requests to a Scheduler and counts them per node.
type testOwner struct {
	s      *Scheduler
	window geom.Offset

	measures  map[*Node]int
	relayouts map[*Node]int
	changes   map[*Node]int
	attached  int
	detached  int
	layers    []*testLayer
}

func newTestOwner(s *Scheduler) *testOwner {
	return &testOwner{
		s:         s,
		measures:  make(map[*Node]int),
		relayouts: make(map[*Node]int),
		changes:   make(map[*Node]int),
	}
}

func (o *testOwner) OnRequestMeasure(n *Node, lookahead, force bool) {
	o.measures[n]++
	if lookahead {
		o.s.RequestLookaheadRemeasure(n, force)
		return
	}
	o.s.RequestRemeasure(n, force)
}

func (o *testOwner) OnRequestRelayout(n *Node, lookahead, force bool) {
	o.relayouts[n]++
	if lookahead {
		o.s.RequestLookaheadRelayout(n, force)
		return
	}
	o.s.RequestRelayout(n, force)
}

func (o *testOwner) OnAttach(*Node) { o.attached++ }

func (o *testOwner) OnDetach(n *Node) {
	o.detached++
	o.s.OnNodeDetached(n)
}

func (o *testOwner) OnLayoutChange(n *Node)         { o.changes[n]++ }
func (o *testOwner) ForceMeasureTheSubtree(n *Node) { o.s.ForceMeasureTheSubtree(n) }
func (o *testOwner) MeasureIteration() int64        { return o.s.MeasureIteration() }
func (o *testOwner) Observer() ReadObserver         { return nil }

func (o *testOwner) CreateLayer(draw func(Canvas), invalidateParent func()) OwnedLayer {
	l := &testLayer{props: DefaultLayerProperties(), draw: draw}
	o.layers = append(o.layers, l)
	return l
}

func (o *testOwner) CalculatePositionInWindow(p geom.Offset) geom.Offset { return p.Add(o.window) }
func (o *testOwner) CalculateLocalPosition(p geom.Offset) geom.Offset    { return p.Sub(o.window) }

func (o *testOwner) resetCounts() {
	clear(o.measures)
	clear(o.relayouts)
	clear(o.changes)
}

type testLayer struct {
	pos           geom.Offset
	size          geom.Size
	props         LayerProperties
	invalidations int
	destroyed     bool
	draw          func(Canvas)
}

func (l *testLayer) Move(p geom.Offset)             { l.pos = p }
func (l *testLayer) Resize(s geom.Size)             { l.size = s }
func (l *testLayer) UpdateEffect(p LayerProperties) { l.props = p }
func (l *testLayer) Invalidate()                    { l.invalidations++ }
func (l *testLayer) Destroy()                       { l.destroyed = true }
func (l *testLayer) Transform() geom.Transform      { return l.props.Transform() }

// newTestTree attaches root to a fresh scheduler and runs the first pass.
func newTestTree(t *testing.T, root *Node, c geom.Constraints) (*Scheduler, *testOwner) {
	t.Helper()
	s := NewScheduler(root, Options{ConsistencyChecks: true, ExtraAssertions: true})
	o := newTestOwner(s)
	root.Attach(o)
	s.UpdateRootConstraints(c)
	mustLayout(t, s)
	return s, o
}

func mustLayout(t *testing.T, s *Scheduler) bool {
	t.Helper()
	resized, err := s.MeasureAndLayout()
	if err != nil {
		t.Fatalf("MeasureAndLayout() error = %v", err)
	}
	return resized
}

func expectPanic(t *testing.T, code errors.Code, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %s", code)
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, code) {
			t.Fatalf("panic = %v, want code %s", r, code)
		}
	}()
	fn()
}

// measureCounts snapshots MeasureCount for every node.
func measureCounts(nodes ...*Node) map[*Node]int {
	out := make(map[*Node]int, len(nodes))
	for _, n := range nodes {
		out[n] = n.MeasureCount()
	}
	return out
}

// remeasured returns the names of the nodes whose MeasureCount grew.
func remeasured(before map[*Node]int) map[string]bool {
	out := make(map[string]bool)
	for n, c := range before {
		if n.MeasureCount() > c {
			out[n.String()] = true
		}
	}
	return out
}

// =============================================================================
// Policies and modifiers
// =============================================================================

// leaf has no children and a settable content size.
type leaf struct {
	size     geom.Size
	baseline int
}

func newLeaf(w, h int) *leaf { return &leaf{size: geom.Size{Width: w, Height: h}} }

func (l *leaf) Measure(_ MeasureScope, _ []Measurable, c geom.Constraints) MeasureResult {
	var lines map[*AlignmentLine]int
	if l.baseline > 0 {
		lines = map[*AlignmentLine]int{FirstBaseline: l.baseline}
	}
	return Layout(c.ConstrainWidth(l.size.Width), c.ConstrainHeight(l.size.Height), lines, nil)
}

func measureAll(children []Measurable, c geom.Constraints) []Placeable {
	ps := make([]Placeable, len(children))
	for i, m := range children {
		ps[i] = m.Measure(c)
	}
	return ps
}

// stack places every child at the origin.
var stack = MeasurePolicyFunc(func(_ MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
	ps := measureAll(children, c.Loosen())
	w, h := 0, 0
	for _, p := range ps {
		w, h = max(w, p.Width()), max(h, p.Height())
	}
	return Layout(c.ConstrainWidth(w), c.ConstrainHeight(h), nil, func(s *PlacementScope) {
		for _, p := range ps {
			s.Place(p, 0, 0)
		}
	})
})

// column stacks children top to bottom.
var column = MeasurePolicyFunc(func(_ MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
	ps := measureAll(children, geom.Constraints{MaxWidth: c.MaxWidth, MaxHeight: geom.Infinity})
	w, h := 0, 0
	for _, p := range ps {
		w, h = max(w, p.Width()), h+p.Height()
	}
	return Layout(c.ConstrainWidth(w), c.ConstrainHeight(h), nil, func(s *PlacementScope) {
		y := 0
		for _, p := range ps {
			s.Place(p, 0, y)
			y += p.Height()
		}
	})
})

// baselineRow lays children left to right and aligns their first baselines
// while placing.
var baselineRow = MeasurePolicyFunc(func(_ MeasureScope, children []Measurable, c geom.Constraints) MeasureResult {
	ps := measureAll(children, geom.Constraints{MaxWidth: geom.Infinity, MaxHeight: c.MaxHeight})
	w, h := 0, 0
	for _, p := range ps {
		w, h = w+p.Width(), max(h, p.Height())
	}
	return Layout(c.ConstrainWidth(w), c.ConstrainHeight(h), nil, func(s *PlacementScope) {
		top := 0
		for _, p := range ps {
			if b := p.Get(FirstBaseline); b != Unspecified {
				top = max(top, b)
			}
		}
		x := 0
		for _, p := range ps {
			y := 0
			if b := p.Get(FirstBaseline); b != Unspecified {
				y = top - b
			}
			s.Place(p, x, y)
			x += p.Width()
		}
	})
})

// padding insets the wrapped content on every side.
type padding struct{ all int }

func (p padding) Kinds() Kind { return KindLayout }

func (p padding) Measure(_ MeasureScope, m Measurable, c geom.Constraints) MeasureResult {
	pl := m.Measure(c.Offset(-2*p.all, -2*p.all))
	w := c.ConstrainWidth(pl.Width() + 2*p.all)
	h := c.ConstrainHeight(pl.Height() + 2*p.all)
	return Layout(w, h, nil, func(s *PlacementScope) {
		s.Place(pl, p.all, p.all)
	})
}

// fill paints its coordinator and then the content.
type fill struct{ color string }

func (f fill) Kinds() Kind { return KindDraw }

func (f fill) Draw(s *DrawScope) {
	s.FillRect(geom.RectOf(geom.Offset{}, s.Size), f.color, s.Node.String())
	s.DrawContent()
}

// tag is parent data.
type tag string

func (t tag) Kinds() Kind              { return KindParentData }
func (t tag) ModifyParentData(any) any { return string(t) }

// positioned records the nodes it was told about.
type positioned struct{ log *[]string }

func (p positioned) Kinds() Kind          { return KindPositioned }
func (p positioned) OnPositioned(n *Node) { *p.log = append(*p.log, n.String()) }
func (p positioned) Equal(o Element) bool {
	q, ok := o.(positioned)
	return ok && q.log == p.log
}

// =============================================================================
// Canvas
// =============================================================================

type recordingCanvas struct {
	origin geom.Offset
	saved  []geom.Offset
	ops    []string
	layers int
}

func (c *recordingCanvas) Save() { c.saved = append(c.saved, c.origin) }

func (c *recordingCanvas) Restore() {
	c.origin = c.saved[len(c.saved)-1]
	c.saved = c.saved[:len(c.saved)-1]
}

func (c *recordingCanvas) Translate(dx, dy int)       { c.origin = c.origin.Add(geom.Pt(dx, dy)) }
func (c *recordingCanvas) ApplyLayer(LayerProperties) { c.layers++ }

func (c *recordingCanvas) FillRect(r geom.Rect, fill, label string) {
	c.ops = append(c.ops, fmt.Sprintf("%s %s %s", label, fill, geom.RectOf(c.origin.Add(r.Offset), r.Size)))
}
