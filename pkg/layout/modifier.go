package layout

import (
	"reflect"
	"slices"
	"strings"

	"github.com/matzehuels/lattice/pkg/geom"
)

// Kind is a bitmask of the capabilities a modifier element has.
type Kind uint32

const (
	KindLayout Kind = 1 << iota
	KindDraw
	KindPointerInput
	KindSemantics
	KindParentData
	KindLayer
	KindPositioned
)

// geometryKinds are the kinds whose change can alter a node's size.
const geometryKinds = KindLayout | KindParentData

var kindNames = []struct {
	k    Kind
	name string
}{
	{KindLayout, "layout"},
	{KindDraw, "draw"},
	{KindPointerInput, "pointer"},
	{KindSemantics, "semantics"},
	{KindParentData, "parentdata"},
	{KindLayer, "layer"},
	{KindPositioned, "positioned"},
}

// Has reports whether k includes any kind of o.
func (k Kind) Has(o Kind) bool { return k&o != 0 }

func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	for _, kn := range kindNames {
		if k.Has(kn.k) {
			parts = append(parts, kn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Element is one entry of a [Modifier]. Elements implement the optional
// interfaces below matching the kinds they report.
type Element interface {
	Kinds() Kind
}

// LayoutModifier changes how the content it wraps is measured and placed.
type LayoutModifier interface {
	Element
	Measure(s MeasureScope, m Measurable, c geom.Constraints) MeasureResult
}

// IntrinsicModifier lets a LayoutModifier answer intrinsic queries directly
// instead of having its Measure run against a fake child.
type IntrinsicModifier interface {
	MinIntrinsicWidth(s MeasureScope, m IntrinsicMeasurable, height int) int
	MaxIntrinsicWidth(s MeasureScope, m IntrinsicMeasurable, height int) int
	MinIntrinsicHeight(s MeasureScope, m IntrinsicMeasurable, width int) int
	MaxIntrinsicHeight(s MeasureScope, m IntrinsicMeasurable, width int) int
}

// DrawModifier draws around or instead of the content it wraps. It must call
// DrawScope.DrawContent to draw the content.
type DrawModifier interface {
	Element
	Draw(s *DrawScope)
}

// ParentDataModifier contributes to the value the parent's measure policy sees
// through Measurable.ParentData. Elements fold from the innermost outward.
type ParentDataModifier interface {
	Element
	ModifyParentData(data any) any
}

// PositionedModifier is told after a pass when its node has a final position.
type PositionedModifier interface {
	Element
	OnPositioned(n *Node)
}

// Attachable elements are told when they join and leave an attached node.
type Attachable interface {
	Attach(n *Node)
	Detach(n *Node)
}

// Modifier is an ordered list of elements, outermost first.
type Modifier []Element

// Then returns m followed by es. m itself is never modified.
func (m Modifier) Then(es ...Element) Modifier {
	return append(slices.Clip(m), es...)
}

// Kinds is the union of the kinds of all elements.
func (m Modifier) Kinds() Kind {
	var k Kind
	for _, e := range m {
		k |= e.Kinds()
	}
	return k
}

// sameElement reports whether b can take over the state built for a.
// Elements with an Equal method decide themselves. Otherwise comparable values
// of the same type are compared with ==.
func sameElement(a, b Element) bool {
	if eq, ok := a.(interface{ Equal(Element) bool }); ok {
		return eq.Equal(b)
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// =============================================================================
// Chain maintenance
// =============================================================================

// SetModifier replaces the node's modifier. Elements shared with the previous
// modifier at the start and end keep their coordinators. A remeasure is only
// requested when layout or parent data elements changed.
func (n *Node) SetModifier(m Modifier) {
	if n.virtual {
		panic(invalidTree("modifiers cannot be set on virtual node %s", n))
	}
	old := n.modifier
	prefix := 0
	for prefix < len(old) && prefix < len(m) && sameElement(old[prefix], m[prefix]) {
		prefix++
	}
	suffix := 0
	for suffix < len(old)-prefix && suffix < len(m)-prefix &&
		sameElement(old[len(old)-1-suffix], m[len(m)-1-suffix]) {
		suffix++
	}
	removed := old[prefix : len(old)-suffix]
	added := m[prefix : len(m)-suffix]
	changed := Modifier(removed).Kinds() | Modifier(added).Kinds()

	if n.owner != nil {
		for _, e := range removed {
			if a, ok := e.(Attachable); ok {
				a.Detach(n)
			}
		}
	}

	coords := make([]*coordinator, len(m))
	for i, e := range m {
		lm, ok := e.(LayoutModifier)
		if !ok {
			continue
		}
		var c *coordinator
		switch {
		case i < prefix:
			c = n.elemCoords[i]
		case i >= len(m)-suffix:
			c = n.elemCoords[i-len(m)+len(old)]
		}
		if c == nil {
			c = newCoordinator(n, lm)
		}
		c.elem = lm
		coords[i] = c
	}
	for i, c := range n.elemCoords {
		if c != nil && i >= prefix && i < len(old)-suffix {
			c.destroyLayer()
		}
	}
	n.modifier = slices.Clone(m)
	n.elemCoords = coords
	n.syncCoordinators()

	if n.owner != nil {
		for _, e := range added {
			if a, ok := e.(Attachable); ok {
				a.Attach(n)
			}
		}
	}

	if changed.Has(geometryKinds) {
		n.invalidateMeasurements()
		n.updateParentData()
		return
	}
	if changed != 0 {
		n.invalidateLayers()
	}
}

// syncCoordinators relinks the chain from the inner coordinator outward and
// hands every non-layout element to the next layout coordinator inward.
func (n *Node) syncCoordinators() {
	cur := n.inner
	cur.entries = cur.entries[:0]
	cur.kinds = 0
	cur.outerward = nil
	var pending []Element
	flush := func(c *coordinator) {
		slices.Reverse(pending)
		c.entries = append(c.entries, pending...)
		for _, e := range pending {
			c.kinds |= e.Kinds()
		}
		pending = pending[:0]
	}
	for i := len(n.modifier) - 1; i >= 0; i-- {
		c := n.elemCoords[i]
		if c == nil {
			pending = append(pending, n.modifier[i])
			continue
		}
		flush(cur)
		c.entries = c.entries[:0]
		c.kinds = c.elem.Kinds()
		c.wrapped = cur
		c.outerward = nil
		cur.outerward = c
		cur = c
	}
	flush(cur)
	n.outer = cur
	n.kinds = n.modifier.Kinds()
}

// coordinators returns the chain from the outermost coordinator inward.
func (n *Node) coordinators() []*coordinator {
	var cs []*coordinator
	for c := n.outer; c != nil; c = c.wrapped {
		cs = append(cs, c)
		if c == n.inner {
			break
		}
	}
	return cs
}

// elements returns the node's elements of the given kinds, outermost first.
func (n *Node) elements(k Kind) []Element {
	if !n.kinds.Has(k) {
		return nil
	}
	var out []Element
	for _, e := range n.modifier {
		if e.Kinds().Has(k) {
			out = append(out, e)
		}
	}
	return out
}

func (n *Node) invalidateLayers() {
	for _, c := range n.coordinators() {
		c.invalidateLayer()
	}
}

// foldParentData recomputes the parent data from the node's modifier.
func (n *Node) foldParentData() any {
	var data any
	for i := len(n.modifier) - 1; i >= 0; i-- {
		if pd, ok := n.modifier[i].(ParentDataModifier); ok {
			data = pd.ModifyParentData(data)
		}
	}
	return data
}

// updateParentData refreshes the cached parent data and asks the parent to
// remeasure when it changed.
func (n *Node) updateParentData() {
	data := n.foldParentData()
	if equalParentData(data, n.parentData) {
		return
	}
	n.parentData = data
	if p := n.Parent(); p != nil {
		p.invalidateMeasurements()
	}
}

func equalParentData(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	if !ta.Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

func attachElements(n *Node) {
	for _, e := range n.modifier {
		if a, ok := e.(Attachable); ok {
			a.Attach(n)
		}
	}
}

func detachElements(n *Node) {
	for _, e := range n.modifier {
		if a, ok := e.(Attachable); ok {
			a.Detach(n)
		}
	}
}
