package layout

import (
	"math"

	"github.com/matzehuels/lattice/pkg/geom"
)

// Unspecified is returned for an alignment line a placeable does not expose.
const Unspecified = math.MinInt32

// AlignmentLine is a named offset that a layout exposes to its ancestors.
// Horizontal lines are y offsets, vertical lines are x offsets. When several
// children of one node expose the same line, merge combines their positions.
//
// Lines are compared by identity; declare them once as package variables.
type AlignmentLine struct {
	name       string
	horizontal bool
	merge      func(a, b int) int
}

// NewHorizontalLine declares a horizontal alignment line.
func NewHorizontalLine(name string, merge func(a, b int) int) *AlignmentLine {
	return &AlignmentLine{name: name, horizontal: true, merge: merge}
}

// NewVerticalLine declares a vertical alignment line.
func NewVerticalLine(name string, merge func(a, b int) int) *AlignmentLine {
	return &AlignmentLine{name: name, merge: merge}
}

var (
	// FirstBaseline is the baseline of the first line of text; children merge by min.
	FirstBaseline = NewHorizontalLine("FirstBaseline", func(a, b int) int { return min(a, b) })
	// LastBaseline is the baseline of the last line of text; children merge by max.
	LastBaseline = NewHorizontalLine("LastBaseline", func(a, b int) int { return max(a, b) })
)

func (l *AlignmentLine) Name() string       { return l.name }
func (l *AlignmentLine) Horizontal() bool   { return l.horizontal }
func (l *AlignmentLine) String() string     { return l.name }
func (l *AlignmentLine) Merge(a, b int) int { return l.merge(a, b) }

func (l *AlignmentLine) along(p geom.Offset) int {
	if l.horizontal {
		return p.Y
	}
	return p.X
}

// AlignmentLines is the registry of alignment lines for one node and one pass.
//
// The usage flags decide what an invalidation costs. A line read by the parent
// while measuring forces the parent to remeasure; a line read only while the
// parent places its children forces a relayout.
type AlignmentLines struct {
	owner *passDelegate

	// dirty means lines must be recalculated before they are read.
	dirty bool

	usedDuringParentMeasurement    bool
	usedDuringParentLayout         bool
	previousUsedDuringParentLayout bool
	usedByModifierMeasurement      bool
	usedByModifierLayout           bool

	// queryOwner is the closest node, this one included, whose lines are read.
	queryOwner *passDelegate

	lines map[*AlignmentLine]int
}

func newAlignmentLines(owner *passDelegate) *AlignmentLines {
	return &AlignmentLines{
		owner: owner,
		dirty: true,
		lines: make(map[*AlignmentLine]int),
	}
}

// queried reports whether someone read these lines in the last pass.
func (a *AlignmentLines) queried() bool {
	return a.usedDuringParentMeasurement ||
		a.previousUsedDuringParentLayout ||
		a.usedByModifierMeasurement ||
		a.usedByModifierLayout
}

// required reports whether some ancestor reads lines that depend on these.
func (a *AlignmentLines) required() bool {
	a.recalculateQueryOwner()
	return a.queryOwner != nil
}

func (a *AlignmentLines) recalculateQueryOwner() {
	if a.queried() {
		a.queryOwner = a.owner
		return
	}
	parent := a.owner.parentDelegate()
	if parent == nil {
		return
	}
	if q := parent.lines.queryOwner; q != nil && q.lines.queried() {
		a.queryOwner = q
		return
	}
	q := a.queryOwner
	if q == nil || q.lines.queried() {
		return
	}
	if p := q.parentDelegate(); p != nil {
		p.lines.recalculateQueryOwner()
		a.queryOwner = p.lines.queryOwner
	} else {
		a.queryOwner = nil
	}
}

// onAlignmentsChanged marks the lines dirty and requests the work their
// readers need. It walks up to the root since ancestors merge these lines.
func (a *AlignmentLines) onAlignmentsChanged() {
	a.dirty = true
	parent := a.owner.parentDelegate()
	if parent == nil {
		return
	}
	if a.usedDuringParentMeasurement {
		parent.requestMeasure()
	} else if a.previousUsedDuringParentLayout || a.usedDuringParentLayout {
		parent.requestLayout()
	}
	if a.usedByModifierMeasurement {
		a.owner.requestMeasure()
	}
	if a.usedByModifierLayout {
		parent.requestLayout()
	}
	parent.lines.onAlignmentsChanged()
}

// recalculate merges the lines of all placed children, translated into this
// node's inner coordinates, and then the lines this node's own measure result
// declares.
func (a *AlignmentLines) recalculate() {
	clear(a.lines)
	n := a.owner.node
	pass := a.owner.pass
	inner := n.inner
	for _, child := range n.Children() {
		cd := child.delegate(pass)
		if cd == nil || !cd.placed() {
			continue
		}
		if cd.lines.dirty {
			cd.layoutChildren()
		}
		for line, pos := range cd.lines.lines {
			a.add(line, pos, child.inner)
		}
		for c := child.inner.parentCoord(); c != nil && c != inner; c = c.parentCoord() {
			st := &c.res[pass]
			if st.result == nil {
				continue
			}
			for line := range st.result.AlignmentLines() {
				a.add(line, c.calculateAlignmentLine(pass, line), c)
			}
		}
	}
	if r := inner.res[pass].result; r != nil {
		for line, pos := range r.AlignmentLines() {
			a.lines[line] = pos
		}
	}
	a.dirty = false
}

// add translates a line at pos inside coordinator from up to this node's inner
// coordinator and merges it.
func (a *AlignmentLines) add(line *AlignmentLine, pos int, from *coordinator) {
	pass := a.owner.pass
	inner := a.owner.node.inner
	p := geom.Pt(pos, pos)
	c := from
	for {
		p = c.toParentPosition(pass, p)
		c = c.parentCoord()
		if c == nil || c == inner {
			break
		}
		if r := c.res[pass].result; r != nil {
			if v, ok := r.AlignmentLines()[line]; ok {
				p = geom.Pt(v, v)
			}
		}
	}
	v := line.along(p)
	if old, ok := a.lines[line]; ok {
		v = line.Merge(old, v)
	}
	a.lines[line] = v
}

func (a *AlignmentLines) reset() {
	a.dirty = true
	a.usedDuringParentMeasurement = false
	a.usedDuringParentLayout = false
	a.previousUsedDuringParentLayout = false
	a.usedByModifierMeasurement = false
	a.usedByModifierLayout = false
	a.queryOwner = nil
	clear(a.lines)
}
