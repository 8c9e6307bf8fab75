package policy

import (
	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/layout"
)

// Row places children left to right.
//
// Children without a [Weight] are measured first with whatever width is
// left. When the row has a bounded width, weighted children then split the
// remaining width in proportion to their weights and the row fills the
// width. Children are aligned vertically by Align, or by their first baseline
// when AlignBaseline is set and the child has one.
type Row struct {
	Spacing       int
	Align         geom.Alignment
	AlignBaseline bool
}

// Column places children top to bottom. Weights share the remaining height.
type Column struct {
	Spacing int
	Align   geom.Alignment
}

func (r Row) Measure(_ layout.MeasureScope, children []layout.Measurable, c geom.Constraints) layout.MeasureResult {
	return linear{horizontal: true, spacing: r.Spacing, align: r.Align, baseline: r.AlignBaseline}.measure(children, c)
}

func (r Row) MinIntrinsicWidth(children []layout.IntrinsicMeasurable, height int) int {
	return sumOf(children, func(m layout.IntrinsicMeasurable) int { return m.MinIntrinsicWidth(height) }) + gaps(r.Spacing, len(children))
}

func (r Row) MaxIntrinsicWidth(children []layout.IntrinsicMeasurable, height int) int {
	return sumOf(children, func(m layout.IntrinsicMeasurable) int { return m.MaxIntrinsicWidth(height) }) + gaps(r.Spacing, len(children))
}

func (Row) MinIntrinsicHeight(children []layout.IntrinsicMeasurable, width int) int {
	return maxOf(children, func(m layout.IntrinsicMeasurable) int { return m.MinIntrinsicHeight(width) })
}

func (Row) MaxIntrinsicHeight(children []layout.IntrinsicMeasurable, width int) int {
	return maxOf(children, func(m layout.IntrinsicMeasurable) int { return m.MaxIntrinsicHeight(width) })
}

func (col Column) Measure(_ layout.MeasureScope, children []layout.Measurable, c geom.Constraints) layout.MeasureResult {
	return linear{spacing: col.Spacing, align: col.Align}.measure(children, c)
}

func (Column) MinIntrinsicWidth(children []layout.IntrinsicMeasurable, height int) int {
	return maxOf(children, func(m layout.IntrinsicMeasurable) int { return m.MinIntrinsicWidth(height) })
}

func (Column) MaxIntrinsicWidth(children []layout.IntrinsicMeasurable, height int) int {
	return maxOf(children, func(m layout.IntrinsicMeasurable) int { return m.MaxIntrinsicWidth(height) })
}

func (col Column) MinIntrinsicHeight(children []layout.IntrinsicMeasurable, width int) int {
	return sumOf(children, func(m layout.IntrinsicMeasurable) int { return m.MinIntrinsicHeight(width) }) + gaps(col.Spacing, len(children))
}

func (col Column) MaxIntrinsicHeight(children []layout.IntrinsicMeasurable, width int) int {
	return sumOf(children, func(m layout.IntrinsicMeasurable) int { return m.MaxIntrinsicHeight(width) }) + gaps(col.Spacing, len(children))
}

func gaps(spacing, n int) int {
	if n < 2 {
		return 0
	}
	return spacing * (n - 1)
}

// =============================================================================
// Shared implementation
// =============================================================================

// linear measures along a main axis, x for rows and y for columns.
type linear struct {
	horizontal bool
	spacing    int
	align      geom.Alignment
	baseline   bool
}

func (l linear) mainOf(s geom.Size) int {
	if l.horizontal {
		return s.Width
	}
	return s.Height
}

func (l linear) crossOf(s geom.Size) int {
	if l.horizontal {
		return s.Height
	}
	return s.Width
}

func (l linear) bounds(c geom.Constraints) (mainMin, mainMax, crossMin, crossMax int) {
	if l.horizontal {
		return c.MinWidth, c.MaxWidth, c.MinHeight, c.MaxHeight
	}
	return c.MinHeight, c.MaxHeight, c.MinWidth, c.MaxWidth
}

func (l linear) constraints(mainMin, mainMax, crossMax int) geom.Constraints {
	if l.horizontal {
		return geom.Constraints{MinWidth: mainMin, MaxWidth: mainMax, MaxHeight: crossMax}
	}
	return geom.Constraints{MaxWidth: crossMax, MinHeight: mainMin, MaxHeight: mainMax}
}

func (l linear) measure(children []layout.Measurable, c geom.Constraints) layout.MeasureResult {
	mainMin, mainMax, crossMin, crossMax := l.bounds(c)
	ps := make([]layout.Placeable, len(children))
	weights := make([]float64, len(children))
	used := gaps(l.spacing, len(children))
	totalWeight := 0.0
	cross := 0

	for i, m := range children {
		weights[i] = DataOf(m).Weight
		if weights[i] > 0 && mainMax != geom.Infinity {
			totalWeight += weights[i]
			continue
		}
		remaining := geom.Infinity
		if mainMax != geom.Infinity {
			remaining = max(mainMax-used, 0)
		}
		ps[i] = m.Measure(l.constraints(0, remaining, crossMax))
		used += l.mainOf(ps[i].Size())
		cross = max(cross, l.crossOf(ps[i].Size()))
	}

	if totalWeight > 0 {
		remain := max(mainMax-used, 0)
		left := remain
		last := -1
		for i := range children {
			if ps[i] == nil {
				last = i
			}
		}
		for i, m := range children {
			if ps[i] != nil {
				continue
			}
			share := int(float64(remain) * weights[i] / totalWeight)
			if i == last {
				share = left
			}
			left -= share
			ps[i] = m.Measure(l.constraints(share, share, crossMax))
			used += l.mainOf(ps[i].Size())
			cross = max(cross, l.crossOf(ps[i].Size()))
		}
	}

	// Baseline alignment needs the lines while measuring since it can grow
	// the row's height.
	above, below := -1, 0
	baselines := make([]int, len(ps))
	for i, p := range ps {
		baselines[i] = layout.Unspecified
		if !l.baseline {
			continue
		}
		if b := p.Get(layout.FirstBaseline); b != layout.Unspecified {
			baselines[i] = b
			above = max(above, b)
			below = max(below, p.Height()-b)
		}
	}
	if above >= 0 {
		cross = max(cross, above+below)
	}

	mainSize := clampInt(used, mainMin, mainMax)
	if totalWeight > 0 {
		mainSize = mainMax
	}
	crossSize := clampInt(cross, crossMin, crossMax)

	w, h := mainSize, crossSize
	if !l.horizontal {
		w, h = crossSize, mainSize
	}
	return layout.Layout(w, h, nil, func(s *layout.PlacementScope) {
		pos := 0
		for i, p := range ps {
			off := l.align.Align(l.crossOf(p.Size()), crossSize)
			if baselines[i] != layout.Unspecified {
				off = above - baselines[i]
			}
			if l.horizontal {
				s.PlaceRelative(p, pos, off)
			} else {
				s.PlaceRelative(p, off, pos)
			}
			pos += l.mainOf(p.Size()) + l.spacing
		}
	})
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
