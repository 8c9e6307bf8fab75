package geom

import (
	"fmt"
	"math"

	"github.com/matzehuels/lattice/pkg/errors"
)

// Infinity marks an unbounded maximum. It is large enough for any real layout
// and small enough that adding a handful of them does not overflow an int.
const Infinity = math.MaxInt32

// Constraints bound the size a node may choose during measurement.
//
// A zero Constraints value is valid and forces a 0x0 size.
type Constraints struct {
	MinWidth  int `json:"min_width"`
	MaxWidth  int `json:"max_width"`
	MinHeight int `json:"min_height"`
	MaxHeight int `json:"max_height"`
}

// Fixed returns constraints that accept exactly w x h.
func Fixed(w, h int) Constraints {
	return Constraints{MinWidth: w, MaxWidth: w, MinHeight: h, MaxHeight: h}
}

// FixedWidth returns constraints that fix the width and leave height unbounded.
func FixedWidth(w int) Constraints {
	return Constraints{MinWidth: w, MaxWidth: w, MaxHeight: Infinity}
}

// FixedHeight returns constraints that fix the height and leave width unbounded.
func FixedHeight(h int) Constraints {
	return Constraints{MaxWidth: Infinity, MinHeight: h, MaxHeight: h}
}

// Loose returns constraints from 0 up to w x h.
func Loose(w, h int) Constraints {
	return Constraints{MaxWidth: w, MaxHeight: h}
}

// Unbounded returns constraints that accept any size.
func Unbounded() Constraints {
	return Constraints{MaxWidth: Infinity, MaxHeight: Infinity}
}

// Validate checks that every bound is non-negative and min <= max on both axes.
func (c Constraints) Validate() error {
	if c.MinWidth < 0 || c.MinHeight < 0 || c.MaxWidth < 0 || c.MaxHeight < 0 {
		return errors.New(errors.ErrCodeInvalidConstraints, "negative bound in %s", c)
	}
	if c.MinWidth > c.MaxWidth {
		return errors.New(errors.ErrCodeInvalidConstraints, "min width %d exceeds max width %d", c.MinWidth, c.MaxWidth)
	}
	if c.MinHeight > c.MaxHeight {
		return errors.New(errors.ErrCodeInvalidConstraints, "min height %d exceeds max height %d", c.MinHeight, c.MaxHeight)
	}
	return nil
}

// HasBoundedWidth reports whether MaxWidth is finite.
func (c Constraints) HasBoundedWidth() bool { return c.MaxWidth != Infinity }

// HasBoundedHeight reports whether MaxHeight is finite.
func (c Constraints) HasBoundedHeight() bool { return c.MaxHeight != Infinity }

// IsFixed reports whether exactly one size satisfies c.
func (c Constraints) IsFixed() bool {
	return c.MinWidth == c.MaxWidth && c.MinHeight == c.MaxHeight
}

// Constrain coerces s into the bounds of c.
func (c Constraints) Constrain(s Size) Size {
	return Size{
		Width:  clamp(s.Width, c.MinWidth, c.MaxWidth),
		Height: clamp(s.Height, c.MinHeight, c.MaxHeight),
	}
}

// ConstrainWidth coerces w into [MinWidth, MaxWidth].
func (c Constraints) ConstrainWidth(w int) int { return clamp(w, c.MinWidth, c.MaxWidth) }

// ConstrainHeight coerces h into [MinHeight, MaxHeight].
func (c Constraints) ConstrainHeight(h int) int { return clamp(h, c.MinHeight, c.MaxHeight) }

// Satisfies reports whether s already lies within c.
func (c Constraints) Satisfies(s Size) bool {
	return c.Constrain(s) == s
}

// Offset shrinks (or grows, for negative values) c by horizontal and vertical
// amounts, keeping every bound non-negative and unbounded maxima unbounded.
func (c Constraints) Offset(horizontal, vertical int) Constraints {
	return Constraints{
		MinWidth:  max(0, c.MinWidth+horizontal),
		MaxWidth:  addMax(c.MaxWidth, horizontal),
		MinHeight: max(0, c.MinHeight+vertical),
		MaxHeight: addMax(c.MaxHeight, vertical),
	}
}

// Loosen drops the minimum bounds.
func (c Constraints) Loosen() Constraints {
	return Constraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// String renders c as "[minW,maxW]x[minH,maxH]" with "inf" for Infinity.
func (c Constraints) String() string {
	return fmt.Sprintf("[%d,%s]x[%d,%s]", c.MinWidth, bound(c.MaxWidth), c.MinHeight, bound(c.MaxHeight))
}

func addMax(v, delta int) int {
	if v == Infinity {
		return Infinity
	}
	return max(0, v+delta)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func bound(v int) string {
	if v == Infinity {
		return "inf"
	}
	return fmt.Sprint(v)
}
