// Package geom provides the immutable integer geometry shared by the layout
// engine: sizes, offsets, rectangles and measurement constraints.
//
// All values are plain structs that are safe to copy and compare with ==.
// Nothing in this package allocates or holds references.
package geom

import "fmt"

// Size is a width and height in integer layout units.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String returns the size as "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Offset is a position relative to some origin.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pt is shorthand for Offset{X: x, Y: y}.
func Pt(x, y int) Offset {
	return Offset{X: x, Y: y}
}

// Add returns o translated by p.
func (o Offset) Add(p Offset) Offset {
	return Offset{X: o.X + p.X, Y: o.Y + p.Y}
}

// Sub returns o translated by -p.
func (o Offset) Sub(p Offset) Offset {
	return Offset{X: o.X - p.X, Y: o.Y - p.Y}
}

// String returns the offset as "(x, y)".
func (o Offset) String() string {
	return fmt.Sprintf("(%d, %d)", o.X, o.Y)
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	Offset
	Size
}

// RectOf builds a Rect from an origin and a size.
func RectOf(o Offset, s Size) Rect {
	return Rect{Offset: o, Size: s}
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Offset) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

// String returns the rectangle as "WxH@(x, y)".
func (r Rect) String() string {
	return r.Size.String() + "@" + r.Offset.String()
}

// Alignment positions content of one extent inside a larger extent along a
// single axis.
type Alignment int

const (
	Start Alignment = iota
	Center
	End
)

// Align returns the offset of an item of length size inside space.
func (a Alignment) Align(size, space int) int {
	switch a {
	case Center:
		return (space - size) / 2
	case End:
		return space - size
	default:
		return 0
	}
}

// String returns the alignment name.
func (a Alignment) String() string {
	switch a {
	case Center:
		return "center"
	case End:
		return "end"
	default:
		return "start"
	}
}

// ParseAlignment parses "start", "center" or "end". The empty string maps to Start.
func ParseAlignment(s string) (Alignment, error) {
	switch s {
	case "", "start", "top", "left":
		return Start, nil
	case "center":
		return Center, nil
	case "end", "bottom", "right":
		return End, nil
	}
	return Start, fmt.Errorf("unknown alignment %q", s)
}
