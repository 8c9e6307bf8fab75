package geom

import "math"

// Transform is a 2D affine matrix restricted to scale and translation:
//
//	| ScaleX  0       TranslateX |
//	| 0       ScaleY  TranslateY |
//
// It is what layers report for coordinate conversion.
type Transform struct {
	ScaleX, ScaleY         float64
	TranslateX, TranslateY float64
}

// Identity is the transform that maps every point to itself.
var Identity = Transform{ScaleX: 1, ScaleY: 1}

// IsIdentity reports whether t leaves points unchanged.
func (t Transform) IsIdentity() bool {
	return t == Identity
}

// Apply maps p through t, rounding to the nearest integer.
func (t Transform) Apply(p Offset) Offset {
	return Offset{
		X: int(math.Round(float64(p.X)*t.ScaleX + t.TranslateX)),
		Y: int(math.Round(float64(p.Y)*t.ScaleY + t.TranslateY)),
	}
}

// Invert returns the inverse transform. A zero scale maps everything to the
// translation origin, so it inverts to a zero scale as well.
func (t Transform) Invert() Transform {
	inv := Transform{}
	if t.ScaleX != 0 {
		inv.ScaleX = 1 / t.ScaleX
		inv.TranslateX = -t.TranslateX / t.ScaleX
	}
	if t.ScaleY != 0 {
		inv.ScaleY = 1 / t.ScaleY
		inv.TranslateY = -t.TranslateY / t.ScaleY
	}
	return inv
}

// Then returns the transform that applies t first and u second.
func (t Transform) Then(u Transform) Transform {
	return Transform{
		ScaleX:     t.ScaleX * u.ScaleX,
		ScaleY:     t.ScaleY * u.ScaleY,
		TranslateX: t.TranslateX*u.ScaleX + u.TranslateX,
		TranslateY: t.TranslateY*u.ScaleY + u.TranslateY,
	}
}
