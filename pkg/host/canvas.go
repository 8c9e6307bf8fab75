package host

import (
	"fmt"
	"math"

	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/layout"
)

// RecordingCanvas records draw operations in window-independent root
// coordinates.
type RecordingCanvas struct {
	origin geom.Offset
	alpha  float64
	stack  []canvasState
	ops    []string
	rects  []Fill
}

type canvasState struct {
	origin geom.Offset
	alpha  float64
}

// Fill is one recorded FillRect.
type Fill struct {
	Rect  geom.Rect `json:"rect"`
	Color string    `json:"color"`
	Label string    `json:"label"`
	Alpha float64   `json:"alpha"`
}

// NewRecordingCanvas returns an empty canvas.
func NewRecordingCanvas() *RecordingCanvas {
	return &RecordingCanvas{alpha: 1}
}

func (c *RecordingCanvas) Save() {
	c.stack = append(c.stack, canvasState{c.origin, c.alpha})
}

func (c *RecordingCanvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.origin, c.alpha = top.origin, top.alpha
}

func (c *RecordingCanvas) Translate(dx, dy int) {
	c.origin = c.origin.Add(geom.Pt(dx, dy))
}

// ApplyLayer applies the layer's translation and alpha. Scale is recorded in
// the op log but not applied to rectangles.
func (c *RecordingCanvas) ApplyLayer(p layout.LayerProperties) {
	c.origin = c.origin.Add(geom.Pt(int(math.Round(p.TranslationX)), int(math.Round(p.TranslationY))))
	c.alpha *= p.Alpha
	c.ops = append(c.ops, fmt.Sprintf("layer alpha=%g scale=%gx%g", p.Alpha, p.ScaleX, p.ScaleY))
}

func (c *RecordingCanvas) FillRect(r geom.Rect, fill, label string) {
	abs := geom.RectOf(c.origin.Add(r.Offset), r.Size)
	c.rects = append(c.rects, Fill{Rect: abs, Color: fill, Label: label, Alpha: c.alpha})
	c.ops = append(c.ops, fmt.Sprintf("%s %s %s", label, fill, abs))
}

// Ops returns the recorded operations as text, in draw order.
func (c *RecordingCanvas) Ops() []string { return c.ops }

// Fills returns the recorded rectangles in draw order.
func (c *RecordingCanvas) Fills() []Fill { return c.rects }
