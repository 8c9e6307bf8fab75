package host

import (
	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/layout"
)

// Layer is a recording layout.OwnedLayer.
type Layer struct {
	ID            int
	Position      geom.Offset
	Size          geom.Size
	Props         layout.LayerProperties
	Invalidations int
	Destroyed     bool

	draw             func(layout.Canvas)
	invalidateParent func()
}

func (l *Layer) Move(p geom.Offset)                    { l.Position = p }
func (l *Layer) Resize(s geom.Size)                    { l.Size = s }
func (l *Layer) UpdateEffect(p layout.LayerProperties) { l.Props = p }
func (l *Layer) Transform() geom.Transform             { return l.Props.Transform() }

func (l *Layer) Invalidate() {
	l.Invalidations++
	if l.invalidateParent != nil {
		l.invalidateParent()
	}
}

func (l *Layer) Destroy() { l.Destroyed = true }

// Draw draws the layer's content onto cv.
func (l *Layer) Draw(cv layout.Canvas) {
	if l.draw != nil && !l.Destroyed {
		l.draw(cv)
	}
}
