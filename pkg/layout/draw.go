package layout

import "github.com/matzehuels/lattice/pkg/geom"

// Canvas receives draw operations. Translations and layers nest between
// Save and the matching Restore.
type Canvas interface {
	Save()
	Restore()
	Translate(dx, dy int)
	ApplyLayer(p LayerProperties)
	FillRect(r geom.Rect, fill, label string)
}

// DrawScope is handed to DrawModifier.Draw.
type DrawScope struct {
	Canvas
	// Size is the size of the coordinator being drawn.
	Size geom.Size
	Node *Node

	next func()
}

// DrawContent draws what the modifier wraps. A modifier that never calls it
// hides the content.
func (s *DrawScope) DrawContent() {
	if s.next != nil {
		s.next()
	}
}

// Draw draws the node and its placed descendants onto cv. Children are drawn
// in z order.
func (n *Node) Draw(cv Canvas) {
	n.outer.draw(cv)
}

func (c *coordinator) draw(cv Canvas) {
	pos := c.res[PassMain].position
	cv.Save()
	cv.Translate(pos.X, pos.Y)
	if c.layer != nil {
		cv.ApplyLayer(c.layerEffect.Apply())
	}
	c.drawContent(cv)
	cv.Restore()
}

// drawContent runs the draw modifiers riding on c, outermost first, around
// the content c wraps.
func (c *coordinator) drawContent(cv Canvas) {
	var draws []DrawModifier
	if dm, ok := c.elem.(DrawModifier); ok {
		draws = append(draws, dm)
	}
	if c.kinds.Has(KindDraw) {
		for _, e := range c.entries {
			if dm, ok := e.(DrawModifier); ok {
				draws = append(draws, dm)
			}
		}
	}
	var step func(i int)
	step = func(i int) {
		if i == len(draws) {
			c.drawWrapped(cv)
			return
		}
		draws[i].Draw(&DrawScope{
			Canvas: cv,
			Size:   c.res[PassMain].size,
			Node:   c.node,
			next:   func() { step(i + 1) },
		})
	}
	step(0)
}

func (c *coordinator) drawWrapped(cv Canvas) {
	if !c.isInner() {
		c.wrapped.draw(cv)
		return
	}
	for _, ch := range c.node.ZSortedChildren() {
		if ch.isPlaced {
			ch.outer.draw(cv)
		}
	}
}
