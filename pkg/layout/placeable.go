package layout

import "github.com/matzehuels/lattice/pkg/geom"

// IntrinsicMeasurable answers size questions about a child without measuring it.
type IntrinsicMeasurable interface {
	// ParentData is the value the child's parent-data modifiers folded together.
	ParentData() any

	MinIntrinsicWidth(height int) int
	MaxIntrinsicWidth(height int) int
	MinIntrinsicHeight(width int) int
	MaxIntrinsicHeight(width int) int
}

// Measurable is a child as seen by its parent's measure policy.
//
// Measure may be called at most once per parent measure or layout step,
// unless the child is allowed to be measured multiple times.
type Measurable interface {
	IntrinsicMeasurable
	Measure(c geom.Constraints) Placeable
}

// Placeable is a measured child that can be positioned through a
// [PlacementScope].
type Placeable interface {
	// Width and Height are the measured size coerced into the constraints the
	// placeable was measured with.
	Width() int
	Height() int
	Size() geom.Size

	// MeasuredSize is the size the measure policy asked for before coercion.
	MeasuredSize() geom.Size

	// Get returns the position of line inside the placeable, or Unspecified.
	Get(line *AlignmentLine) int

	placeAt(pos geom.Offset, z float64, effect LayerEffect, shallow bool)
	apparentOffset() geom.Offset
}

// LayerProperties describe how a layer transforms the content it draws.
type LayerProperties struct {
	Alpha        float64 `json:"alpha"`
	ScaleX       float64 `json:"scale_x"`
	ScaleY       float64 `json:"scale_y"`
	TranslationX float64 `json:"translation_x"`
	TranslationY float64 `json:"translation_y"`
}

// DefaultLayerProperties returns the properties of a layer that changes nothing.
func DefaultLayerProperties() LayerProperties {
	return LayerProperties{Alpha: 1, ScaleX: 1, ScaleY: 1}
}

// Transform returns the matrix mapping layer content to its parent.
func (p LayerProperties) Transform() geom.Transform {
	return geom.Transform{
		ScaleX:     p.ScaleX,
		ScaleY:     p.ScaleY,
		TranslateX: p.TranslationX,
		TranslateY: p.TranslationY,
	}
}

// LayerEffect configures the layer a placeable is drawn into.
type LayerEffect func(*LayerProperties)

// Apply runs e on a fresh set of default properties.
func (e LayerEffect) Apply() LayerProperties {
	p := DefaultLayerProperties()
	if e != nil {
		e(&p)
	}
	return p
}

// PlacementScope is handed to MeasureResult.PlaceChildren. It is the only way
// to position a Placeable.
type PlacementScope struct {
	shallow     bool
	direction   Direction
	parentWidth int
}

// Place puts p at (x, y) with z-index 0.
func (s *PlacementScope) Place(p Placeable, x, y int) {
	s.PlaceAt(p, geom.Pt(x, y), 0)
}

// PlaceAt puts p at pos with z-index z.
func (s *PlacementScope) PlaceAt(p Placeable, pos geom.Offset, z float64) {
	p.placeAt(pos.Add(p.apparentOffset()), z, nil, s.shallow)
}

// PlaceWithLayer puts p at pos and draws it into its own layer configured by effect.
func (s *PlacementScope) PlaceWithLayer(p Placeable, pos geom.Offset, z float64, effect LayerEffect) {
	if effect == nil {
		effect = func(*LayerProperties) {}
	}
	p.placeAt(pos.Add(p.apparentOffset()), z, effect, s.shallow)
}

// PlaceRelative is Place with x mirrored for right-to-left layouts.
func (s *PlacementScope) PlaceRelative(p Placeable, x, y int) {
	if s.direction == RightToLeft {
		x = s.parentWidth - p.Width() - x
	}
	s.Place(p, x, y)
}

// Direction reports the layout direction of the node doing the placement.
func (s *PlacementScope) Direction() Direction { return s.direction }

// fixedPlaceable is handed out by intrinsic measurement. It has a size and
// cannot be placed.
type fixedPlaceable struct {
	size geom.Size
}

func (p fixedPlaceable) Width() int                                      { return p.size.Width }
func (p fixedPlaceable) Height() int                                     { return p.size.Height }
func (p fixedPlaceable) Size() geom.Size                                 { return p.size }
func (p fixedPlaceable) MeasuredSize() geom.Size                         { return p.size }
func (p fixedPlaceable) Get(*AlignmentLine) int                          { return Unspecified }
func (p fixedPlaceable) placeAt(geom.Offset, float64, LayerEffect, bool) {}
func (p fixedPlaceable) apparentOffset() geom.Offset                     { return geom.Offset{} }
