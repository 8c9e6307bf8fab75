package scene

import (
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/layout"
	"github.com/matzehuels/lattice/pkg/policy"
)

// element converts m to a layout element.
func (m *Modifier) element() (layout.Element, error) {
	var (
		el  layout.Element
		set int
	)
	pick := func(e layout.Element) {
		el = e
		set++
	}

	if len(m.Padding) > 0 {
		switch p := m.Padding; len(p) {
		case 1:
			pick(policy.Padding(p[0]))
		case 2:
			pick(policy.PaddingXY(p[0], p[1]))
		case 4:
			pick(policy.PaddingLTRB(p[0], p[1], p[2], p[3]))
		default:
			return nil, errors.New(errors.ErrCodeInvalidScene, "padding takes 1, 2 or 4 values, got %d", len(p))
		}
		if anyNegative(m.Padding) {
			return nil, errors.New(errors.ErrCodeInvalidScene, "negative padding %v", m.Padding)
		}
	}
	if len(m.Size) > 0 {
		if len(m.Size) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidScene, "size takes 2 values, got %d", len(m.Size))
		}
		pick(policy.Size(m.Size[0], m.Size[1]))
	}
	if m.Width != nil {
		pick(policy.Width(*m.Width))
	}
	if m.Height != nil {
		pick(policy.Height(*m.Height))
	}
	if len(m.Offset) > 0 {
		if len(m.Offset) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidScene, "offset takes 2 values, got %d", len(m.Offset))
		}
		pick(policy.Offset(m.Offset[0], m.Offset[1]))
	}
	if m.ZIndex != nil {
		pick(policy.ZIndex(*m.ZIndex))
	}
	if m.Background != "" {
		pick(policy.Background(m.Background))
	}
	if m.Weight != nil {
		if *m.Weight <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidScene, "weight must be positive, got %g", *m.Weight)
		}
		pick(policy.Weight(*m.Weight))
	}
	if m.ID != "" {
		pick(policy.LayoutID(m.ID))
	}
	if m.Layer != nil {
		pick(policy.GraphicsLayer(m.Layer.properties()))
	}
	if len(m.BaselinePadding) > 0 {
		if len(m.BaselinePadding) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidScene, "baseline_padding takes 2 values, got %d", len(m.BaselinePadding))
		}
		pick(policy.PaddingFromBaseline(m.BaselinePadding[0], m.BaselinePadding[1]))
	}
	if m.IntrinsicWidth != "" {
		s, err := intrinsic(m.IntrinsicWidth)
		if err != nil {
			return nil, err
		}
		pick(policy.IntrinsicWidth(s))
	}
	if m.IntrinsicHeight != "" {
		s, err := intrinsic(m.IntrinsicHeight)
		if err != nil {
			return nil, err
		}
		pick(policy.IntrinsicHeight(s))
	}
	if m.Snap {
		pick(policy.SnapToLookahead())
	}

	if set != 1 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "modifier must set exactly one field, got %d", set)
	}
	return el, nil
}

func intrinsic(s string) (policy.IntrinsicSize, error) {
	switch s {
	case "min":
		return policy.Min, nil
	case "max":
		return policy.Max, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidScene, "intrinsic size must be min or max, got %q", s)
}

func anyNegative(vs []int) bool {
	for _, v := range vs {
		if v < 0 {
			return true
		}
	}
	return false
}

func (l *Layer) properties() layout.LayerProperties {
	p := layout.DefaultLayerProperties()
	if l.Alpha != nil {
		p.Alpha = *l.Alpha
	}
	if l.ScaleX != nil {
		p.ScaleX = *l.ScaleX
	}
	if l.ScaleY != nil {
		p.ScaleY = *l.ScaleY
	}
	p.TranslationX = l.TranslationX
	p.TranslationY = l.TranslationY
	return p
}

// chain builds the modifier chain of a node: the listed modifiers, then z and
// the layer, innermost last.
func chain(mods []Modifier, z float64, layer *Layer) (layout.Modifier, error) {
	var out layout.Modifier
	for i := range mods {
		el, err := mods[i].element()
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	if z != 0 {
		out = append(out, policy.ZIndex(z))
	}
	if layer != nil {
		out = append(out, policy.GraphicsLayer(layer.properties()))
	}
	return out, nil
}
