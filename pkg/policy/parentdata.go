package policy

import "github.com/matzehuels/lattice/pkg/layout"

// Data is the parent data understood by the policies in this package.
type Data struct {
	Weight float64
	ID     string
}

// DataOf returns the Data folded into m by its modifiers, or the zero Data.
func DataOf(m layout.IntrinsicMeasurable) Data {
	d, _ := m.ParentData().(Data)
	return d
}

func dataFrom(v any) Data {
	d, _ := v.(Data)
	return d
}

type weight float64

// Weight gives a Row or Column child a share of the leftover space.
func Weight(w float64) layout.Element { return weight(w) }

func (weight) Kinds() layout.Kind { return layout.KindParentData }

func (w weight) ModifyParentData(data any) any {
	d := dataFrom(data)
	d.Weight = float64(w)
	return d
}

type layoutID string

// LayoutID tags a child so a custom policy can find it with [Find].
func LayoutID(id string) layout.Element { return layoutID(id) }

func (layoutID) Kinds() layout.Kind { return layout.KindParentData }

func (id layoutID) ModifyParentData(data any) any {
	d := dataFrom(data)
	d.ID = string(id)
	return d
}

// Find returns the first child tagged with id.
func Find[M layout.IntrinsicMeasurable](children []M, id string) (M, bool) {
	for _, m := range children {
		if DataOf(m).ID == id {
			return m, true
		}
	}
	var zero M
	return zero, false
}
