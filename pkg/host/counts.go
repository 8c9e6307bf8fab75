package host

import (
	"maps"
	"slices"
)

// Counts are the owner calls recorded between two frames, keyed by node name.
type Counts struct {
	Measures  map[string]int `json:"measures"`
	Relayouts map[string]int `json:"relayouts"`
	Changes   map[string]int `json:"changes"`
	Attached  int            `json:"attached"`
	Detached  int            `json:"detached"`
}

func newCounts() Counts {
	return Counts{
		Measures:  make(map[string]int),
		Relayouts: make(map[string]int),
		Changes:   make(map[string]int),
	}
}

func (c Counts) clone() Counts {
	return Counts{
		Measures:  maps.Clone(c.Measures),
		Relayouts: maps.Clone(c.Relayouts),
		Changes:   maps.Clone(c.Changes),
		Attached:  c.Attached,
		Detached:  c.Detached,
	}
}

// Nodes returns the names of every node with a recorded request, sorted.
func (c Counts) Nodes() []string {
	set := make(map[string]struct{})
	for k := range c.Measures {
		set[k] = struct{}{}
	}
	for k := range c.Relayouts {
		set[k] = struct{}{}
	}
	return slices.Sorted(maps.Keys(set))
}
