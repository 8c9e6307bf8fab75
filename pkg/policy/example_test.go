package policy_test

import (
	"fmt"

	"github.com/matzehuels/lattice/pkg/geom"
	"github.com/matzehuels/lattice/pkg/host"
	"github.com/matzehuels/lattice/pkg/layout"
	"github.com/matzehuels/lattice/pkg/policy"
)

func ExampleRow() {
	label := layout.New(policy.FixedLeaf(30, 10)).Named("label")
	spacer := layout.New(policy.FixedLeaf(0, 0)).Named("spacer")
	spacer.SetModifier(layout.Modifier{policy.Weight(1)})
	button := layout.New(policy.FixedLeaf(20, 12)).Named("button")

	row := layout.New(policy.Row{Spacing: 4, Align: geom.Center}).Named("row")
	row.Append(label)
	row.Append(spacer)
	row.Append(button)

	s := host.New(row, host.Options{})
	defer s.Close()
	_ = s.SetConstraints(geom.Loose(120, 40))
	if _, err := s.Frame(); err != nil {
		fmt.Println(err)
		return
	}
	for _, n := range row.Children() {
		fmt.Println(n, geom.RectOf(n.Position(), n.Size()))
	}
	// Output:
	// label 30x10@(0, 1)
	// spacer 62x0@(34, 6)
	// button 20x12@(100, 0)
}

func ExamplePadding() {
	text := layout.New(policy.FixedLeaf(40, 8)).Named("text")
	card := layout.New(policy.Box{}).Named("card")
	card.SetModifier(layout.Modifier{policy.Background("white"), policy.PaddingXY(6, 2)})
	card.Append(text)

	s := host.New(card, host.Options{})
	defer s.Close()
	_ = s.SetConstraints(geom.Loose(100, 100))
	f, err := s.Frame()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(card.Size(), text.PositionInRoot())
	fmt.Println(f.Ops)
	// Output:
	// 52x12 (6, 2)
	// [card white 52x12@(0, 0)]
}
