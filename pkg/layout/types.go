package layout

import "math"

// LayoutState is the phase a node is currently in.
type LayoutState int

const (
	// Idle means the node is not being measured or laid out.
	Idle LayoutState = iota
	// Measuring means the node's committed measure block is running.
	Measuring
	// LookaheadMeasuring means the node's lookahead measure block is running.
	LookaheadMeasuring
	// LayingOut means the node is placing its children in the committed pass.
	LayingOut
	// LookaheadLayingOut means the node is placing its children in the lookahead pass.
	LookaheadLayingOut
)

func (s LayoutState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Measuring:
		return "Measuring"
	case LookaheadMeasuring:
		return "LookaheadMeasuring"
	case LayingOut:
		return "LayingOut"
	case LookaheadLayingOut:
		return "LookaheadLayingOut"
	default:
		return "LayoutState(?)"
	}
}

// UsageByParent records which step of its parent used a node.
type UsageByParent int

const (
	NotUsed UsageByParent = iota
	InMeasureBlock
	InLayoutBlock
)

func (u UsageByParent) String() string {
	switch u {
	case NotUsed:
		return "NotUsed"
	case InMeasureBlock:
		return "InMeasureBlock"
	case InLayoutBlock:
		return "InLayoutBlock"
	default:
		return "UsageByParent(?)"
	}
}

// Pass selects the committed or the lookahead pass of a node.
type Pass int

const (
	PassMain Pass = iota
	PassLookahead
)

func (p Pass) String() string {
	if p == PassLookahead {
		return "lookahead"
	}
	return "main"
}

func (p Pass) measuringState() LayoutState {
	if p == PassLookahead {
		return LookaheadMeasuring
	}
	return Measuring
}

func (p Pass) layingOutState() LayoutState {
	if p == PassLookahead {
		return LookaheadLayingOut
	}
	return LayingOut
}

// NotPlacedPlaceOrder is the place order of a child that its parent did not
// place during the parent's last layout.
const NotPlacedPlaceOrder = math.MaxInt

// Direction is the horizontal layout direction used by relative placement.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "rtl"
	}
	return "ltr"
}
