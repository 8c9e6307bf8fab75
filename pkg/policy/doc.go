// Package policy provides the standard measure policies and modifier elements
// for layout trees.
//
// # Policies
//
// A policy decides how a node measures and places its children:
//
//   - [Box] stacks children on top of each other
//   - [Row] and [Column] line children up along one axis, with spacing and
//     [Weight]ed children sharing the leftover space
//   - [Leaf] has no children and reports a content size
//   - [Empty] takes the smallest size its constraints allow
//
// # Modifiers
//
// Modifier elements wrap a node's content:
//
//	n.SetModifier(layout.Modifier{
//	    policy.Background("steelblue"),
//	    policy.Padding(8),
//	    policy.Weight(1),
//	})
//
// Layout elements ([Padding], [Size], [Offset], [ZIndex], [GraphicsLayer],
// [PaddingFromBaseline], [SnapToLookahead], [IntrinsicWidth],
// [IntrinsicHeight]) get their own coordinator; [Background] draws; [Weight]
// and [LayoutID] are parent data read by the parent's policy; [OnPositioned]
// is told the node's final position after each pass.
//
// All elements are comparable values, so setting an equal modifier again
// keeps the node's existing coordinators and layers.
package policy
