// Package layout implements a retained-mode, incremental layout engine.
//
// A tree of [Node] values is measured and placed across repeated frames. Each
// node owns a [MeasurePolicy] that, given the node's children and incoming
// [geom.Constraints], decides its own size and where its children go. The
// engine's job is to run those policies as rarely as possible while keeping
// every node's geometry consistent.
//
// # Scheduling
//
// Mutations never lay anything out directly. A change to a node (a new policy,
// a new modifier, a structural edit, or a state read that was invalidated)
// turns into a request on the [Scheduler]:
//
//	node.RequestRemeasure(false)     // size may change
//	node.RequestRelayout(false)      // only positions of children may change
//
// The scheduler records the node in a [DepthSortedSet] and, on the next
// [Scheduler.MeasureAndLayout], drains that set shallowest-first. A parent is
// therefore always processed before any child whose constraints it might
// change. When a child's size changes, the request is forwarded to the parent
// as a remeasure (if the parent measured the child in its measure block) or a
// relayout (if it measured it while placing).
//
// Requests that arrive at an unsafe moment (a node asked to remeasure while it
// is being laid out, or a node that was already measured in the current drain
// iteration) are postponed and replayed once the current node is processed.
//
// # Passes
//
// Every node has a committed pass and, inside a lookahead scope, a second
// lookahead pass that computes the geometry the subtree is heading towards.
// Both passes share one implementation; only the outermost lookahead root
// drives both, nested nodes follow the lookahead result of their ancestors.
//
// # Modifiers
//
// A node's [Modifier] is an ordered list of [Element] values. Elements that
// affect layout get a coordinator of their own in the node's chain; other
// elements (draw, parent data, positioned callbacks) ride on the next layout
// coordinator inward. Reassigning a modifier reuses unchanged segments and
// only requests a remeasure when layout-affecting elements changed.
//
// # Contract violations
//
// The engine assumes its invariants hold. A node measured twice by the same
// parent, a place order assigned twice, or a pass started while another one is
// running all panic with an *errors.Error carrying a LAYOUT_* code. They point
// at a broken measure policy, not at a recoverable runtime condition.
package layout
