// Package scene describes layout trees declaratively and replays scripted
// changes against them.
//
// # Format
//
// A scene is a TOML, YAML or JSON document with a root node, the root
// constraints and a list of frames. Each frame is a list of steps that are
// applied together before the frame's measure and layout pass runs:
//
//	name = "toolbar"
//
//	[constraints]
//	max_width = 320
//	max_height = 48
//
//	[root]
//	name = "bar"
//	policy = "row"
//	spacing = 4
//
//	[[root.children]]
//	name = "title"
//	content = { width = 80, height = 16 }
//	baseline = 12
//
//	[[root.children]]
//	name = "fill"
//	policy = "empty"
//	modifiers = [{ weight = 1.0 }]
//
//	[[frames]]
//	label = "longer title"
//	steps = [{ op = "content", node = "title", content = { width = 140, height = 16 } }]
//
// # Policies
//
//   - box: stacks children, aligned by horizontal and vertical
//   - row, column: linear layout with spacing, align and weights
//   - leaf: content size and baselines, changeable by content steps
//   - empty: takes the minimum constraints
//
// A node without a policy is a leaf when it has content and a box otherwise.
//
// # Steps
//
// Steps target nodes by name: content, constraints, window, insert, remove,
// move and modifiers. Indexes of insert, remove and move count the target's
// own children, virtual ones included as single entries.
//
// Leaf content lives in [state.Value]s, so a content step is an ordinary
// state change that the host turns into a remeasure of the leaf.
package scene
