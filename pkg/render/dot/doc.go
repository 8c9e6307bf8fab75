// Package dot renders layout snapshots as Graphviz diagrams.
//
// # Usage
//
// Convert a [host.Snapshot] to DOT, then render it:
//
//	src := dot.ToDOT(snap, dot.Options{Geometry: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// By default every node is a box with an edge to each child, in child order.
// With Clusters set, parents become nested cluster boxes instead, which reads
// closer to the on-screen nesting.
//
// Labels carry the node name and, with Geometry set, the committed size,
// position in the parent, z-index, place order and lookahead size. Nodes that
// were not placed in the last pass are dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package dot
