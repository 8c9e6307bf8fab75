// Package render turns layout snapshots into pictures.
//
// The [dot] subpackage draws the node tree with Graphviz. The [ToPDF] and
// [ToPNG] functions convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg).
//
//	svg, err := dot.RenderSVG(ctx, dot.ToDOT(snap, dot.Options{}))
//	png, err := render.ToPNG(svg, 2.0)
//
// [dot]: github.com/matzehuels/lattice/pkg/render/dot
package render
