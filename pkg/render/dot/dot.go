package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/host"
	"github.com/matzehuels/lattice/pkg/render"
)

// Options configures tree diagram rendering.
type Options struct {
	// Geometry adds size, position, z-index and place order to labels.
	// When false, only the node name is shown.
	Geometry bool

	// Clusters draws nodes with children as nested boxes instead of
	// parent-to-child edges.
	Clusters bool
}

// ToDOT converts a snapshot to Graphviz DOT source. Nodes that were not
// placed in the last pass get dashed outlines.
func ToDOT(s *host.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	if s != nil && s.Root != nil {
		if opts.Clusters {
			writeCluster(&buf, s.Root, opts, "  ")
		} else {
			writeNodes(&buf, s.Root, opts)
			buf.WriteString("\n")
			writeEdges(&buf, s.Root)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(n *host.NodeSnapshot) string { return "n" + strconv.FormatInt(n.ID, 10) }

func fmtLabel(n *host.NodeSnapshot, geometry bool) string {
	name := n.Name
	if !geometry {
		return name
	}
	parts := []string{fmt.Sprintf("%s @ %s", n.Size, n.Position)}
	if n.Z != 0 {
		parts = append(parts, fmt.Sprintf("z: %g", n.Z))
	}
	if n.PlaceOrder >= 0 {
		parts = append(parts, fmt.Sprintf("order: %d", n.PlaceOrder))
	}
	if n.Lookahead != nil {
		parts = append(parts, fmt.Sprintf("lookahead: %s", *n.Lookahead))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *host.NodeSnapshot, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if !n.Placed {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

func writeNodes(buf *bytes.Buffer, n *host.NodeSnapshot, opts Options) {
	fmt.Fprintf(buf, "  %s [%s];\n", nodeID(n), strings.Join(fmtAttrs(n, fmtLabel(n, opts.Geometry)), ", "))
	for _, ch := range n.Children {
		writeNodes(buf, ch, opts)
	}
}

func writeEdges(buf *bytes.Buffer, n *host.NodeSnapshot) {
	for _, ch := range n.Children {
		fmt.Fprintf(buf, "  %s -> %s;\n", nodeID(n), nodeID(ch))
		writeEdges(buf, ch)
	}
}

func writeCluster(buf *bytes.Buffer, n *host.NodeSnapshot, opts Options, indent string) {
	if len(n.Children) == 0 {
		fmt.Fprintf(buf, "%s%s [%s];\n", indent, nodeID(n), strings.Join(fmtAttrs(n, fmtLabel(n, opts.Geometry)), ", "))
		return
	}
	fmt.Fprintf(buf, "%ssubgraph cluster_%s {\n", indent, nodeID(n))
	fmt.Fprintf(buf, "%s  label=%q;\n", indent, fmtLabel(n, opts.Geometry))
	if n.Placed {
		fmt.Fprintf(buf, "%s  style=rounded;\n", indent)
	} else {
		fmt.Fprintf(buf, "%s  style=\"rounded,dashed\";\n", indent)
	}
	for _, ch := range n.Children {
		writeCluster(buf, ch, opts, indent+"  ")
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's svg tag with one sized by its viewBox,
// dropping the pt units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPNG renders DOT source as PNG via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
