package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/observability"
	"github.com/matzehuels/lattice/pkg/render/dot"
	"github.com/matzehuels/lattice/pkg/scene"
)

// Render generates output artifacts in the requested formats. The DOT
// source is built once and shared by the Graphviz-backed formats.
func Render(ctx context.Context, rep *scene.Report, opts Options) (artifacts map[string][]byte, err error) {
	if rep == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nothing to render")
	}
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	var src string
	graph := func() string {
		if src == "" {
			src = dot.ToDOT(rep.Snapshot, dot.Options{Geometry: opts.Geometry, Clusters: opts.Clusters})
		}
		return src
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			err = rep.WriteJSON(&buf)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(graph())
		case FormatSVG:
			data, err = dot.RenderSVG(ctx, graph())
		case FormatPNG:
			data, err = dot.RenderPNG(ctx, graph(), opts.PNGScale)
		case FormatPDF:
			data, err = dot.RenderPDF(ctx, graph())
		default:
			return nil, errors.ValidateFormat(format, ValidFormats...)
		}

		if err != nil {
			return nil, errors.Wrap(codeOf(err), err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
