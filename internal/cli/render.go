package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lattice/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple formats), "-" for stdout
	formats  []string // output formats: "svg" (default), "dot", "png", "pdf", "json"
	geometry bool     // label nodes with size and position
	clusters bool     // draw containers as clusters instead of edges
	scale    float64  // PNG scale factor
	noCache  bool
	refresh  bool
}

// renderCommand creates the render command for writing the final tree as a
// diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{geometry: true, scale: 2}

	cmd := &cobra.Command{
		Use:   "render <scene>",
		Short: "Render the final tree of a scene as a diagram",
		Long: `Render runs a scene and writes the tree after its last frame as a Graphviz
diagram. Each node is labelled with its name, size and position in the root.`,
		Example: `  # toolbar.svg next to the scene
  lattice render toolbar.toml

  # DOT source on stdout
  lattice render toolbar.toml -f dot -o -

  # Several formats: out/toolbar.svg and out/toolbar.png
  lattice render toolbar.toml -f svg,png -o out/toolbar`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, pipeline.FormatSVG)
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (single format) or base path (multiple), "-" for stdout`)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.geometry, "geometry", opts.geometry, "label nodes with size and position")
	cmd.Flags().BoolVar(&opts.clusters, "clusters", false, "draw containers as clusters")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(input, opts.formats)
	popts.Geometry = opts.geometry
	popts.Clusters = opts.clusters
	popts.PNGScale = opts.scale
	popts.Refresh = opts.refresh

	spinner := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input)+"...")
	spinner.Start()
	res, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if opts.output == "-" {
		for _, f := range opts.formats {
			if _, err := os.Stdout.Write(res.Artifacts[f]); err != nil {
				return err
			}
		}
		return nil
	}

	for _, f := range opts.formats {
		path := outputPath(opts.output, input, f, len(opts.formats) > 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return err
		}
		logger.Debug("wrote artifact", "path", path, "bytes", len(res.Artifacts[f]))
		printFile(path)
	}
	printSuccess("Rendered %s", res.Scene.Name)
	printNextStep("Resize it interactively", appName+" inspect "+input)
	return nil
}

// outputPath derives the file for one format. With several formats, or no
// output at all, output is a base path and the format is the extension.
func outputPath(output, input, format string, multiple bool) string {
	if output != "" && !multiple {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath strips a known format extension from output, or the scene
// extension from input when output is empty.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
