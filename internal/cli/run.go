package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lattice/pkg/pipeline"
)

// runOpts holds the flags of the run command.
type runOpts struct {
	json    bool
	noCache bool
	refresh bool
	ops     bool
}

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run <scene>...",
		Short: "Run scenes frame by frame",
		Long: `Run builds each scene, lays it out once, replays its frames and prints a
table with one row per frame: the root size, the nodes that were remeasured
and how many measure and relayout requests reached the owner.

Several scenes run concurrently.`,
		Example: `  # Run one scene
  lattice run toolbar.toml

  # Print the full report as JSON
  lattice run toolbar.toml --json

  # Run several scenes, ignoring cached reports
  lattice run a.toml b.yaml --refresh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runScenes(cmd.Context(), cmd.OutOrStdout(), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print reports as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the report cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached reports (results are still cached)")
	cmd.Flags().BoolVar(&opts.ops, "ops", false, "print the draw operations of the final frame")

	return cmd
}

func (c *CLI) runScenes(ctx context.Context, w io.Writer, paths []string, opts runOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	all := make([]pipeline.Options, len(paths))
	for i, p := range paths {
		all[i] = c.pipelineOptions(p, []string{pipeline.FormatJSON})
		all[i].Refresh = opts.refresh
	}

	prog := newProgress(logger)
	results, err := runner.ExecuteAll(ctx, all)
	if err != nil {
		return err
	}
	prog.done("ran scenes", "count", len(results))

	for _, res := range results {
		if opts.json {
			if _, err := w.Write(res.Artifacts[pipeline.FormatJSON]); err != nil {
				return err
			}
			continue
		}
		printRunResult(w, res, opts.ops)
	}
	return nil
}

// printRunResult writes the frame table for one result.
func printRunResult(w io.Writer, res *pipeline.Result, ops bool) {
	fmt.Fprintln(w, StyleTitle.Render(res.Scene.Name))
	fmt.Fprintln(w, runStats(res.Stats.NodeCount, res.Stats.Frames, res.CacheInfo.ReportHit))
	fmt.Fprintln(w, frameTable(res.Report))
	if remeasured := res.Report.Remeasured(); len(remeasured) > 0 {
		fmt.Fprintln(w, StyleDim.Render("remeasured after the first frame: ")+StyleValue.Render(listNames(remeasured)))
	}
	if ops {
		if last := res.Report.Last(); last != nil {
			for _, op := range last.Ops {
				fmt.Fprintln(w, "  "+StyleDim.Render(op))
			}
		}
	}
	fmt.Fprintln(w)
}
