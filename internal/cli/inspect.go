package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/lattice/pkg/host"
	"github.com/matzehuels/lattice/pkg/pipeline"
)

// inspectCommand creates the interactive inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <scene>",
		Short: "Resize a scene interactively and watch it relayout",
		Long: `Inspect opens a scene in the terminal. The arrow keys move the root's
maximum width and height, n applies the next scripted frame and r starts
over. After every key the tree is laid out again and the nodes that had to
be remeasured are highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runInspect(ctx context.Context, path string) error {
	opts := c.pipelineOptions(path, nil)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return err
	}
	sc, _, err := pipeline.Load(opts)
	if err != nil {
		return err
	}

	// The terminal belongs to the program; engine logs would tear the view.
	m, err := NewInspectModel(sc, host.Options{
		Layout: c.Config.Engine,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		return err
	}
	defer m.Close()

	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
