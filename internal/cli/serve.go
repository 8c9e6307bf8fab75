package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lattice/internal/server"
	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/pipeline"
)

// serveCommand creates the serve command, which starts the HTTP inspector.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP inspector",
		Long: `Serve starts the HTTP inspector. Clients post scenes to /scenes and fetch
the reports and diagrams of the resulting sessions. Sessions are kept in the
configured cache backend, so the backend cannot be "none".`,
		Example: `  lattice serve --addr :8080
  curl --data-binary @toolbar.toml localhost:8080/scenes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context) error {
	cfg := c.Config
	if cfg.Cache.Backend == cache.BackendNone {
		return errors.New(errors.ErrCodeInvalidConfig, "serve needs a cache backend to keep sessions")
	}

	store, err := cache.Open(ctx, cfg.Cache.Options())
	if err != nil {
		return err
	}

	var keyer cache.Keyer
	if cfg.Server.Scope != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Server.Scope+":")
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	srv := server.New(runner, server.Options{
		Addr:          cfg.Server.Addr,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		MaxSceneBytes: cfg.Server.MaxSceneBytes,
		TTL:           cfg.Cache.TTL,
		Engine:        cfg.Engine,
		Logger:        c.Logger,
	})
	c.Logger.Debug("cache", "backend", cfg.Cache.Backend, "scope", cfg.Server.Scope)
	return srv.ListenAndServe(ctx)
}
