package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the report cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached report and artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Cache
			if cfg.Backend == cache.BackendNone {
				printInfo("Cache is disabled")
				return nil
			}

			store, err := cache.Open(cmd.Context(), cfg.Options())
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "%s cache cannot be cleared", cfg.Backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return err
			}

			printSuccess("Cleared %s cache", cfg.Backend)
			if cfg.Backend == cache.BackendFile {
				printDetail("Directory: %s", cfg.Dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Cache
			if cfg.Backend != cache.BackendFile {
				return errors.New(errors.ErrCodeUnsupported, "the %s cache has no directory", cfg.Backend)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cfg.Dir)
			return err
		},
	}
}
