package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/host"
	"github.com/matzehuels/lattice/pkg/layout"
	"github.com/matzehuels/lattice/pkg/scene"
)

// Run builds sc on a fresh surface and replays its frames. Engine panics
// come back as errors carrying their LAYOUT_* code.
func Run(ctx context.Context, sc *scene.Scene, engine layout.Options, logger *log.Logger) (rep *scene.Report, err error) {
	err = protect(func() error {
		in, err := scene.Build(sc, host.Options{Layout: engine, Logger: logger})
		if err != nil {
			return err
		}
		defer in.Close()
		rep, err = in.Run(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// protect runs fn and turns a panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Recovered(r)
			if errors.GetCode(err) == "" {
				err = errors.Wrap(errors.ErrCodeInternal, err, "panic")
			}
		}
	}()
	return fn()
}
