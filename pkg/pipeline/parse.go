package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/scene"
)

// Load reads and validates the scene opts describe. It returns the scene and
// the hash of its name and bytes.
func Load(opts Options) (*scene.Scene, string, error) {
	src := opts.Source
	if src == nil {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "read scene")
			}
			return nil, "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read scene")
		}
		src = data
	}

	sc, err := scene.Parse(src, opts.SceneFormat)
	if err != nil {
		return nil, "", err
	}
	if sc.Name == "" {
		sc.Name = defaultName(opts)
	}

	// The name is part of the report, so two files with the same body but
	// different names must not share a key.
	h := cache.Hash(append([]byte(sc.Name+"\x00"), src...))
	return sc, h, nil
}

func defaultName(opts Options) string {
	if opts.Name != "" {
		return opts.Name
	}
	if opts.Path != "" {
		return strings.TrimSuffix(filepath.Base(opts.Path), filepath.Ext(opts.Path))
	}
	return "scene"
}
