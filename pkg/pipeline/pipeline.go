// Package pipeline provides the load → run → render pipeline for lattice
// scenes.
//
// This package implements the complete pipeline used by the CLI and the HTTP
// inspector. By centralizing it, every entry point caches, logs and reports
// errors the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate a scene file or in-memory source
//  2. Run: Build the tree on a headless surface and replay its frames
//  3. Render: Produce artifacts from the report (JSON, DOT, SVG, PNG, PDF)
//
// Reports and artifacts are cached under keys derived from the scene bytes
// and the options that affect them.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "toolbar.toml",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Independent scenes can run concurrently with [Runner.ExecuteAll]; each one
// gets its own tree, scheduler and state observer.
package pipeline

import (
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/layout"
	"github.com/matzehuels/lattice/pkg/scene"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// TTLReport is how long run reports stay cached.
	TTLReport = 24 * time.Hour

	// TTLArtifact is how long rendered artifacts stay cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Path is the scene file. Ignored when Source is set.
	Path string `json:"path,omitempty"`

	// Source is an in-memory scene. SceneFormat is required with it.
	Source      []byte `json:"-"`
	SceneFormat string `json:"scene_format,omitempty"`

	// Name replaces the scene's name when the scene has none.
	Name string `json:"name,omitempty"`

	Engine layout.Options `json:"engine"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Geometry bool     `json:"geometry,omitempty"`
	Clusters bool     `json:"clusters,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`

	// Refresh skips cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// TTL overrides TTLReport and TTLArtifact when non-zero.
	TTL time.Duration `json:"ttl,omitempty"`

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills in zero values.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.PNGScale == 0 {
		o.PNGScale = 2
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.SceneFormat == "" && o.Source == nil && o.Path != "" {
		if f, err := scene.FormatOf(o.Path); err == nil {
			o.SceneFormat = f
		}
	}
	o.Engine.SetDefaults()
}

// Validate checks that the options describe a runnable scene.
func (o Options) Validate() error {
	if o.Source == nil && o.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a scene path or source is required")
	}
	if o.Source == nil {
		abs, err := filepath.Abs(o.Path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", o.Path)
		}
		if err := errors.ValidatePath(filepath.ToSlash(abs)); err != nil {
			return err
		}
	}
	if err := errors.ValidateFormat(o.SceneFormat, scene.FormatTOML, scene.FormatYAML, scene.FormatJSON); err != nil {
		return err
	}
	for _, f := range o.Formats {
		if err := errors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	if o.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "ttl must not be negative, got %s", o.TTL)
	}
	if o.PNGScale < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "png scale must not be negative, got %g", o.PNGScale)
	}
	return o.Engine.Validate()
}

// ReportKeyOpts returns the cache key options for the run stage.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		MaxIterations:     o.Engine.MaxIterations,
		ConsistencyChecks: o.Engine.ConsistencyChecks,
		ExtraAssertions:   o.Engine.ExtraAssertions,
	}
}

// ArtifactKeyOpts returns the cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Report:   o.ReportKeyOpts(),
		Format:   format,
		Geometry: o.Geometry,
		Clusters: o.Clusters,
	}
}

func (o *Options) reportTTL() time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return TTLReport
}

func (o *Options) artifactTTL() time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return TTLArtifact
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	Scene *scene.Scene

	// SceneHash is the content hash the cache keys derive from.
	SceneHash string

	Report *scene.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Frames     int
	LoadTime   time.Duration
	RunTime    time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	ReportHit bool // Whether the report came from cache
	RenderHit bool // Whether all artifacts came from cache
}
