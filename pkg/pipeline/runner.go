package pipeline

import (
	"bytes"
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lattice/pkg/cache"
	"github.com/matzehuels/lattice/pkg/errors"
	"github.com/matzehuels/lattice/pkg/observability"
	"github.com/matzehuels/lattice/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → run → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	sc, hash, err := Load(opts)
	if err != nil {
		return nil, err
	}
	result.Scene = sc
	result.SceneHash = hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = sc.NodeCount()
	observability.Pipeline().OnSceneLoad(ctx, sc.Name, result.Stats.NodeCount)

	opts.Logger.Debug("loaded scene",
		"scene", sc.Name,
		"nodes", result.Stats.NodeCount,
		"frames", len(sc.Frames))

	// Stage 2: Run
	runStart := time.Now()
	rep, hit, err := r.RunWithCacheInfo(ctx, sc, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Report = rep
	result.Stats.RunTime = time.Since(runStart)
	result.Stats.Frames = len(rep.Frames)
	result.CacheInfo.ReportHit = hit

	opts.Logger.Info("ran scene",
		"scene", sc.Name,
		"frames", len(rep.Frames),
		"cached", hit,
		"duration", result.Stats.RunTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, rep, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ExecuteAll runs independent scenes concurrently. Results are in the order
// of opts. The first failure cancels the remaining runs.
func (r *Runner) ExecuteAll(ctx context.Context, opts []Options) ([]*Result, error) {
	results := make([]*Result, len(opts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range opts {
		g.Go(func() error {
			res, err := r.Execute(ctx, opts[i])
			if err != nil {
				return errors.Wrap(codeOf(err), err, "scene %d (%s)", i, sceneLabel(opts[i]))
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunWithCacheInfo runs sc and returns whether the report came from cache.
func (r *Runner) RunWithCacheInfo(ctx context.Context, sc *scene.Scene, sceneHash string, opts Options) (*scene.Report, bool, error) {
	r.applyLogger(&opts)
	opts.Engine.SetDefaults()
	key := r.Keyer.ReportKey(sceneHash, opts.ReportKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if rep, err := scene.ReadReport(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				return rep, true, nil
			}
			// Undecodable entries fall through to a fresh run.
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "report")
	}

	observability.Pipeline().OnRunStart(ctx, sc.Name, len(sc.Frames)+1)
	start := time.Now()
	rep, err := Run(ctx, sc, opts.Engine, opts.Logger)
	observability.Pipeline().OnRunComplete(ctx, sc.Name, len(sc.Frames)+1, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), opts.reportTTL()); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "report", buf.Len())
		}
	}
	return rep, false, nil
}

// RenderWithCacheInfo renders rep in every requested format and returns
// whether all of them came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, rep *scene.Report, sceneHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, rep, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, opts.artifactTTL()); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func codeOf(err error) errors.Code {
	if c := errors.GetCode(err); c != "" {
		return c
	}
	return errors.ErrCodeInternal
}

func sceneLabel(o Options) string {
	if o.Path != "" {
		return o.Path
	}
	if o.Name != "" {
		return o.Name
	}
	return "source"
}
