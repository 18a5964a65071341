package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lzmap/lzmap/pkg/build"
	"github.com/lzmap/lzmap/pkg/cache"
	"github.com/lzmap/lzmap/pkg/classify"
	"github.com/lzmap/lzmap/pkg/connect"
	"github.com/lzmap/lzmap/pkg/layout"
	"github.com/lzmap/lzmap/pkg/model"
	"github.com/lzmap/lzmap/pkg/observability"
	"github.com/lzmap/lzmap/pkg/render"
	"github.com/lzmap/lzmap/pkg/validate"
)

// Runner executes the pipeline with caching support.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a Runner. A nil c disables caching, a nil keyer selects
// the default key scheme.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the runner's cache resources.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Execute runs the full pipeline: classify, build, validate, layout, resolve
// connections, serialize. Identical Options yield byte-identical artifacts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if r.Logger != nil {
		logger = r.Logger
	}

	hash := cache.HashParts(opts.Records, opts.Preset, opts.Formats, opts.Legend, opts.Title)

	result := &Result{
		InputHash: hash,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		CacheInfo: CacheInfo{Hits: make(map[string]bool, len(opts.Formats))},
	}
	result.Stats.RecordCount = len(opts.Records)

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	// Classification mismatch is diagnostic, not fatal.
	groups, err := classify.Aggregate(opts.Records)
	if err != nil {
		logger.Warn("classification mismatch", "error", err)
		result.Mismatch = err
	}
	result.Groups = groups

	hooks.OnBuildStart(ctx, opts.Preset.Name, len(opts.Records))
	buildStart := time.Now()
	m, err := build.Build(opts.Records, opts.Preset)
	if err != nil {
		hooks.OnBuildComplete(ctx, opts.Preset.Name, 0, time.Since(buildStart), err)
		return nil, err
	}
	if err := validate.Model(m); err != nil {
		hooks.OnBuildComplete(ctx, opts.Preset.Name, m.NodeCount(), time.Since(buildStart), err)
		return nil, err
	}
	result.Stats.BuildTime = time.Since(buildStart)
	hooks.OnBuildComplete(ctx, opts.Preset.Name, m.NodeCount(), result.Stats.BuildTime, nil)
	logger.Debug("model built", "nodes", m.NodeCount(), "duration", result.Stats.BuildTime)

	hooks.OnLayoutStart(ctx, m.NodeCount())
	layoutStart := time.Now()
	if err := layout.Apply(m, opts.Layout); err != nil {
		hooks.OnLayoutComplete(ctx, time.Since(layoutStart), err)
		return nil, err
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, result.Stats.LayoutTime, nil)

	if err := connect.Resolve(m, opts.Preset); err != nil {
		return nil, err
	}
	logger.Debug("connections resolved", "edges", m.EdgeCount())

	result.Model = m
	result.Stats.NodeCount = m.NodeCount()
	result.Stats.EdgeCount = m.EdgeCount()

	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	for _, format := range opts.Formats {
		key := r.Keyer.DocumentKey(hash, format)
		ttl := cache.TTLDocument
		if format == FormatJSON {
			key = r.Keyer.GraphKey(hash)
			ttl = cache.TTLGraph
		}
		if !opts.Refresh {
			if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
				cacheHooks.OnCacheHit(ctx, key)
				result.Artifacts[format] = data
				result.CacheInfo.Hits[format] = true
				continue
			}
			cacheHooks.OnCacheMiss(ctx, key)
		}

		data, err := r.renderFormat(m, format, opts)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
			return nil, err
		}
		result.Artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			logger.Warn("cache write failed", "key", key, "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, key, len(data))
		}
	}
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, nil)
	logger.Debug("artifacts rendered",
		"formats", opts.Formats,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) renderFormat(m *model.Model, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return render.RenderGraphJSON(m)
	default:
		return render.RenderDrawio(m, render.Options{Legend: opts.Legend, Title: opts.Title})
	}
}
