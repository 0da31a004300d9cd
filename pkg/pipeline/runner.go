package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lineagelab/idhist/pkg/cache"
	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/lineage"
	"github.com/lineagelab/idhist/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
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

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	t, treeHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Tree = t
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = t.NodeCount()
	result.Stats.LinkCount = t.LinkCount()
	result.CacheInfo.TreeHit = treeHit

	// Compute tree hash for cache keys and API responses
	if treeData, err := graphio.MarshalTree(graphio.FromTree(t)); err == nil {
		result.TreeHash = cache.Hash(treeData)
	}

	r.Logger.Info("loaded tree",
		"nodes", t.NodeCount(),
		"links", t.LinkCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, merged, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, t, result.TreeHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Merged = merged
	result.Stats.Moves = t.Moves()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"rows", len(layout.Rows),
		"releases", len(layout.Labels),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, t, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads a tree with caching and returns cache hit info.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*lineage.Tree, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	source, name := opts.sourceKey()
	cacheKey := r.Keyer.TreeKey(source, name, opts.TreeKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "tree")
			if tj, err := graphio.UnmarshalTree(data); err == nil {
				if t, err := tj.ToTree(); err == nil {
					return t, true, nil // Cache hit
				}
			}
		} else {
			observability.Cache().OnCacheMiss(ctx, "tree")
		}
	}

	// Load
	t, err := Load(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if !opts.Refresh {
		if data, err := graphio.MarshalTree(graphio.FromTree(t)); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLTree)
			observability.Cache().OnCacheSet(ctx, "tree", len(data))
		}
	}

	return t, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*lineage.Tree, error) {
	t, _, err := r.LoadWithCacheInfo(ctx, opts)
	return t, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns the
// consolidation merge count plus cache hit info.
//
// Even on a layout cache hit the tree is still consolidated and laid out in
// memory, because later stages need the tree's computed state; the cached
// copy only spares re-serialization for API responses.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, t *lineage.Tree, treeHash string, opts Options) (graphio.Layout, int, bool, error) {
	r.applyLogger(&opts)

	cacheKey := r.Keyer.LayoutKey(treeHash, opts.LayoutKeyOpts())

	layout, merged, err := ComputeLayout(ctx, t, opts)
	if err != nil {
		return graphio.Layout{}, 0, false, err
	}

	// Report whether a cached copy existed, then refresh it.
	hit := false
	if data, ok, err := r.Cache.Get(ctx, cacheKey); err == nil && ok {
		if _, err := graphio.UnmarshalLayout(data); err == nil {
			hit = true
			observability.Cache().OnCacheHit(ctx, "layout")
		}
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "layout")
		if data, err := graphio.MarshalLayout(layout); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return layout, merged, hit, nil
}

// ComputeLayout is a convenience wrapper that discards cache and merge info.
func (r *Runner) ComputeLayout(ctx context.Context, t *lineage.Tree, treeHash string, opts Options) (graphio.Layout, error) {
	layout, _, _, err := r.ComputeLayoutWithCacheInfo(ctx, t, treeHash, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, t *lineage.Tree, layout graphio.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := graphio.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := RenderFromTree(ctx, t, layout, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, t *lineage.Tree, layout graphio.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, t, layout, opts)
	return artifacts, err
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
