package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pkoenig/boxtree/pkg/cache"
	"github.com/pkoenig/boxtree/pkg/diagram"
	"github.com/pkoenig/boxtree/pkg/errors"
	"github.com/pkoenig/boxtree/pkg/hierarchy"
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

// Execute runs the complete parse → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Parse
	parseStart := time.Now()
	roots, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, wrapStage(err, "parse")
	}
	result.Forest = roots
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = hierarchy.Count(roots)
	result.Stats.RootCount = len(roots)
	result.CacheInfo.ParseHit = parseHit

	// Compute forest hash for cache keys and API responses
	if data, err := marshalNodes(flattenForest(roots)); err == nil {
		result.ForestHash = cache.Hash(data)
	}

	r.Logger.Info("parsed hierarchy",
		"nodes", result.Stats.NodeCount,
		"roots", result.Stats.RootCount,
		"duration", result.Stats.ParseTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	d, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, roots, opts)
	if err != nil {
		return nil, wrapStage(err, "layout")
	}
	result.Diagram = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", opts.LayoutType,
		"boxes", len(d.Boxes),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, wrapStage(err, "render")
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo builds the forest with caching and returns cache hit
// info. The cached value is the normalized flat node list, so the forest is
// rebuilt on every call; what the cache skips is re-reading and re-validating
// the input.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) ([]*hierarchy.TreeNode, bool, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	hash, err := inputHash(opts)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.ForestKey(hash, opts.ForestKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if nodes, err := unmarshalNodes(data); err == nil {
				if roots, err := hierarchy.BuildForest(nodes); err == nil {
					return roots, true, nil // Cache hit
				}
			}
		}
	}

	// Parse
	nodes, err := Parse(opts)
	if err != nil {
		return nil, false, err
	}
	roots, err := hierarchy.BuildForest(nodes)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := marshalNodes(nodes); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLForest)
	}

	return roots, false, nil // Cache miss
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) ([]*hierarchy.TreeNode, error) {
	roots, _, err := r.ParseWithCacheInfo(ctx, opts)
	return roots, err
}

// GenerateLayoutWithCacheInfo computes the diagram with caching and returns
// cache hit info. On a hit the forest's Layout fields are left untouched;
// callers that need annotated trees as well as the diagram should pass
// Refresh or read geometry from the diagram's boxes.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, roots []*hierarchy.TreeNode, opts Options) (diagram.Diagram, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return diagram.Diagram{}, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from the flat node list
	nodeData, err := marshalNodes(flattenForest(roots))
	if err != nil {
		return diagram.Diagram{}, false, err
	}
	forestHash := cache.Hash(nodeData)
	cacheKey := r.Keyer.LayoutKey(forestHash, opts.LayoutKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := diagram.Unmarshal(data); err == nil {
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	// Generate layout
	d, err := GenerateLayout(roots, opts)
	if err != nil {
		return diagram.Diagram{}, false, err
	}

	// Cache the result
	if data, err := diagram.Marshal(d); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return d, false, nil // Cache miss
}

// GenerateLayout is a convenience wrapper that calls
// GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, roots []*hierarchy.TreeNode, opts Options) (diagram.Diagram, error) {
	d, _, err := r.GenerateLayoutWithCacheInfo(ctx, roots, opts)
	return d, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutHash, err := geometryHash(d)
	if err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache (unless refresh requested)
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		allCached := true
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
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	rendered, err := RenderDiagram(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, d diagram.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// wrapStage wraps a stage error, preserving its code so callers can still
// map it to the right response. Uncoded errors become internal.
func wrapStage(err error, stage string) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(code, err, "%s", stage)
}

// geometryHash hashes only the diagram parts that influence rendering:
// canvas size and boxes. The diagram id and timestamp change on every
// recompute and must not churn artifact keys.
func geometryHash(d diagram.Diagram) (string, error) {
	payload := struct {
		Width  float64       `json:"width"`
		Height float64       `json:"height"`
		Boxes  []diagram.Box `json:"boxes"`
	}{d.Width, d.Height, d.Boxes}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash diagram geometry")
	}
	return cache.Hash(data), nil
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
