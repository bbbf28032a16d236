package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/molview/pkg/cache"
	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/molecule"
	"github.com/matzehuels/molview/pkg/observability"
	"github.com/matzehuels/molview/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, the element table and the
// logger. Multiple goroutines can safely use the same Runner with different
// options: every run works on its own copy of the molecule.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Elements *elements.Table
	Logger   *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If tbl is nil, the built-in element table is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, tbl *elements.Table, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if tbl == nil {
		tbl = elements.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Elements: tbl,
		Logger:   logger,
	}
}

// Execute runs the complete parse → transform → render pipeline on a
// structure file.
func (r *Runner) Execute(ctx context.Context, src []byte, name string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	parseStart := time.Now()
	m, hit, err := r.ParseWithCacheInfo(ctx, src, name, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	parseTime := time.Since(parseStart)

	r.Logger.Info("parsed molecule",
		"name", m.Name,
		"atoms", m.AtomCount(),
		"bonds", m.BondCount(),
		"duration", parseTime)

	res, err := r.render(ctx, m, SourceHash(src, name), opts)
	if err != nil {
		return nil, err
	}
	res.Stats.ParseTime = parseTime
	res.CacheInfo.ParseHit = hit
	return res, nil
}

// RenderMolecule runs the transform and render stages on a molecule that is
// already in memory. m is not modified.
func (r *Runner) RenderMolecule(ctx context.Context, m *molecule.Molecule, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hash, err := MoleculeHash(m)
	if err != nil {
		return nil, err
	}
	return r.render(ctx, m, hash, opts)
}

func (r *Runner) render(ctx context.Context, m *molecule.Molecule, sourceHash string, opts Options) (*Result, error) {
	hooks := observability.Pipeline()
	result := &Result{SourceHash: sourceHash}

	transformStart := time.Now()
	work, rc, err := Transform(m, r.Elements, opts)
	result.Stats.TransformTime = time.Since(transformStart)
	hooks.OnTransformComplete(ctx, m.AtomCount(), rc.Fit.Scale, result.Stats.TransformTime, err)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	result.Molecule = work
	result.Stats.AtomCount = work.AtomCount()
	result.Stats.BondCount = work.BondCount()
	result.Stats.Scale = rc.Fit.Scale

	r.Logger.Debug("fitted molecule",
		"rotation", opts.Rotation,
		"scale", rc.Fit.Scale,
		"offset_x", rc.Fit.OffsetX,
		"offset_y", rc.Fit.OffsetY)

	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	scene, err := render.Compose(work, rc)
	if err != nil {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
		return nil, fmt.Errorf("compose: %w", err)
	}
	result.Scene = scene

	artifacts, hit, err := r.RenderWithCacheInfo(ctx, work, scene, sourceHash, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseWithCacheInfo parses src with caching and returns cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, src []byte, name string, opts Options) (*molecule.Molecule, bool, error) {
	key := r.Keyer.MoleculeKey(SourceHash(src, name))

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, "molecule", key); ok {
			if m, err := unmarshalMolecule(data); err == nil {
				return m, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, name)
	start := time.Now()
	m, err := Parse(src, name)
	if err != nil {
		hooks.OnParseComplete(ctx, name, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnParseComplete(ctx, m.Name, m.AtomCount(), m.BondCount(), time.Since(start), nil)

	if data, err := marshalMolecule(m); err == nil {
		r.store(ctx, "molecule", key, data, cache.TTLMolecule)
	}
	return m, false, nil
}

// RenderWithCacheInfo renders every requested format of scene, reusing
// cached artifacts when all of them are present.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *molecule.Molecule, scene render.Scene, sourceHash string, opts Options) (map[string][]byte, bool, error) {
	sceneKey := r.Keyer.SceneKey(sourceHash, opts.SceneKeyOpts(r.elementsHash()))

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, ok := r.lookup(ctx, "artifact", r.Keyer.ArtifactKey(sceneKey, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, m, r.Elements, scene, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		r.store(ctx, "artifact", r.Keyer.ArtifactKey(sceneKey, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
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

func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// elementsHash changes whenever a radius or colour in the table changes,
// so artifacts drawn with an older table are not reused.
func (r *Runner) elementsHash() string {
	data, _ := json.Marshal(r.Elements.All())
	return cache.Hash(data)
}
