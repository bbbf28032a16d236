// Package observability lets the pipeline, the caches and the HTTP server
// report what they do without depending on a metrics backend.
//
// Libraries emit events through the package-level accessors:
//
//	start := time.Now()
//	observability.Pipeline().OnParseStart(ctx, name)
//	m, err := sdf.Parse(r, name)
//	observability.Pipeline().OnParseComplete(ctx, name, m.AtomCount(), m.BondCount(), time.Since(start), err)
//
// Until a binary installs real hooks every event goes to a no-op. `molview
// serve` installs [Prometheus] when metrics are enabled:
//
//	prom := observability.NewPrometheus("molview")
//	prom.Install()
//
// Hooks are swapped as a set, so readers never lock.
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// PipelineHooks receives one event per pipeline stage.
type PipelineHooks interface {
	OnParseStart(ctx context.Context, name string)
	OnParseComplete(ctx context.Context, name string, atoms, bonds int, duration time.Duration, err error)

	// OnTransformComplete fires after rotation and autofit. scale is the
	// fitted canvas scale.
	OnTransformComplete(ctx context.Context, atoms int, scale float64, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is the key
// namespace, e.g. "molecule" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives served requests. route is the matched chi pattern
// such as "/molecules/{name}/svg", never the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string)                                   {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, int, time.Duration, error) {}
func (NoopPipelineHooks) OnTransformComplete(context.Context, int, float64, time.Duration, error) {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                                 {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)        {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// hookSet is replaced wholesale on every registration.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

func noopSet() *hookSet {
	return &hookSet{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		http:     NoopHTTPHooks{},
	}
}

var (
	active   atomic.Pointer[hookSet]
	updateMu sync.Mutex // serializes writers
)

func init() {
	active.Store(noopSet())
}

func update(fn func(*hookSet)) {
	updateMu.Lock()
	defer updateMu.Unlock()
	next := *active.Load()
	fn(&next)
	active.Store(&next)
}

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks installs h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return active.Load().pipeline }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return active.Load().cache }

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks { return active.Load().http }

// Reset reinstalls the no-op hooks.
func Reset() {
	updateMu.Lock()
	defer updateMu.Unlock()
	active.Store(noopSet())
}
