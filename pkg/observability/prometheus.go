package observability

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus implements every hook interface by recording metrics in its
// own registry. Install it with [Prometheus.Install] and expose
// [Prometheus.Handler] on a metrics endpoint.
type Prometheus struct {
	registry *prometheus.Registry

	parseTotal     *prometheus.CounterVec
	parseDuration  prometheus.Histogram
	atomsParsed    prometheus.Histogram
	transformTotal *prometheus.CounterVec
	fitScale       prometheus.Histogram
	renderTotal    *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	cacheTotal     *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpInFlight   prometheus.Gauge
	httpTotal      *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheus creates the collectors under namespace and registers them
// together with the Go and process collectors.
func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = "molview"
	}
	p := &Prometheus{registry: prometheus.NewRegistry()}

	p.parseTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "parse_total",
		Help: "Structure files parsed, by result.",
	}, []string{"result"})
	p.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "parse_duration_seconds",
		Help:    "Time spent parsing structure files.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
	})
	p.atomsParsed = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "molecule_atoms",
		Help:    "Atom count of parsed molecules.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
	p.transformTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "transform_total",
		Help: "Rotate and autofit passes, by result.",
	}, []string{"result"})
	p.fitScale = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "fit_scale",
		Help:    "Autofit scale factor chosen per render.",
		Buckets: prometheus.LinearBuckets(20, 20, 9),
	})
	p.renderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "render_total",
		Help: "Render passes, by result.",
	}, []string{"result"})
	p.renderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "render_duration_seconds",
		Help:    "Time spent producing output formats.",
		Buckets: prometheus.DefBuckets,
	}, []string{"formats"})
	p.cacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "cache_requests_total",
		Help: "Cache lookups and writes, by key type and outcome.",
	}, []string{"key_type", "outcome"})
	p.cacheBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "cache_written_bytes_total",
		Help: "Bytes written to the cache, by key type.",
	}, []string{"key_type"})
	p.httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "http_requests_in_flight",
		Help: "Requests currently being served.",
	})
	p.httpTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total",
		Help: "Served requests, by method, route and status.",
	}, []string{"method", "route", "status"})
	p.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds",
		Help:    "Request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	p.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}),
		p.parseTotal, p.parseDuration, p.atomsParsed,
		p.transformTotal, p.fitScale,
		p.renderTotal, p.renderDuration,
		p.cacheTotal, p.cacheBytes,
		p.httpInFlight, p.httpTotal, p.httpDuration,
	)
	return p
}

// Install registers p as the global pipeline, cache and HTTP hooks.
func (p *Prometheus) Install() {
	SetPipelineHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnParseStart(context.Context, string) {}

func (p *Prometheus) OnParseComplete(_ context.Context, _ string, atoms, _ int, d time.Duration, err error) {
	p.parseTotal.WithLabelValues(result(err)).Inc()
	p.parseDuration.Observe(d.Seconds())
	if err == nil {
		p.atomsParsed.Observe(float64(atoms))
	}
}

func (p *Prometheus) OnTransformComplete(_ context.Context, _ int, scale float64, _ time.Duration, err error) {
	p.transformTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		p.fitScale.Observe(scale)
	}
}

func (p *Prometheus) OnRenderStart(context.Context, []string) {}

func (p *Prometheus) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	p.renderTotal.WithLabelValues(result(err)).Inc()
	p.renderDuration.WithLabelValues(joinFormats(formats)).Observe(d.Seconds())
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheTotal.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.httpInFlight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpInFlight.Dec()
	p.httpTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func joinFormats(formats []string) string {
	return strings.Join(formats, ",")
}

var (
	_ PipelineHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
