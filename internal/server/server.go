// Package server exposes molecules over HTTP.
//
// Structure files are uploaded once, stored through a [store.Store], and
// rendered on request at any rotation:
//
//	POST   /molecules                 upload (multipart "file", optional "name")
//	GET    /molecules                 list
//	GET    /molecules/{name}          summary
//	DELETE /molecules/{name}
//	GET    /molecules/{name}/svg      ?rx=&ry=&rz= in degrees
//	GET    /molecules/{name}/sdf      export
//	GET    /molecules/{name}/graph.svg    ?indices=true, ?format=png
//	POST   /render                    raw structure file body, no storage
//	GET    /elements
//	POST   /elements
//	DELETE /elements/{code}
//	GET    /healthz
//	GET    /metrics                   when metrics are enabled
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/molview/internal/config"
	"github.com/matzehuels/molview/pkg/observability"
	"github.com/matzehuels/molview/pkg/pipeline"
	"github.com/matzehuels/molview/pkg/store"
)

const healthTimeout = 2 * time.Second

// Server is the HTTP API server for molview.
type Server struct {
	router  chi.Router
	store   store.Store
	runner  *pipeline.Runner
	log     *log.Logger
	cfg     config.Config
	metrics *observability.Prometheus
}

// Option customizes a Server.
type Option func(*Server)

// WithMetrics serves p's registry on /metrics.
func WithMetrics(p *observability.Prometheus) Option {
	return func(s *Server) { s.metrics = p }
}

// New creates and configures the HTTP server. The runner's element table is
// kept in sync with element changes made through the API.
func New(st store.Store, runner *pipeline.Runner, logger *log.Logger, cfg config.Config, opts ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		store:  st,
		runner: runner,
		log:    logger,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/molecules", func(r chi.Router) {
		r.Post("/", s.handleUpload)
		r.Get("/", s.handleList)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/svg", s.handleSVG)
			r.Get("/sdf", s.handleExport)
			r.Get("/graph.svg", s.handleGraph)
		})
	})
	r.Post("/render", s.handleRender)

	r.Get("/elements", s.handleListElements)
	r.Post("/elements", s.handlePutElement)
	r.Delete("/elements/{code}", s.handleDeleteElement)

	s.router = r
}

// ListenAndServe serves on cfg.Server.Addr until ctx is cancelled, then
// shuts down gracefully within cfg.Server.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := store.Ping(ctx, s.store); err != nil {
		s.log.Warn("store unhealthy", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "store": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// renderOptions returns pipeline options carrying the configured drawing
// defaults.
func (s *Server) renderOptions() pipeline.Options {
	return pipeline.Options{
		BondColour:  s.cfg.Render.BondColour,
		Background:  s.cfg.Render.Background,
		NoGradients: s.cfg.Render.NoGradients,
	}
}
