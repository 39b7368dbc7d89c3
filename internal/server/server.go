// Package server exposes the placement pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness and build version
//	POST /v1/place                body is netlist text; returns the layout
//	GET  /v1/runs                 recent runs, newest first (?limit=)
//	GET  /v1/runs/{id}            one stored run
//	GET  /v1/runs/{id}/render     stored layout as ?format=svg|png|dot|json|txt
//
// Errors are JSON objects {"code": ..., "error": ...}. Input errors (parse,
// reference, empty netlist) are 400; exhaustion is 422; timeouts are 504.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cellplace/pkg/pipeline"
	"github.com/matzehuels/cellplace/pkg/place"
)

// Defaults for Options.
const (
	DefaultMaxBodyBytes = 8 << 20
	DefaultListLimit    = 20
	shutdownTimeout     = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Engine is the base engine configuration; query parameters override it
	// per request.
	Engine place.Options
	// Timeout bounds each placement. Zero means no limit.
	Timeout time.Duration
	// MaxBodyBytes limits the netlist size accepted by POST /v1/place.
	MaxBodyBytes int64
}

// Server handles API requests with a shared pipeline runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
}

// New creates a server. The runner's store backs the /v1/runs routes.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{runner: runner, logger: logger, opts: opts}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/place", s.handlePlace)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/render", s.handleRenderRun)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
