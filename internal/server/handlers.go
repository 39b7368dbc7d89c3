package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cellplace/pkg/buildinfo"
	errs "github.com/matzehuels/cellplace/pkg/errors"
	"github.com/matzehuels/cellplace/pkg/layout"
	"github.com/matzehuels/cellplace/pkg/observability"
	"github.com/matzehuels/cellplace/pkg/overlap"
	"github.com/matzehuels/cellplace/pkg/pipeline"
	"github.com/matzehuels/cellplace/pkg/place"
	"github.com/matzehuels/cellplace/pkg/store"
)

// =============================================================================
// Responses
// =============================================================================

// PlaceResponse is returned by POST /v1/place.
type PlaceResponse struct {
	RunID       string        `json:"run_id"`
	Cached      bool          `json:"cached"`
	Cells       int           `json:"cells"`
	Wires       int           `json:"wires"`
	Rounds      int           `json:"rounds"`
	Evaluations int           `json:"evaluations"`
	DurationMS  float64       `json:"duration_ms"`
	Layout      layout.Layout `json:"layout"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code  errs.Code `json:"code,omitempty"`
	Error string    `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code by its error code.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: errs.GetCode(err), Error: errs.UserMessage(err)})
}

func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge
	}
	if errs.IsInputError(err) {
		return http.StatusBadRequest
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidOptions, errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errs.ErrCodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeExhausted:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	opts, err := s.placeOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	src, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	res, err := s.runner.Execute(r.Context(), src, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == pipeline.FormatText {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_ = layout.WriteText(w, res.Layout)
		return
	}
	writeJSON(w, http.StatusOK, PlaceResponse{
		RunID:       res.RunID,
		Cached:      res.CacheInfo.PlacementHit,
		Cells:       res.Stats.Cells,
		Wires:       res.Stats.Wires,
		Rounds:      res.Stats.Rounds,
		Evaluations: res.Stats.Evaluations,
		DurationMS:  float64(time.Since(start).Microseconds()) / 1000,
		Layout:      res.Layout,
	})
}

// placeOptions applies query overrides (mode, workers, candidates, index,
// exhaustion, refresh) to the server's engine settings.
func (s *Server) placeOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Source:  "api",
		Engine:  s.opts.Engine,
		Timeout: s.opts.Timeout,
		Logger:  s.logger,
	}
	opts.Engine.Progress = nil

	if v := q.Get("mode"); v != "" {
		opts.Engine.Mode = v
	}
	if v := q.Get("index"); v != "" {
		opts.Engine.Index = overlap.Kind(v)
	}
	if v := q.Get("exhaustion"); v != "" {
		opts.Engine.Exhaustion = place.Exhaustion(v)
	}
	for name, dst := range map[string]*int{
		"workers":    &opts.Engine.Workers,
		"candidates": &opts.Engine.Candidates,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return pipeline.Options{}, errs.New(errs.ErrCodeInvalidOptions, "%s must be a positive integer, got %q", name, v)
		}
		*dst = n
	}
	if v := q.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return pipeline.Options{}, errs.New(errs.ErrCodeInvalidOptions, "refresh must be a boolean, got %q", v)
		}
		opts.Refresh = b
	}
	if v := q.Get("format"); v != "" && v != pipeline.FormatJSON && v != pipeline.FormatText {
		return pipeline.Options{}, errs.New(errs.ErrCodeInvalidOptions, "format must be json or txt, got %q", v)
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, errs.Wrap(errs.ErrCodeInvalidOptions, err, "invalid options")
	}
	return opts, nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, errs.New(errs.ErrCodeInvalidOptions, "limit must be a positive integer, got %q", v))
			return
		}
		limit = n
	}
	runs, err := s.runner.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.run(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleRenderRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.run(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	data, _, err := s.runner.Render(r.Context(), run.Layout, nil, pipeline.RenderOptions{Format: format})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(format))
	_, _ = w.Write(data)
}

func (s *Server) run(r *http.Request) (*store.Run, error) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}
	return s.runner.Store.Get(r.Context(), id)
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	}
	return "text/plain; charset=utf-8"
}

// =============================================================================
// Middleware
// =============================================================================

// observe reports requests and responses to the HTTP hooks, keyed by the
// matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}
