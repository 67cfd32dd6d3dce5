// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness probe and build information
//	GET  /v1/engines  registered base layout engines
//	POST /v1/layout   lay out a diagram tree
//
// Every response carries an X-Request-ID header. Errors are reported as
// {"error": ..., "code": ...} with the status from [errors.HTTPStatus].
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/bpmnlayout/pkg/buildinfo"
	"github.com/matzehuels/bpmnlayout/pkg/config"
	"github.com/matzehuels/bpmnlayout/pkg/errors"
	"github.com/matzehuels/bpmnlayout/pkg/geom"
	"github.com/matzehuels/bpmnlayout/pkg/io"
	"github.com/matzehuels/bpmnlayout/pkg/model"
	"github.com/matzehuels/bpmnlayout/pkg/observability"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

const (
	// MaxBodyBytes bounds the size of a layout request.
	MaxBodyBytes = 8 << 20

	// RequestTimeout bounds a single layout.
	RequestTimeout = 60 * time.Second

	headerRequestID = "X-Request-ID"
)

// Server handles layout requests.
type Server struct {
	runner *pipeline.Runner
	layout *config.Layout
	logger *log.Logger
	router chi.Router
}

// New returns a server that lays out trees with runner. A nil cfg means
// [config.Default].
func New(runner *pipeline.Runner, cfg *config.Layout, logger *log.Logger) *Server {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, layout: cfg, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/engines", s.handleEngines)
		r.Post("/layout", s.handleLayout)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// =============================================================================
// Middleware
// =============================================================================

type ctxKey int

const requestIDKey ctxKey = 0

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID tags each request with an ID, honouring one supplied by the
// client, and reports the request to the server hooks.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set(headerRequestID, id)

		start := time.Now()
		observability.Server().OnRequest(ctx, id, r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.Server().OnResponse(ctx, id, status, dur)
		s.logger.Debug("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur)
	})
}

// =============================================================================
// Handlers
// =============================================================================

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	Tree     json.RawMessage   `json:"tree"`
	Engine   string            `json:"engine,omitempty"`
	Options  map[string]string `json:"options,omitempty"`
	Absolute bool              `json:"absolute,omitempty"`
	Refresh  bool              `json:"refresh,omitempty"`
}

// LayoutResponse is the body of a successful POST /v1/layout.
type LayoutResponse struct {
	Tree           *model.Node             `json:"tree"`
	AbsoluteRoutes map[string][]geom.Point `json:"absoluteRoutes,omitempty"`
	CacheHit       bool                    `json:"cacheHit"`
	Stats          StatsResponse           `json:"stats"`
}

// StatsResponse summarises a layout.
type StatsResponse struct {
	Nodes    int   `json:"nodes"`
	Edges    int   `json:"edges"`
	LayoutMS int64 `json:"layoutMs"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Get()})
}

func (s *Server) handleEngines(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"engines": pipeline.EngineNames(),
		"default": pipeline.DefaultEngine,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req LayoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if len(req.Tree) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "request has no tree"))
		return
	}
	tree, err := pipeline.Decode(bytes.NewReader(req.Tree), io.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(ctx, tree, pipeline.Options{
		Engine:        req.Engine,
		LayoutOptions: req.Options,
		Refresh:       req.Refresh,
		Layout:        s.layout,
		Logger:        s.logger.With("request", RequestID(ctx)),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := LayoutResponse{
		Tree:     res.Tree,
		CacheHit: res.CacheHit,
		Stats: StatsResponse{
			Nodes:    res.Stats.Nodes,
			Edges:    res.Stats.Edges,
			LayoutMS: res.Stats.LayoutTime.Milliseconds(),
		},
	}
	if req.Absolute {
		resp.AbsoluteRoutes = pipeline.AbsoluteRoutes(res.Tree)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
