// Package http exposes the function catalog and single-function invocation
// over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Engine is the subset of the weft engine served over HTTP.
type Engine interface {
	Definitions() []domain.Definition
	Definition(id string) (domain.Definition, bool)
	NewContext(nodeID string, store map[string]any) *domain.ExecutionContext
	Invoke(ctx context.Context, id string, params map[string]any, ec *domain.ExecutionContext) (domain.Result, error)
}

// InvokeRequest is the body of POST /functions/{id}/invoke.
type InvokeRequest struct {
	Params map[string]any `json:"params"`
	Store  map[string]any `json:"store"`
}

// InvokeResponse carries the Result and the Store after the call.
type InvokeResponse struct {
	Result domain.Result  `json:"result"`
	Store  map[string]any `json:"store"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server serves the HTTP API.
type Server struct {
	Engine  Engine
	Logger  *slog.Logger
	Metrics http.Handler
	Version string
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine, Version: "dev"}
	for _, opt := range opts {
		opt(s)
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Route("/functions", func(r chi.Router) {
		r.Get("/", s.ListFunctions)
		r.Get("/{id}", s.GetFunction)
		r.Post("/{id}/invoke", s.InvokeFunction)
	})
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":       "weft-http",
		"version":   s.Version,
		"functions": len(s.Engine.Definitions()),
	})
}

// ListFunctions handles GET /functions. The optional category query
// parameter filters the catalog.
func (s *Server) ListFunctions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	defs := []domain.Definition{}
	for _, d := range s.Engine.Definitions() {
		if category == "" || d.Category == category {
			defs = append(defs, d)
		}
	}
	s.writeJSON(w, http.StatusOK, defs)
}

// GetFunction handles GET /functions/{id}.
func (s *Server) GetFunction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, ok := s.Engine.Definition(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "function '"+id+"' not found")
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// InvokeFunction handles POST /functions/{id}/invoke. A failed Result is
// still a 200: failure is part of the function's answer.
func (s *Server) InvokeFunction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body InvokeRequest
	// an empty body means no params and an empty store
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.Logger.Warn("invoke: invalid request body", "function", id, "err", err)
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ec := s.Engine.NewContext("http:"+id, body.Store)
	res, err := s.Engine.Invoke(r.Context(), id, body.Params, ec)
	if err != nil {
		if errors.Is(err, domain.ErrFunctionNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.Logger.Error("invoke failed", "function", id, "err", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Logger.Debug("invoked", "function", id, "success", res.Success, "action", res.Action)
	s.writeJSON(w, http.StatusOK, InvokeResponse{Result: res, Store: ec.Store.Snapshot()})
}
