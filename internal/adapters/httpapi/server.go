// Package httpapi exposes the engine as a JSON HTTP service.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cstaulbee/quickscope"
	"github.com/cstaulbee/quickscope/internal/logging"
	"github.com/cstaulbee/quickscope/internal/sanitize"
	"github.com/cstaulbee/quickscope/pkg/session"
)

// Server routes HTTP requests to an engine.
type Server struct {
	engine  *quickscope.Engine
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics attaches turn metrics. The /metrics endpoint is served
// regardless; this wires the turn counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// NewHandler builds the HTTP handler for the engine.
func NewHandler(engine *quickscope.Engine, opts ...Option) http.Handler {
	s := &Server{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/flows", s.listFlows)
	r.Post("/sessions", s.startSession)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/{sessionID}", s.getSession)
	r.Delete("/sessions/{sessionID}", s.deleteSession)
	r.Post("/sessions/{sessionID}/turns", s.processTurn)

	return r
}

type startRequest struct {
	FlowID string `json:"flow_id"`
}

type turnRequest struct {
	Input string `json:"input"`
}

type turnResponse struct {
	SessionID string           `json:"session_id"`
	Output    string           `json:"output"`
	Done      bool             `json:"done"`
	Pending   *session.Pending `json:"pending,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := s.engine.Flows()
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"flows": flows})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.FlowID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "flow_id is required"})
		return
	}

	started := time.Now()
	turn, err := s.engine.StartSession(r.Context(), req.FlowID)
	if err != nil {
		if errors.Is(err, quickscope.ErrFlowNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if s.metrics != nil {
		s.metrics.observeTurn("ok", started)
	}
	writeJSON(w, http.StatusCreated, turnResponse{
		SessionID: turn.SessionID,
		Output:    turn.Output,
		Done:      turn.Done,
		Pending:   turn.Pending,
	})
}

// processTurn runs one turn. A fatal turn error still yields a 200;
// the session stayed at its pre-turn stage and the body carries both
// the user-facing output and the error detail.
func (s *Server) processTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	started := time.Now()
	turn, err := s.engine.ProcessTurn(r.Context(), sessionID, req.Input)
	switch {
	case errors.Is(err, quickscope.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, sanitize.ErrInputTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, sanitize.ErrInvalidUTF8):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil && turn == nil:
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	resp := turnResponse{
		SessionID: turn.SessionID,
		Output:    turn.Output,
		Done:      turn.Done,
		Pending:   turn.Pending,
	}
	status := "ok"
	if err != nil {
		resp.Error = err.Error()
		status = "error"
		s.logger.Error("turn failed", "session_id", sessionID, "err", err)
	}
	if s.metrics != nil {
		s.metrics.observeTurn(status, started)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Sessions(r.Context())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.State(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		if errors.Is(err, quickscope.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		if errors.Is(err, quickscope.ErrSessionNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"err", err,
	)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; nothing left to do.
		return
	}
}
