// Package api exposes the engine over HTTP with JSON bodies.
package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fable-engine/fable/internal/game/session"
	"github.com/fable-engine/fable/internal/storage/postgres"
	"github.com/fable-engine/fable/internal/storage/redis"
)

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server routes HTTP requests to the session manager and, when configured,
// the account and save repositories and the snapshot cache. The repository
// and cache fields may be nil; the endpoints needing them reply 503.
type Server struct {
	sessions *session.Manager
	accounts *postgres.AccountRepository
	saves    *postgres.SaveRepository
	cache    *redis.SnapshotCache
	logger   *zap.Logger
}

// Option configures optional Server collaborators.
type Option func(*Server)

// WithPersistence wires the account and save repositories.
func WithPersistence(accounts *postgres.AccountRepository, saves *postgres.SaveRepository) Option {
	return func(s *Server) {
		s.accounts = accounts
		s.saves = saves
	}
}

// WithSnapshotCache wires the session snapshot cache.
func WithSnapshotCache(cache *redis.SnapshotCache) Option {
	return func(s *Server) {
		s.cache = cache
	}
}

// NewServer creates a Server.
//
// Precondition: sessions and logger must be non-nil.
func NewServer(sessions *session.Manager, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		sessions: sessions,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the server's request multiplexer.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/rooms", s.handleListRooms)

	mux.HandleFunc("POST /v1/accounts", s.handleRegister)
	mux.HandleFunc("POST /v1/login", s.handleLogin)

	mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /v1/sessions/{id}/actions", s.handleActions)
	mux.HandleFunc("POST /v1/sessions/{id}/execute", s.handleExecute)
	mux.HandleFunc("GET /v1/sessions/{id}/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /v1/sessions/{id}/save", s.handleSave)
	mux.HandleFunc("POST /v1/sessions/restore", s.handleRestore)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	}
	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["cache"] = err.Error()
		}
	}
	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, msg string) {
	s.respondJSON(w, code, ErrorResponse{Error: msg})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
