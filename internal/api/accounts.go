package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fable-engine/fable/internal/storage/postgres"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountResponse struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.accounts == nil {
		s.respondError(w, http.StatusServiceUnavailable, "persistence is not enabled")
		return
	}

	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	acct, err := s.accounts.Create(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, postgres.ErrAccountExists) {
			s.respondError(w, http.StatusConflict, "username already taken")
			return
		}
		s.logger.Error("creating account", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "creating account failed")
		return
	}

	s.logger.Info("account created",
		zap.Int64("account_id", acct.ID),
		zap.String("username", acct.Username),
	)
	s.respondJSON(w, http.StatusCreated, accountResponse{
		AccountID: acct.ID,
		Username:  acct.Username,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.accounts == nil {
		s.respondError(w, http.StatusServiceUnavailable, "persistence is not enabled")
		return
	}

	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}

	acct, err := s.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, postgres.ErrAccountNotFound) || errors.Is(err, postgres.ErrInvalidCredentials) {
			s.respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("authenticating account", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "authentication failed")
		return
	}

	s.respondJSON(w, http.StatusOK, accountResponse{
		AccountID: acct.ID,
		Username:  acct.Username,
	})
}
