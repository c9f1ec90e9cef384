package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fable-engine/fable/internal/game/engine"
	"github.com/fable-engine/fable/internal/game/entity"
	"github.com/fable-engine/fable/internal/game/player"
	"github.com/fable-engine/fable/internal/game/session"
	"github.com/fable-engine/fable/internal/storage/postgres"
	"github.com/fable-engine/fable/internal/storage/redis"
)

type roomView struct {
	ID   entity.RoomID `json:"id"`
	Name string        `json:"name"`
}

func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := s.sessions.Engine().World().AllRooms()
	out := make([]roomView, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, roomView{ID: room.ID, Name: room.Name})
	}
	s.respondJSON(w, http.StatusOK, out)
}

type createSessionRequest struct {
	PlayerName string `json:"player_name"`
}

type sessionResponse struct {
	SessionID string        `json:"session_id"`
	RoomID    entity.RoomID `json:"room_id"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.PlayerName == "" {
		s.respondError(w, http.StatusBadRequest, "player_name is required")
		return
	}

	sess := s.sessions.Create(req.PlayerName)
	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("player", req.PlayerName),
	)
	s.respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID,
		RoomID:    sess.State.RoomID,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.sessions.Remove(id); err != nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if s.cache != nil {
		if err := s.cache.Delete(r.Context(), id); err != nil {
			s.logger.Warn("deleting snapshot", zap.String("session_id", id), zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type actionsResponse struct {
	RoomID  entity.RoomID       `json:"room_id"`
	Actions []engine.ActionView `json:"actions"`
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	roomID, views, err := s.sessions.ActionsHere(id)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	if views == nil {
		views = []engine.ActionView{}
	}
	s.respondJSON(w, http.StatusOK, actionsResponse{RoomID: roomID, Actions: views})
}

type executeRequest struct {
	ActionID int              `json:"action_id"`
	Ware     *entity.ItemID   `json:"ware_id,omitempty"`
	Recipe   *entity.RecipeID `json:"recipe_id,omitempty"`
}

type executeResponse struct {
	engine.Result
	RoomID entity.RoomID `json:"room_id"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req executeRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.sessions.ExecuteHere(id, req.ActionID, engine.Choice{
		Ware:   req.Ware,
		Recipe: req.Recipe,
	})
	if err != nil {
		s.respondExecuteError(w, id, err)
		return
	}

	st, err := s.sessions.StateCopy(id)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	if s.cache != nil {
		if err := s.cache.Store(r.Context(), id, st); err != nil {
			s.logger.Warn("storing snapshot", zap.String("session_id", id), zap.Error(err))
		}
	}

	s.respondJSON(w, http.StatusOK, executeResponse{Result: result, RoomID: st.RoomID})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := s.sessions.Snapshot(id)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

type saveRequest struct {
	AccountID int64  `json:"account_id"`
	Slot      string `json:"slot"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.saves == nil {
		s.respondError(w, http.StatusServiceUnavailable, "persistence is not enabled")
		return
	}

	id := r.PathValue("id")
	var req saveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.AccountID <= 0 || req.Slot == "" {
		s.respondError(w, http.StatusBadRequest, "account_id and slot are required")
		return
	}

	st, err := s.sessions.StateCopy(id)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}

	sv, err := s.saves.Put(r.Context(), req.AccountID, req.Slot, st)
	if err != nil {
		s.logger.Error("writing save", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "writing save failed")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"slot":       sv.Slot,
		"updated_at": sv.UpdatedAt,
	})
}

type restoreRequest struct {
	AccountID int64  `json:"account_id"`
	Slot      string `json:"slot"`
	SessionID string `json:"session_id"`
}

// handleRestore builds a session from a save slot or, when no persistence
// is configured, from the snapshot cache.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if !s.decode(w, r, &req) {
		return
	}

	var st *player.State
	switch {
	case req.Slot != "":
		if s.saves == nil {
			s.respondError(w, http.StatusServiceUnavailable, "persistence is not enabled")
			return
		}
		sv, err := s.saves.Get(r.Context(), req.AccountID, req.Slot)
		if err != nil {
			if errors.Is(err, postgres.ErrSaveNotFound) {
				s.respondError(w, http.StatusNotFound, "save not found")
				return
			}
			s.logger.Error("reading save", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "reading save failed")
			return
		}
		st = sv.State
	case req.SessionID != "":
		if s.cache == nil {
			s.respondError(w, http.StatusServiceUnavailable, "snapshot cache is not enabled")
			return
		}
		snap, err := s.cache.Load(r.Context(), req.SessionID)
		if err != nil {
			if errors.Is(err, redis.ErrSnapshotNotFound) {
				s.respondError(w, http.StatusNotFound, "snapshot not found")
				return
			}
			s.logger.Error("loading snapshot", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "loading snapshot failed")
			return
		}
		st = snap
	default:
		s.respondError(w, http.StatusBadRequest, "slot or session_id is required")
		return
	}

	// A cached snapshot resumes under its original session ID; a save slot
	// starts a fresh session.
	var sess *session.Session
	if req.Slot == "" {
		var err error
		sess, err = s.sessions.Restore(req.SessionID, st)
		if err != nil {
			s.respondError(w, http.StatusConflict, "session is still active")
			return
		}
	} else {
		sess = s.sessions.CreateFrom(st)
	}
	s.logger.Info("session restored", zap.String("session_id", sess.ID))
	s.respondJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID,
		RoomID:    st.RoomID,
	})
}

func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Error("session operation failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) respondExecuteError(w http.ResponseWriter, sessionID string, err error) {
	var reqErr *engine.RequirementsNotMetError
	var fundsErr *player.InsufficientFundsError
	var itemsErr *player.InsufficientItemsError

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		s.respondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, engine.ErrActionNotFound):
		s.respondError(w, http.StatusNotFound, "action not found")
	case errors.As(err, &reqErr):
		s.respondError(w, http.StatusConflict, reqErr.Error())
	case errors.As(err, &fundsErr):
		s.respondError(w, http.StatusConflict, fundsErr.Error())
	case errors.As(err, &itemsErr):
		s.respondError(w, http.StatusConflict, itemsErr.Error())
	default:
		s.logger.Error("executing action",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		s.respondError(w, http.StatusInternalServerError, "executing action failed")
	}
}
