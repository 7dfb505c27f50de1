// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/righthome-ai/property-copilot/internal/engine"
	"github.com/righthome-ai/property-copilot/internal/middleware"
	"github.com/righthome-ai/property-copilot/internal/model"
	"github.com/righthome-ai/property-copilot/internal/service"
	"github.com/righthome-ai/property-copilot/pkg/logger"
)

// SessionHandler handles session and turn endpoints.
type SessionHandler struct {
	sessions *service.SessionService
	turns    *service.TurnService
	logger   *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions *service.SessionService, turns *service.TurnService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		turns:    turns,
		logger:   log,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	resp, err := h.sessions.Create(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	sess, err := h.sessions.Get(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &model.SessionSummaryResponse{
		Session: sess,
		Summary: sess.Profile.Summary(),
	})
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Turn handles POST /api/v1/sessions/{id}/turns
func (h *SessionHandler) Turn(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req model.TurnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateUtterance(req.Utterance); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.turns.Run(r.Context(), middleware.GetUserID(r.Context()), id, req.Utterance)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// StatelessTurn handles POST /api/v1/turn. The caller carries profile and stage.
func (h *SessionHandler) StatelessTurn(w http.ResponseWriter, r *http.Request) {
	var req model.StatelessTurnRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateUtterance(req.Utterance); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateProfile(req.Profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.turns.RunStateless(r.Context(), engine.Input{
		Utterance: req.Utterance,
		Profile:   req.Profile,
		Stage:     req.Stage,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Schedule handles POST /api/v1/sessions/{id}/schedule
func (h *SessionHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req model.ScheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.turns.Schedule(r.Context(), middleware.GetUserID(r.Context()), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transcript handles GET /api/v1/sessions/{id}/transcript?after_sequence=N&limit=N
func (h *SessionHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var afterSequence uint64
	if seq := r.URL.Query().Get("after_sequence"); seq != "" {
		if parsed, err := strconv.ParseUint(seq, 10, 64); err == nil {
			afterSequence = parsed
		}
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	resp, err := h.turns.Transcript(r.Context(), middleware.GetUserID(r.Context()), id, afterSequence, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error("request failed",
			zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
	}
	writeError(w, status, msg)
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}
