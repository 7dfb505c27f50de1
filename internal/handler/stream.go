package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/righthome-ai/property-copilot/internal/middleware"
	"github.com/righthome-ai/property-copilot/internal/model"
	"github.com/righthome-ai/property-copilot/internal/service"
	"github.com/righthome-ai/property-copilot/pkg/logger"
	"github.com/righthome-ai/property-copilot/pkg/metrics"
)

// StreamHandler runs a turn and delivers its parts as server-sent events.
type StreamHandler struct {
	turns  *service.TurnService
	logger *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(turns *service.TurnService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		turns:  turns,
		logger: log,
	}
}

// StreamTurn handles POST /api/v1/sessions/{id}/stream
// Emits profile, one recommendation per match, reply, then done (or error).
func (h *StreamHandler) StreamTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
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

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	resp, err := h.turns.Run(ctx, middleware.GetUserID(ctx), id, req.Utterance)
	if err != nil {
		status, msg := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("streamed turn failed", zap.String("session_id", id), zap.Error(err))
		}
		sendSSEEvent(w, flusher, model.EventTypeError, &model.ErrorEvent{
			Code:    http.StatusText(status),
			Message: msg,
		})
		return
	}

	events := []sseEvent{{model.EventTypeProfile, &model.ProfileEvent{
		Profile:       resp.UpdatedRequirementMap,
		Summary:       resp.UpdatedRequirementMap.Summary(),
		MissingFields: resp.MissingFields,
	}}}
	for i, m := range resp.Recommendations {
		events = append(events, sseEvent{model.EventTypeRecommendation, &model.RecommendationEvent{Rank: i + 1, Match: m}})
	}
	events = append(events,
		sseEvent{model.EventTypeReply, &model.ReplyEvent{
			Response:            resp.Response,
			QuickReplies:        resp.QuickReplies,
			ShowScheduleOptions: resp.ShowScheduleOptions,
		}},
		sseEvent{model.EventTypeDone, &model.DoneEvent{
			SessionID:        resp.SessionID,
			TurnID:           resp.TurnID,
			Stage:            resp.UpdatedStage,
			PhrasingFallback: resp.PhrasingFallback,
		}},
	)

	for _, ev := range events {
		if ctx.Err() != nil {
			return
		}
		if err := sendSSEEvent(w, flusher, ev.typ, ev.data); err != nil {
			h.logger.Warn("failed to write SSE event", zap.String("session_id", id), zap.Error(err))
			return
		}
	}
}

type sseEvent struct {
	typ  model.EventType
	data interface{}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event model.EventType, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
