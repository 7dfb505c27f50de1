package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/righthome-ai/property-copilot/internal/catalog"
	"github.com/righthome-ai/property-copilot/internal/schedule"
	"github.com/righthome-ai/property-copilot/internal/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// errorStatus maps service errors to a status and a client-safe message. Unknown
// errors become 500 without their text.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, catalog.ErrListingNotFound):
		return http.StatusNotFound, "listing not found"
	case errors.Is(err, service.ErrNotReadyToSchedule):
		return http.StatusConflict, "scheduling is available once you have shortlisted a property"
	case errors.Is(err, service.ErrTranscriptUnavailable):
		return http.StatusServiceUnavailable, "transcripts are not enabled"
	case errors.Is(err, schedule.ErrUnknownChannel):
		return http.StatusBadRequest, "channel must be one of whatsapp, calendly, call"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
