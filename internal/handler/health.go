package handler

import (
	"context"
	"net/http"
	"time"
)

// Checker reports whether a dependency is usable.
type Checker interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	catalogSize int
	checks      map[string]Checker
}

// NewHealthHandler creates a new health handler. checks names the optional
// dependencies (sessions, nats) that /ready probes.
func NewHealthHandler(catalogSize int, checks map[string]Checker) *HealthHandler {
	return &HealthHandler{
		catalogSize: catalogSize,
		checks:      checks,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			deps[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	writeJSON(w, status, map[string]interface{}{
		"status":       state,
		"catalog_size": h.catalogSize,
		"dependencies": deps,
	})
}
