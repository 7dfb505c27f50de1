package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/righthome-ai/property-copilot/internal/catalog"
)

// ListingHandler serves the read-only catalog.
type ListingHandler struct {
	catalog *catalog.Store
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(c *catalog.Store) *ListingHandler {
	return &ListingHandler{catalog: c}
}

// List handles GET /api/v1/listings
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings := h.catalog.List()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"listings": listings,
		"total":    len(listings),
		"version":  h.catalog.Version(),
	})
}

// Get handles GET /api/v1/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing ID")
		return
	}

	listing, err := h.catalog.Get(id)
	if errors.Is(err, catalog.ErrListingNotFound) {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, listing)
}
