package handler

import (
	"log"
	"net/http"

	"alertaya/internal/httputil"
	"alertaya/internal/model"
	"alertaya/internal/repository"
)

// NeighborhoodHandler serves the neighborhood catalog.
type NeighborhoodHandler struct {
	repo repository.NeighborhoodRepository
}

func NewNeighborhoodHandler(repo repository.NeighborhoodRepository) *NeighborhoodHandler {
	return &NeighborhoodHandler{repo: repo}
}

// List handles GET /neighborhood/all-neighborhood.
func (h *NeighborhoodHandler) List(w http.ResponseWriter, r *http.Request) {
	neighborhoods, err := h.repo.List(r.Context())
	if err != nil {
		log.Printf("[NeighborhoodHandler] List failed: %v", err)
		httputil.WriteInternalError(w, "Failed to list neighborhoods")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.NeighborhoodListResponse{Neighborhoods: neighborhoods})
}
