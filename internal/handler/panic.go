package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"alertaya/internal/httputil"
	"alertaya/internal/model"
	"alertaya/internal/service"
	"alertaya/internal/transport/http/middleware"
)

// PanicHandler exposes the panic alert intake endpoint.
type PanicHandler struct {
	alertService *service.AlertService
}

func NewPanicHandler(alertService *service.AlertService) *PanicHandler {
	return &PanicHandler{alertService: alertService}
}

// Alert handles POST /panic/alerta. The body carries
// {"coordinates": ["<longitude>", "<latitude>"]}, longitude first.
func (h *PanicHandler) Alert(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication")
		return
	}

	var req model.AlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	alert, err := h.alertService.Raise(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCoordinates) {
			httputil.WriteBadRequestWithCode(w, model.CodeValidation, "coordinates must be [longitude, latitude]")
			return
		}
		log.Printf("[PanicHandler] Alert failed: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to raise alert")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.AlertResponse{
		ID:        alert.ID,
		CreatedAt: alert.CreatedAt,
	})
}

// History handles GET /panic/history.
func (h *PanicHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication")
		return
	}

	alerts, err := h.alertService.History(r.Context(), userID, 20)
	if err != nil {
		log.Printf("[PanicHandler] History failed: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to fetch alerts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string][]model.Alert{"alerts": alerts})
}
