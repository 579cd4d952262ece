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

// EntityHandler groups safety-entity endpoints.
type EntityHandler struct {
	entityService *service.EntityService
}

func NewEntityHandler(entityService *service.EntityService) *EntityHandler {
	return &EntityHandler{entityService: entityService}
}

// List handles GET /entity/.
func (h *EntityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	entities, err := h.entityService.List(r.Context(), userID)
	if err != nil {
		log.Printf("[EntityHandler] List failed: %v", err)
		httputil.WriteInternalError(w, "Failed to list entities")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.EntityListResponse{Entities: entities})
}

// Petition handles POST /entity/petition.
func (h *EntityHandler) Petition(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSubscription(w, r)
	if !ok {
		return
	}

	err := h.entityService.Subscribe(r.Context(), req.EntityID, req.UserID)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "subscribed"})
	case errors.Is(err, model.ErrEntityNotFound):
		httputil.WriteNotFound(w, "Entity not found")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	case errors.Is(err, model.ErrSubscriptionLimit):
		httputil.WriteForbidden(w, "Subscription limit reached")
	case errors.Is(err, model.ErrAlreadySubscribed):
		httputil.WriteConflict(w, "Already subscribed")
	default:
		log.Printf("[EntityHandler] Petition failed: %v", err)
		httputil.WriteInternalError(w, "Failed to subscribe")
	}
}

// Unsubscribe handles POST /entity/unsubscribe.
func (h *EntityHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSubscription(w, r)
	if !ok {
		return
	}

	err := h.entityService.Unsubscribe(r.Context(), req.EntityID, req.UserID)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
	case errors.Is(err, model.ErrEntityNotFound):
		httputil.WriteNotFound(w, "Entity not found")
	default:
		log.Printf("[EntityHandler] Unsubscribe failed: %v", err)
		httputil.WriteInternalError(w, "Failed to unsubscribe")
	}
}

// decodeSubscription parses the shared petition/unsubscribe body and pins
// the userId to the authenticated caller.
func (h *EntityHandler) decodeSubscription(w http.ResponseWriter, r *http.Request) (*model.SubscriptionRequest, bool) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication")
		return nil, false
	}

	var req model.SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return nil, false
	}
	if req.EntityID == 0 {
		httputil.WriteBadRequestWithCode(w, model.CodeValidation, "entityId is required")
		return nil, false
	}
	if req.UserID != callerID {
		httputil.WriteForbidden(w, "Cannot manage another user's subscriptions")
		return nil, false
	}
	return &req, true
}
