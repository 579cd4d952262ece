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

// ContactHandler groups emergency-contact endpoints.
type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// List handles GET /contacts/all-contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication")
		return
	}

	contacts, err := h.contactService.List(r.Context(), userID)
	if err != nil {
		log.Printf("[ContactHandler] List failed: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to list contacts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ContactListResponse{Contacts: contacts})
}

// Register handles POST /contacts/register.
func (h *ContactHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication")
		return
	}

	var req model.RegisterContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	contact, err := h.contactService.Register(r.Context(), userID, &req)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusCreated, map[string]*model.Contact{"contact": contact})
	case errors.Is(err, model.ErrValidation):
		httputil.WriteBadRequestWithCode(w, model.CodeValidation, err.Error())
	case errors.Is(err, model.ErrSelfContact):
		httputil.WriteBadRequest(w, "Cannot add yourself as a contact")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "Contact user not found")
	case errors.Is(err, model.ErrContactExists):
		httputil.WriteConflict(w, "Contact already registered")
	default:
		log.Printf("[ContactHandler] Register failed: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to register contact")
	}
}
