package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"alertaya/internal/httputil"
	"alertaya/internal/model"
	"alertaya/internal/service"
	"alertaya/internal/transport/http/middleware"
)

// UserHandler groups user endpoints.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Register handles POST /users/register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusCreated, map[string]*model.User{"user": user})
	case errors.Is(err, model.ErrValidation):
		httputil.WriteBadRequestWithCode(w, model.CodeValidation, err.Error())
	case errors.Is(err, model.ErrEmailExists):
		httputil.WriteConflict(w, "Email is already registered")
	default:
		log.Printf("[UserHandler] Register failed: %v", err)
		httputil.WriteInternalError(w, "Failed to register user")
	}
}

// List handles GET /users/.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		log.Printf("[UserHandler] List failed: %v", err)
		httputil.WriteInternalError(w, "Failed to list users")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.UserListResponse{Users: users})
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] Get failed: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch user")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}

// Update handles PUT /users/{id}. Users may only update themselves.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid user id")
		return
	}

	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok || callerID != id {
		httputil.WriteForbidden(w, "Cannot update another user")
		return
	}

	var req model.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Update(r.Context(), id, &req)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, map[string]*model.User{"user": user})
	case errors.Is(err, model.ErrValidation):
		httputil.WriteBadRequestWithCode(w, model.CodeValidation, err.Error())
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	default:
		log.Printf("[UserHandler] Update failed: %v", err)
		httputil.WriteInternalError(w, "Failed to update user")
	}
}

// RegisterToken handles POST /users/token.
func (h *UserHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Missing authentication")
		return
	}

	var req model.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.userService.RegisterDeviceToken(r.Context(), userID, req.FCMToken); err != nil {
		if errors.Is(err, model.ErrValidation) {
			httputil.WriteBadRequestWithCode(w, model.CodeValidation, "fcmToken is required")
			return
		}
		log.Printf("[UserHandler] RegisterToken failed: %v", err)
		httputil.WriteInternalError(w, "Failed to register token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "token registered"})
}
