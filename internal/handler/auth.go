package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"alertaya/internal/httputil"
	"alertaya/internal/model"
	"alertaya/internal/service"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		log.Printf("[AuthHandler] Login failed: %v", err)
		httputil.WriteInternalError(w, "Login failed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// UpdatePassword handles PUT /auth/update-password.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req model.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.CurrentPassword == "" || len(req.NewPassword) < 8 {
		httputil.WriteBadRequestWithCode(w, model.CodeValidation, "Email, current password and a new password of at least 8 characters are required")
		return
	}

	err := h.authService.UpdatePassword(r.Context(), &req)
	switch {
	case err == nil:
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
	case errors.Is(err, model.ErrInvalidCredentials):
		httputil.WriteUnauthorized(w, "Current password is incorrect")
	case errors.Is(err, model.ErrUserNotFound):
		httputil.WriteNotFound(w, "User not found")
	default:
		log.Printf("[AuthHandler] UpdatePassword failed: %v", err)
		httputil.WriteInternalError(w, "Failed to update password")
	}
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Don't disclose whether the address is registered
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset requested"})
			return
		}
		log.Printf("[AuthHandler] ResetPassword failed: %v", err)
		httputil.WriteInternalError(w, "Failed to reset password")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset requested"})
}

// PetitionReset handles POST /notify/petition-reset.
func (h *AuthHandler) PetitionReset(w http.ResponseWriter, r *http.Request) {
	var req model.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}

	if err := h.authService.RequestPetitionReset(r.Context(), req.Email); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[AuthHandler] PetitionReset failed: %v", err)
		httputil.WriteInternalError(w, "Failed to submit petition")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "petition submitted"})
}
