package handler

import (
	"errors"
	"log"
	"net/http"

	"alertaya/internal/httputil"
	"alertaya/internal/model"
	"alertaya/internal/service"
)

// MediaHandler serves the media package catalog and avatar uploads.
type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// ListPackages handles GET /media/packages/list.
func (h *MediaHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.mediaService.ListPackages(r.Context())
	if err != nil {
		log.Printf("[MediaHandler] ListPackages failed: %v", err)
		httputil.WriteInternalError(w, "Failed to list media packages")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.MediaPackageListResponse{Packages: packages})
}

// UploadAvatar handles POST /media/avatar (multipart, field "avatar").
// Returns the stored URL; the client then sets it via PUT /users/{id}.
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "avatar file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			log.Printf("[MediaHandler] UploadAvatar failed: %v", err)
			httputil.WriteInternalError(w, "Failed to upload avatar")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, upload)
}
