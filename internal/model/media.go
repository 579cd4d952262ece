package model

import (
	"errors"
	"time"
)

// Media package types
const (
	MediaTypeAvatar       = "avatar"
	MediaTypeAdvertising  = "advertising"
	MediaTypeNeighborhood = "neighborhood"
)

// Avatar upload constraints
const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	ContentTypeJPEG    = "image/jpeg"
	AvatarCacheControl = "public, max-age=31536000"
)

// MediaPackage is a curated media asset (avatar choices, ads,
// neighborhood imagery) served to the app.
type MediaPackage struct {
	ID        int64     `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	Name      string    `db:"name" json:"name"`
	URL       string    `db:"url" json:"url"`
	Status    bool      `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MediaPackageListResponse is the envelope for GET /media/packages/list
type MediaPackageListResponse struct {
	Packages []MediaPackage `json:"packages"`
}

// UploadResult holds the stored object location after an upload.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

var (
	// ErrFileTooLarge is returned when an upload exceeds the size limit
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidImageType is returned for unsupported image content types
	ErrInvalidImageType = errors.New("invalid image type")
)
