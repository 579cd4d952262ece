package model

import "errors"

// ErrValidation marks malformed input caught before any storage or
// network work. Wrap it with the offending field name.
var ErrValidation = errors.New("validation failed")

// Machine-readable error codes used alongside HTTP status codes
const (
	CodeTokenExpired     = "TOKEN_EXPIRED"
	CodeTokenInvalid     = "TOKEN_INVALID"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
	CodeValidation       = "VALIDATION_ERROR"
)
