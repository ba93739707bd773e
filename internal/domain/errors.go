package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrEmptyFilter   = errors.New("entity filter must contain at least one management zone, tag, or entity")
	ErrNoHostsFound  = errors.New("could not find any of the hosts entered")
	ErrAutoTagFailed = errors.New("failed to create auto-tagging rule, the maintenance window was not created")
	ErrSaveFailed    = errors.New("failed to create maintenance window")
)

// Error codes for standardized API error responses.
const (
	ErrCodeResourceNotFound      = "RESOURCE_NOT_FOUND"
	ErrCodeResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeValidationError       = "VALIDATION_ERROR"
	ErrCodeNoHostsFound          = "NO_HOSTS_FOUND"
	ErrCodeAutoTagFailed         = "AUTO_TAG_FAILED"
	ErrCodeSaveFailed            = "SAVE_FAILED"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// StandardError represents a standardized error response from the API.
type StandardError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StandardErrorResponse wraps a StandardError for JSON responses.
type StandardErrorResponse struct {
	Error StandardError `json:"error"`
}
