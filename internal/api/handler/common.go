package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bcnelson/maintenance-window-manager/internal/api/middleware"
	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/validation"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

// respondError writes a standard JSON error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &domain.StandardErrorResponse{
		Error: domain.StandardError{Code: code, Message: message},
	})
}

// respondErrorDetails writes a standard JSON error response with details.
func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	respondJSON(w, status, &domain.StandardErrorResponse{
		Error: domain.StandardError{Code: code, Message: message, Details: details},
	})
}

// handleError converts domain errors to HTTP errors.
func handleError(w http.ResponseWriter, err error) {
	var verrs validation.ValidationErrors
	var verr *validation.ValidationError

	switch {
	case errors.As(err, &verrs):
		respondValidationErrors(w, verrs)
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, &domain.StandardErrorResponse{
			Error: domain.StandardError{Code: domain.ErrCodeValidationError, Message: verr.Message, Field: verr.Field},
		})
	case errors.Is(err, domain.ErrEmptyFilter):
		respondError(w, http.StatusBadRequest, domain.ErrCodeValidationError, domain.ErrEmptyFilter.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, domain.ErrCodeResourceNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(w, http.StatusConflict, domain.ErrCodeResourceAlreadyExists, "already exists")
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid input")
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrNoHostsFound):
		respondError(w, http.StatusUnprocessableEntity, domain.ErrCodeNoHostsFound, domain.ErrNoHostsFound.Error())
	case errors.Is(err, domain.ErrAutoTagFailed):
		respondError(w, http.StatusBadGateway, domain.ErrCodeAutoTagFailed, domain.ErrAutoTagFailed.Error())
	case errors.Is(err, domain.ErrSaveFailed):
		respondError(w, http.StatusBadGateway, domain.ErrCodeSaveFailed, err.Error())
	default:
		log.Error().Err(err).Msg("unhandled request error")
		respondError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, "internal server error")
	}
}

// respondValidationErrors writes a JSON response for multiple validation errors.
func respondValidationErrors(w http.ResponseWriter, errs validation.ValidationErrors) {
	message := "validation failed"
	if len(errs) > 0 {
		message = errs[0].Message
	}
	respondErrorDetails(w, http.StatusBadRequest, domain.ErrCodeValidationError, message, map[string]any{
		"errors": errs,
		"fields": errs.Fields(),
	})
}

// decodeJSON decodes JSON from request body.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// pagination reads limit and offset query parameters.
func pagination(r *http.Request) (limit, offset int, err error) {
	limit, offset = defaultListLimit, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 || limit > maxListLimit {
			return 0, 0, validation.NewValidationError("limit", v, "limit must be between 1 and 500")
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, validation.NewValidationError("offset", v, "offset must be zero or positive")
		}
	}
	return limit, offset, nil
}

// generateID generates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// generateAPIKey generates a new random API key.
func generateAPIKey() (key string, hash string, prefix string, err error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", "", err
	}

	key = "mwm_" + hex.EncodeToString(bytes)
	hash = middleware.HashAPIKey(key)
	prefix = key[:12] // "mwm_" + first 8 hex chars

	return key, hash, prefix, nil
}
