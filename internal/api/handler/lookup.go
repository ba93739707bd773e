package handler

import (
	"net/http"
	"strings"

	"github.com/bcnelson/maintenance-window-manager/internal/catalog"
	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/service"
	"github.com/bcnelson/maintenance-window-manager/internal/validation"
)

// LookupHandler serves the reference data used to build filters.
type LookupHandler struct {
	windows *service.WindowService
}

// NewLookupHandler creates a new LookupHandler.
func NewLookupHandler(windows *service.WindowService) *LookupHandler {
	return &LookupHandler{windows: windows}
}

// EntityNamesRequest lists entity IDs to resolve.
type EntityNamesRequest struct {
	IDs []string `json:"ids"`
}

// EntityTypes lists the selectable entity types.
func (h *LookupHandler) EntityTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.windows.ListEntityTypes(r.Context()))
}

// ManagementZones lists management zones by name.
func (h *LookupHandler) ManagementZones(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.windows.ListManagementZones(r.Context()))
}

// SearchEntities finds entities by type and partial name.
func (h *LookupHandler) SearchEntities(w http.ResponseWriter, r *http.Request) {
	entityType := strings.TrimSpace(r.URL.Query().Get("type"))
	term := r.URL.Query().Get("q")

	if entityType != "" {
		if err := validation.ValidateEntityType(entityType); err != nil {
			handleError(w, validation.NewValidationError("type", entityType, err.Error()))
			return
		}
	}

	respondJSON(w, http.StatusOK, h.windows.SearchEntities(r.Context(), entityType, term))
}

// EntityNames resolves entity IDs to display names.
func (h *LookupHandler) EntityNames(w http.ResponseWriter, r *http.Request) {
	var req EntityNamesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body")
		return
	}

	respondJSON(w, http.StatusOK, h.windows.ResolveEntityNames(r.Context(), req.IDs))
}

// ResolveHosts runs the bulk host flow. When no host resolves the response
// is an error carrying the names that were not found.
func (h *LookupHandler) ResolveHosts(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkHostsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body")
		return
	}

	resp, err := h.windows.BulkHosts(r.Context(), req)
	if err != nil {
		if resp != nil {
			respondErrorDetails(w, http.StatusUnprocessableEntity, domain.ErrCodeNoHostsFound,
				domain.ErrNoHostsFound.Error(), map[string]any{"invalid": resp.Invalid})
			return
		}
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// TimeZones lists the selectable time zones.
func (h *LookupHandler) TimeZones(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.TimeZoneOptions())
}

// Suppressions lists the suppression modes.
func (h *LookupHandler) Suppressions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.SuppressionOptions)
}
