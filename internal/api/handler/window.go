package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bcnelson/maintenance-window-manager/internal/api/middleware"
	"github.com/bcnelson/maintenance-window-manager/internal/domain"
	"github.com/bcnelson/maintenance-window-manager/internal/merger"
	"github.com/bcnelson/maintenance-window-manager/internal/selector"
	"github.com/bcnelson/maintenance-window-manager/internal/service"
	"github.com/bcnelson/maintenance-window-manager/internal/validation"
)

// WindowHandler handles maintenance window endpoints.
type WindowHandler struct {
	windows *service.WindowService
}

// NewWindowHandler creates a new WindowHandler.
func NewWindowHandler(windows *service.WindowService) *WindowHandler {
	return &WindowHandler{windows: windows}
}

// List returns every maintenance window.
func (h *WindowHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.windows.ListWindows(r.Context()))
}

// Create saves a maintenance window signed by the calling key.
func (h *WindowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.SaveWindowRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body")
		return
	}

	resp, err := h.windows.Save(r.Context(), req, middleware.AuthorFromContext(r.Context()))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// Entities returns the entities a stored window covers.
func (h *WindowHandler) Entities(w http.ResponseWriter, r *http.Request) {
	entities, err := h.windows.WindowEntities(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entities)
}

// Saves lists the local save history.
func (h *WindowHandler) Saves(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		handleError(w, err)
		return
	}

	records, err := h.windows.ListSaves(r.Context(), limit, offset)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// Save returns one save record.
func (h *WindowHandler) Save(w http.ResponseWriter, r *http.Request) {
	record, err := h.windows.GetSave(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// PreviewAllRequest is the request body for previewing several filters.
type PreviewAllRequest struct {
	Filters []domain.EntityFilter `json:"filters"`
}

// CompileResponse lists the selectors compiled for one filter.
type CompileResponse struct {
	Selectors   []domain.CompiledSelector `json:"selectors"`
	EntityTypes []string                  `json:"entityTypes"`
}

// Preview returns the entities matched by one filter. Empty filters match nothing.
func (h *WindowHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var filter domain.EntityFilter
	if err := decodeJSON(r, &filter); err != nil {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if errs := previewErrors(0, filter); errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	respondJSON(w, http.StatusOK, h.windows.Preview(r.Context(), filter))
}

// PreviewAll returns the entities matched by any of the filters.
func (h *WindowHandler) PreviewAll(w http.ResponseWriter, r *http.Request) {
	var req PreviewAllRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body")
		return
	}

	var errs validation.ValidationErrors
	for i, f := range req.Filters {
		errs = append(errs, previewErrors(i, f)...)
	}
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	respondJSON(w, http.StatusOK, h.windows.PreviewAll(r.Context(), req.Filters))
}

// Compile returns the selectors a filter compiles to, without querying.
// Repeated entities yield repeated selectors.
func (h *WindowHandler) Compile(w http.ResponseWriter, r *http.Request) {
	var filter domain.EntityFilter
	if err := decodeJSON(r, &filter); err != nil {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if !filter.IsNonEmpty() {
		handleError(w, domain.ErrEmptyFilter)
		return
	}
	if errs := validation.ValidateFilter(0, filter); errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	selectors := selector.Compile(filter)
	respondJSON(w, http.StatusOK, &CompileResponse{
		Selectors:   selectors,
		EntityTypes: merger.EntityTypes(selectors),
	})
}

// previewErrors validates a filter for preview. Empty filters are allowed
// and simply match nothing.
func previewErrors(index int, filter domain.EntityFilter) validation.ValidationErrors {
	if !filter.IsNonEmpty() {
		return nil
	}
	return validation.ValidateFilter(index, filter)
}
