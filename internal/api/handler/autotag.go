package handler

import (
	"context"
	"net/http"

	"github.com/bcnelson/maintenance-window-manager/internal/domain"
)

// CleanupRunner runs expired auto-tag cleanup passes.
type CleanupRunner interface {
	RunNow(ctx context.Context) (domain.CleanupReport, bool)
	LastReport() (domain.CleanupReport, bool)
}

// AutoTagHandler handles auto-tag maintenance endpoints.
type AutoTagHandler struct {
	cleanup CleanupRunner
}

// NewAutoTagHandler creates a new AutoTagHandler.
func NewAutoTagHandler(cleanup CleanupRunner) *AutoTagHandler {
	return &AutoTagHandler{cleanup: cleanup}
}

// Cleanup deletes expired auto-tags now.
func (h *AutoTagHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	report, ran := h.cleanup.RunNow(r.Context())
	if !ran {
		respondError(w, http.StatusConflict, domain.ErrCodeResourceAlreadyExists, "cleanup already running")
		return
	}
	if report.ScanFailed {
		respondErrorDetails(w, http.StatusBadGateway, domain.ErrCodeInternalError, "listing auto-tags failed", map[string]any{"report": report})
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// LastCleanup returns the most recent cleanup report.
func (h *AutoTagHandler) LastCleanup(w http.ResponseWriter, r *http.Request) {
	report, ok := h.cleanup.LastReport()
	if !ok {
		respondError(w, http.StatusNotFound, domain.ErrCodeResourceNotFound, "no cleanup has run yet")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
