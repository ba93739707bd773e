package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bcnelson/maintenance-window-manager/internal/api/handler"
	"github.com/bcnelson/maintenance-window-manager/internal/api/middleware"
	"github.com/bcnelson/maintenance-window-manager/internal/service"
	"github.com/bcnelson/maintenance-window-manager/internal/storage"
)

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(
	store storage.Storage,
	windows *service.WindowService,
	cleanup handler.CleanupRunner,
	bootstrapKey string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes (auth required, JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(store, bootstrapKey))

		// API Keys
		keyHandler := handler.NewAPIKeyHandler(store)
		r.Post("/keys", keyHandler.Create)
		r.Get("/keys", keyHandler.List)
		r.Delete("/keys/{id}", keyHandler.Delete)

		// Maintenance windows
		windowHandler := handler.NewWindowHandler(windows)
		r.Get("/windows", windowHandler.List)
		r.Post("/windows", windowHandler.Create)
		r.Get("/windows/saves", windowHandler.Saves)
		r.Get("/windows/saves/{id}", windowHandler.Save)
		r.Get("/windows/{id}/entities", windowHandler.Entities)

		// Filter previews
		r.Post("/preview", windowHandler.Preview)
		r.Post("/preview/all", windowHandler.PreviewAll)
		r.Post("/selectors/compile", windowHandler.Compile)

		// Reference data
		lookupHandler := handler.NewLookupHandler(windows)
		r.Get("/entity-types", lookupHandler.EntityTypes)
		r.Get("/management-zones", lookupHandler.ManagementZones)
		r.Get("/entities/search", lookupHandler.SearchEntities)
		r.Post("/entities/names", lookupHandler.EntityNames)
		r.Post("/hosts/resolve", lookupHandler.ResolveHosts)
		r.Get("/catalog/timezones", lookupHandler.TimeZones)
		r.Get("/catalog/suppressions", lookupHandler.Suppressions)

		// Auto-tags
		autoTagHandler := handler.NewAutoTagHandler(cleanup)
		r.Post("/autotags/cleanup", autoTagHandler.Cleanup)
		r.Get("/autotags/cleanup", autoTagHandler.LastCleanup)
	})

	return r
}
