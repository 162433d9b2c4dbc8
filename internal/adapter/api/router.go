package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/user/storesync/internal/adapter/api/handler"
	"github.com/user/storesync/internal/adapter/api/middleware"
	"github.com/user/storesync/internal/domain"
)

// NewRouter assembles the public API. Everything under /api/v1 requires
// an API key.
func NewRouter(syncHandler *handler.SyncHandler, jobHandler *handler.JobHandler, keys domain.APIKeyRepository, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(keys, logger))

		r.Post("/sync/{tenantID}/{kind}", syncHandler.Trigger)
		r.Get("/sync/{tenantID}/status", syncHandler.Status)
		r.Get("/sync/{tenantID}/runs", syncHandler.Runs)

		r.Get("/jobs", jobHandler.List)
		r.Post("/jobs/{tenantID}/{kind}", jobHandler.Register)
		r.Delete("/jobs/{tenantID}/{kind}", jobHandler.Deregister)
	})

	return r
}
