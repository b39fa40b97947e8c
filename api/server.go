/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     request logging
  2. Recoverer:  panic recovery (500 instead of crash)
  3. RequestID:  unique ID per request for tracing
  4. CORS:       cross-origin requests for the operations frontend

ROUTE GROUPS:
  /api/calculate          pure calculation, nothing persisted
  /api/launches/*         record creation and workflow transitions
  /api/workers/*          reconciled history and monthly summaries
  /api/catalog/*          reference tables
  /api/kpis/available     eligibility lookup for a function/shift
  /api/tasks/preview      task-export dry run
  /metrics                prometheus

SECURITY NOTE:
  No authentication middleware; identity and authorization come from
  the upstream gateway that fronts this service.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/calculate", h.Calculate)

		r.Route("/launches", func(r chi.Router) {
			r.Post("/", h.CreateLaunch)
			r.Get("/{id}", h.GetLaunch)
			r.Put("/{id}", h.EditLaunch)
			r.Post("/{id}/approve", h.ApproveLaunch)
			r.Post("/{id}/reject", h.RejectLaunch)
		})

		r.Route("/workers", func(r chi.Router) {
			r.Get("/{id}/launches", h.ListLaunches)
			r.Get("/{id}/summary", h.GetSummary)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/activities", h.ListActivities)
			r.Get("/kpis", h.ListKPIs)
			r.Get("/task-types", h.ListTaskTypes)
		})

		r.Get("/kpis/available", h.AvailableKPIs)
		r.Post("/tasks/preview", h.PreviewTasks)
		r.Post("/seed", h.Seed)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
