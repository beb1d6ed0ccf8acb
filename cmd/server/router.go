package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/owlingo/owlingo-api/internal/api"
	apiMiddleware "github.com/owlingo/owlingo-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	generationHandler := api.NewGenerationHandler(app.coordinator, app.logger)
	usageHandler := api.NewUsageHandler(app.limiter, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", generationHandler.Generate)
		r.Post("/generate/mix", generationHandler.GenerateMix)
		r.Get("/usage/{teacher_id}", usageHandler.GetUsage)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
