package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gradecalc/internal/calculator"
	"gradecalc/internal/chat"
	"gradecalc/internal/handlers"
	"gradecalc/internal/observability"
)

// Deps are the domain handlers the router serves. Assistant may be nil, in
// which case /assistant is not mounted.
type Deps struct {
	Metrics    *observability.HTTPMetrics
	Calculator *calculator.Handler
	Assistant  *chat.Handler
}

func NewRouter(deps Deps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = observability.NewHTTPMetrics()
	}

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(deps.Metrics.Middleware)
	r.Use(observability.LoggingMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", deps.Metrics.Handler())

	calculator.RegisterRoutes(r, deps.Calculator)
	if deps.Assistant != nil {
		chat.RegisterRoutes(r, deps.Assistant)
	}

	return r
}
