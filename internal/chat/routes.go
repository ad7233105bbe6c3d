package chat

import (
	"github.com/go-chi/chi/v5"

	"gradecalc/internal/session"
)

// RegisterRoutes mounts the assistant endpoints under /assistant.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/assistant", func(r chi.Router) {
		r.Use(session.Middleware)
		r.Post("/ask", h.Ask)
		r.Get("/history", h.History)
		r.Delete("/history", h.ClearHistory)
	})
}
