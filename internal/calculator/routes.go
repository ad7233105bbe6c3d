package calculator

import (
	"github.com/go-chi/chi/v5"

	"gradecalc/internal/session"
)

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix. Only the wizard routes carry a session.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/predict", h.Predict)
		r.Post("/overall", h.Overall)
		r.Get("/scheme", h.Scheme)
		r.Get("/scheme/lookup", h.Lookup)
		r.Get("/schema/{name}", h.Schema)
		r.Post("/standing", h.Standing)
		r.Post("/standing/report", h.StandingReport)

		r.Route("/standing/wizard", func(r chi.Router) {
			r.Use(session.Middleware)
			r.Get("/", h.Wizard)
			r.Post("/submit", h.WizardSubmit)
			r.Post("/skip", h.WizardSkip)
			r.Post("/reset", h.WizardReset)
			r.Get("/report", h.WizardReport)
		})
	})
}
