package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trainer routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/trainer", func(r chi.Router) {
		r.Get("/next", h.HandleNext)
		r.Post("/answer", h.HandleAnswer)
	})

	r.Route("/strategy", func(r chi.Router) {
		r.Get("/", h.HandleGetStrategy)
		r.Get("/{position}", h.HandleGetChart)
		r.Get("/{position}/{hand}", h.HandleEvaluate)
	})

	r.Get("/srs/due", h.HandleGetDue)
	r.Get("/stats", h.HandleGetStats)
	r.Get("/history", h.HandleGetHistory)
	r.Delete("/progress", h.HandleResetProgress)
}
