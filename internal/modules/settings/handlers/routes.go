package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetUserSettings)
		r.Put("/", h.HandlePutUserSettings)
		r.Post("/positions/{position}/toggle", h.HandleTogglePosition)
		r.Put("/mode/{mode}", h.HandleSetMode)

		// Raw key/value access, including R2 credentials
		r.Get("/all", h.HandleGetAll)
		r.Put("/all/{key}", h.HandleUpdate)
	})
}
