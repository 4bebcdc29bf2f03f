package handlers

import (
	"github.com/go-chi/chi"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Route("/api/games", func(r chi.Router) {
		r.Get("/crearJuego", h.CreateGameHandler)
		r.Post("/enviarSecuencia", h.SubmitSequenceHandler)
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)
	})
}
