package routes

import (
	"github.com/avvvet/pokesimon-services/internal/socketsvc/handlers"
	"github.com/avvvet/pokesimon-services/internal/socketsvc/ws"
	"github.com/go-chi/chi"
)

func SetRoutes(r chi.Router, ws *ws.Ws, allowedOrigins []string) {
	h := handlers.NewHandler(ws, allowedOrigins)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/ws", h.HandleWebSocket)
		r.Get("/health", h.HealthHandler)
	})
}
