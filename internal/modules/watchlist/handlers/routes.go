package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all watchlist routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/watchlists", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Delete("/{id}", h.HandleDelete)

		r.Route("/{id}/stocks", func(r chi.Router) {
			r.Post("/", h.HandleAddSymbol)
			r.Get("/", h.HandleListSymbols)
			r.Delete("/{symbol}", h.HandleRemoveSymbol)
		})
	})
}
