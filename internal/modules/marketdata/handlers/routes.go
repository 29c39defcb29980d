package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all market data routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stocks", func(r chi.Router) {
		r.Get("/", h.HandleListSymbols)
		r.Get("/{symbol}/quote", h.HandleGetQuote)
		r.Get("/{symbol}/history", h.HandleGetHistory)
	})
}
