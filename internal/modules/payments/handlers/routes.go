package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all payment routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cards", func(r chi.Router) {
		r.Post("/", h.HandleSaveCard)
		r.Get("/", h.HandleListCards)
		r.Delete("/{id}", h.HandleDeleteCard)
	})
	r.Post("/payments", h.HandleProcessPayment)
}
