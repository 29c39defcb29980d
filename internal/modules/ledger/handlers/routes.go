package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all balance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/balance", func(r chi.Router) {
		r.Get("/", h.HandleGetBalance)
		r.Post("/add", h.HandleAddFunds)
		r.Post("/withdraw", h.HandleWithdrawFunds)
	})
	r.Get("/transactions", h.HandleListTransactions)
}
