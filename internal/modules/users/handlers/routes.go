package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterPublicRoutes registers the unauthenticated auth endpoints
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.HandleRegister)
		r.Post("/login", h.HandleLogin)
		r.Post("/google", h.HandleGoogleLogin)
	})
}

// RegisterRoutes registers the authenticated profile endpoints
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/me", h.HandleGetProfile)
		r.Put("/me", h.HandleCompleteProfile)
	})
}
