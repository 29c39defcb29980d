package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all OTP routes. These stay outside the auth
// middleware so verification can happen during signup.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/otp", func(r chi.Router) {
		r.Post("/mobile/send", h.HandleSendMobileCode)
		r.Post("/mobile/verify", h.HandleVerifyMobileCode)
		r.Post("/email/send", h.HandleSendEmailCode)
		r.Post("/email/verify", h.HandleVerifyEmailCode)
	})
}
