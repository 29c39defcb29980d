// Package handlers provides HTTP handlers for the portfolio view.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/portfolio"
	"github.com/stockpro/stockpro/internal/web"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetPortfolio returns the user's holdings enriched with latest
// prices and aggregate totals.
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	summary, err := h.service.GetPortfolio(principal.UserID)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, summary)
}

// HandleGetPosition returns one enriched holding.
func (h *Handler) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	position, err := h.service.GetPosition(principal.UserID, chi.URLParam(r, "symbol"))
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, position)
}
