// Package handlers provides HTTP handlers for saved cards and card
// payments.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/payments"
	"github.com/stockpro/stockpro/internal/web"
)

// Handler handles payment HTTP requests
type Handler struct {
	service *payments.Service
	log     zerolog.Logger
}

// NewHandler creates a new payments handler
func NewHandler(service *payments.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "payments").Logger(),
	}
}

// HandleSaveCard stores a card for the authenticated user.
func (h *Handler) HandleSaveCard(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	var req payments.CardRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	card, err := h.service.SaveCard(principal.UserID, req)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusCreated, card)
}

// HandleListCards returns the user's saved cards.
func (h *Handler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	cards, err := h.service.ListCards(principal.UserID)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	if cards == nil {
		cards = []payments.SavedCard{}
	}

	web.JSON(w, h.log, http.StatusOK, cards)
}

// HandleDeleteCard removes one of the user's saved cards.
func (h *Handler) HandleDeleteCard(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	cardID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		web.Error(w, h.log, domain.Validationf("card ID must be a number"))
		return
	}

	if err := h.service.DeleteCard(principal.UserID, cardID); err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleProcessPayment runs the simulated card payment flow.
func (h *Handler) HandleProcessPayment(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	var req payments.PaymentRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	result, err := h.service.ProcessCardPayment(principal.UserID, req)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusCreated, result)
}
