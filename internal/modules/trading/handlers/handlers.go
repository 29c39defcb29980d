// Package handlers provides HTTP handlers for trade execution and history.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/trading"
	"github.com/stockpro/stockpro/internal/web"
)

// Handler handles trading HTTP requests
type Handler struct {
	service *trading.Service
	log     zerolog.Logger
}

// NewHandler creates a new trading handler
func NewHandler(service *trading.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "trading").Logger(),
	}
}

// HandleExecuteTrade executes a buy or sell order for the authenticated
// user.
func (h *Handler) HandleExecuteTrade(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	var req trading.TradeRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	trade, err := h.service.ExecuteTrade(principal.UserID, req)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusCreated, trade)
}

// HandleListTrades returns the user's trade history, optionally filtered
// by ?symbol=.
func (h *Handler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	trades, err := h.service.History(principal.UserID, r.URL.Query().Get("symbol"))
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	if trades == nil {
		trades = []trading.Trade{}
	}

	web.JSON(w, h.log, http.StatusOK, trades)
}
