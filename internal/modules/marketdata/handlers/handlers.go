// Package handlers provides HTTP handlers for stock quotes and history.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/modules/marketdata"
	"github.com/stockpro/stockpro/internal/web"
)

// Handler handles market data HTTP requests
type Handler struct {
	service *marketdata.Service
	log     zerolog.Logger
}

// NewHandler creates a new market data handler
func NewHandler(service *marketdata.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "marketdata").Logger(),
	}
}

// HandleListSymbols returns every symbol with ingested data.
func (h *Handler) HandleListSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.service.TrackedSymbols()
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	if symbols == nil {
		symbols = []string{}
	}

	web.JSON(w, h.log, http.StatusOK, symbols)
}

// HandleGetQuote returns the latest stored bar for a symbol.
func (h *Handler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.GetQuote(chi.URLParam(r, "symbol"))
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, quote)
}

// HandleGetHistory returns stored bars for a symbol, most recent first.
// ?limit= caps the series length.
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	bars, err := h.service.GetHistory(chi.URLParam(r, "symbol"), limit)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	if bars == nil {
		bars = []marketdata.StockBar{}
	}

	web.JSON(w, h.log, http.StatusOK, bars)
}
