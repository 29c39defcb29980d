// Package handlers provides HTTP handlers for watchlist management.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/watchlist"
	"github.com/stockpro/stockpro/internal/web"
)

// Handler handles watchlist HTTP requests
type Handler struct {
	service *watchlist.Service
	log     zerolog.Logger
}

// NewHandler creates a new watchlist handler
func NewHandler(service *watchlist.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "watchlist").Logger(),
	}
}

// HandleCreate makes a new watchlist.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	wl, err := h.service.Create(principal.UserID, req.Name)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusCreated, wl)
}

// HandleList returns the user's watchlists.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	lists, err := h.service.List(principal.UserID)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	if lists == nil {
		lists = []watchlist.Watchlist{}
	}

	web.JSON(w, h.log, http.StatusOK, lists)
}

// HandleDelete removes a watchlist.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	principal, watchlistID, err := h.watchlistRef(r)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	if err := h.service.Delete(principal.UserID, watchlistID); err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleAddSymbol tracks a symbol on a watchlist.
func (h *Handler) HandleAddSymbol(w http.ResponseWriter, r *http.Request) {
	principal, watchlistID, err := h.watchlistRef(r)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	item, err := h.service.AddSymbol(principal.UserID, watchlistID, req.Symbol)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusCreated, item)
}

// HandleListSymbols returns a watchlist's symbols with latest prices.
func (h *Handler) HandleListSymbols(w http.ResponseWriter, r *http.Request) {
	principal, watchlistID, err := h.watchlistRef(r)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	items, err := h.service.ListSymbols(principal.UserID, watchlistID)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, items)
}

// HandleRemoveSymbol stops tracking a symbol.
func (h *Handler) HandleRemoveSymbol(w http.ResponseWriter, r *http.Request) {
	principal, watchlistID, err := h.watchlistRef(r)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	if err := h.service.RemoveSymbol(principal.UserID, watchlistID, chi.URLParam(r, "symbol")); err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) watchlistRef(r *http.Request) (*domain.Principal, int64, error) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return nil, 0, domain.NotFoundf("user not found")
	}

	watchlistID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, 0, domain.Validationf("watchlist ID must be a number")
	}

	return principal, watchlistID, nil
}
