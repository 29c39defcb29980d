// Package handlers provides HTTP handlers for wallet balance and the
// transaction log.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/ledger"
	"github.com/stockpro/stockpro/internal/web"
)

// Handler handles balance HTTP requests
type Handler struct {
	service *ledger.Service
	log     zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(service *ledger.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "ledger").Logger(),
	}
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

// HandleGetBalance returns the user's wallet balance.
func (h *Handler) HandleGetBalance(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	balance, err := h.service.GetBalance(principal.UserID)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusOK, map[string]float64{"balance": balance})
}

// HandleAddFunds credits the wallet.
func (h *Handler) HandleAddFunds(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Credit)
}

// HandleWithdrawFunds debits the wallet.
func (h *Handler) HandleWithdrawFunds(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.service.Debit)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, op func(int64, float64) (*ledger.Transaction, error)) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	var req amountRequest
	if err := web.Decode(r, &req); err != nil {
		web.Error(w, h.log, err)
		return
	}

	txn, err := op(principal.UserID, req.Amount)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}

	web.JSON(w, h.log, http.StatusCreated, txn)
}

// HandleListTransactions returns the user's transaction log.
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		web.Error(w, h.log, domain.NotFoundf("user not found"))
		return
	}

	txns, err := h.service.Transactions(principal.UserID)
	if err != nil {
		web.Error(w, h.log, err)
		return
	}
	if txns == nil {
		txns = []ledger.Transaction{}
	}

	web.JSON(w, h.log, http.StatusOK, txns)
}
