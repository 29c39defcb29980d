package trading

import (
	"strings"
	"time"

	"github.com/stockpro/stockpro/internal/domain"
)

// Trade is one executed buy or sell, recorded after the position and
// balance changes committed.
type Trade struct {
	ID         int64            `json:"id"`
	UserID     int64            `json:"user_id"`
	Symbol     string           `json:"symbol"`
	Side       domain.TradeSide `json:"side"`
	Quantity   int64            `json:"quantity"`
	Price      float64          `json:"price"`
	ExecutedAt time.Time        `json:"executed_at"`
}

// TradeRequest is the caller's order: symbol, side, quantity and the price
// the caller saw when submitting.
type TradeRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// Validate rejects malformed orders before any market or database work.
func (req *TradeRequest) Validate() error {
	if strings.TrimSpace(req.Symbol) == "" {
		return domain.Validationf("symbol must not be empty")
	}
	if !domain.TradeSide(strings.ToUpper(strings.TrimSpace(req.Side))).Valid() {
		return domain.Validationf("side must be BUY or SELL")
	}
	if req.Quantity <= 0 {
		return domain.Validationf("quantity must be greater than 0")
	}
	if req.Price <= 0 {
		return domain.Validationf("price must be greater than 0")
	}
	return nil
}
