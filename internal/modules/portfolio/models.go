package portfolio

import "time"

// Position is one holding row: how many shares of a symbol a user owns and
// the weighted-average price paid for them.
type Position struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Symbol       string    `json:"symbol"`
	Quantity     int64     `json:"quantity"`
	AvgPrice     float64   `json:"avg_price"`
	PurchaseDate time.Time `json:"purchase_date"`
}

// EnrichedPosition is a position joined with the latest known market price.
// CurrentPrice is 0 when no price has been ingested for the symbol yet; the
// derived fields are computed from whatever price is available.
type EnrichedPosition struct {
	Position
	CurrentPrice     float64 `json:"current_price"`
	MarketValue      float64 `json:"market_value"`
	CostBasis        float64 `json:"cost_basis"`
	UnrealizedPnL    float64 `json:"unrealized_pnl"`
	UnrealizedPnLPct float64 `json:"unrealized_pnl_pct"`
}

// Summary aggregates a user's enriched positions.
type Summary struct {
	Positions     []EnrichedPosition `json:"positions"`
	TotalValue    float64            `json:"total_value"`
	TotalCost     float64            `json:"total_cost"`
	UnrealizedPnL float64            `json:"unrealized_pnl"`
}
