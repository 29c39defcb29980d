package marketdata

import "time"

// StockBar is one daily OHLCV bar for a symbol. Date is the trading day in
// YYYY-MM-DD form as reported by the provider.
type StockBar struct {
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	Date      string    `json:"date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Quote is the latest known bar for a symbol, served to clients that only
// care about the current price.
type Quote struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
