package watchlist

import "time"

// Watchlist is a user-named basket of tracked symbols.
type Watchlist struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Item is one tracked symbol. SnapshotDate records the latest ingested
// trading day at the time the symbol was added.
type Item struct {
	ID           int64     `json:"id"`
	WatchlistID  int64     `json:"watchlist_id"`
	Symbol       string    `json:"symbol"`
	SnapshotDate string    `json:"snapshot_date"`
	AddedAt      time.Time `json:"added_at"`
}

// EnrichedItem is an item joined with the latest known price. Close is 0
// when no price has been ingested since the symbol was added.
type EnrichedItem struct {
	Item
	Close float64 `json:"close"`
	Date  string  `json:"date,omitempty"`
}
