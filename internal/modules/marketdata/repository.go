package marketdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const stocksColumns = "id, symbol, date, open, high, low, close, volume, fetched_at"

// Repository handles stock bar database operations against the market
// database.
type Repository struct {
	marketDB *sql.DB
	log      zerolog.Logger
}

// NewRepository creates a new market data repository
func NewRepository(marketDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		marketDB: marketDB,
		log:      log.With().Str("repo", "marketdata").Logger(),
	}
}

// UpsertBars writes a batch of bars, replacing any existing row for the
// same (symbol, date). Re-ingesting a day the provider restated simply
// overwrites it.
func (r *Repository) UpsertBars(bars []StockBar) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := r.marketDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO stocks (symbol, date, open, high, low, close, volume, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, bar := range bars {
		if _, err := stmt.Exec(bar.Symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, now); err != nil {
			return fmt.Errorf("failed to upsert bar %s %s: %w", bar.Symbol, bar.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bars: %w", err)
	}

	r.log.Debug().Int("count", len(bars)).Msg("Bars upserted")
	return nil
}

// Latest returns the most recent bar for a symbol, or nil when nothing has
// been ingested for it.
func (r *Repository) Latest(symbol string) (*StockBar, error) {
	query := fmt.Sprintf("SELECT %s FROM stocks WHERE symbol = ? ORDER BY date DESC LIMIT 1", stocksColumns)

	bar, err := scanBar(r.marketDB.QueryRow(query, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest bar: %w", err)
	}
	return &bar, nil
}

// Series returns up to limit bars for a symbol, most recent first.
func (r *Repository) Series(symbol string, limit int) ([]StockBar, error) {
	query := fmt.Sprintf("SELECT %s FROM stocks WHERE symbol = ? ORDER BY date DESC LIMIT ?", stocksColumns)

	rows, err := r.marketDB.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []StockBar
	for rows.Next() {
		bar, err := scanBar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bars: %w", err)
	}

	return bars, nil
}

// Symbols returns the distinct symbols with at least one ingested bar.
func (r *Repository) Symbols() ([]string, error) {
	rows, err := r.marketDB.Query("SELECT DISTINCT symbol FROM stocks ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return symbols, nil
}

func scanBar(row interface{ Scan(...interface{}) error }) (StockBar, error) {
	var bar StockBar
	var fetchedAt int64

	err := row.Scan(&bar.ID, &bar.Symbol, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &fetchedAt)
	if err != nil {
		return StockBar{}, err
	}

	bar.FetchedAt = time.Unix(fetchedAt, 0).UTC()
	return bar, nil
}
