package trading

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
)

const tradesColumns = "id, user_id, symbol, side, quantity, price, executed_at"

// TradeRepository handles trade database operations
type TradeRepository struct {
	appDB *sql.DB
	log   zerolog.Logger
}

// NewTradeRepository creates a new trade repository
func NewTradeRepository(appDB *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{
		appDB: appDB,
		log:   log.With().Str("repo", "trade").Logger(),
	}
}

// execer lets the append run inside the trade execution transaction.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// CreateTx appends a trade record using the given executor. Trade
// execution passes its open *sql.Tx so the record commits atomically
// with the position and balance changes.
func (r *TradeRepository) CreateTx(ex execer, trade Trade) (*Trade, error) {
	query := `
		INSERT INTO trades (user_id, symbol, side, quantity, price, executed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := ex.Exec(query,
		trade.UserID,
		trade.Symbol,
		string(trade.Side),
		trade.Quantity,
		trade.Price,
		trade.ExecutedAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get trade id: %w", err)
	}
	trade.ID = id
	return &trade, nil
}

// ListByUser returns a user's trades, most recent first.
func (r *TradeRepository) ListByUser(userID int64) ([]Trade, error) {
	query := fmt.Sprintf("SELECT %s FROM trades WHERE user_id = ? ORDER BY executed_at DESC, id DESC", tradesColumns)
	return r.list(query, userID)
}

// ListByUserAndSymbol returns a user's trades in one symbol, most recent first.
func (r *TradeRepository) ListByUserAndSymbol(userID int64, symbol string) ([]Trade, error) {
	query := fmt.Sprintf("SELECT %s FROM trades WHERE user_id = ? AND symbol = ? ORDER BY executed_at DESC, id DESC", tradesColumns)
	return r.list(query, userID, symbol)
}

func (r *TradeRepository) list(query string, args ...interface{}) ([]Trade, error) {
	rows, err := r.appDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

func scanTrade(row interface{ Scan(...interface{}) error }) (Trade, error) {
	var trade Trade
	var side string
	var executedAt int64

	err := row.Scan(&trade.ID, &trade.UserID, &trade.Symbol, &side, &trade.Quantity, &trade.Price, &executedAt)
	if err != nil {
		return Trade{}, err
	}

	trade.Side = domain.TradeSide(side)
	trade.ExecutedAt = time.Unix(executedAt, 0).UTC()
	return trade, nil
}
