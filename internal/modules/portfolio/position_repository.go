package portfolio

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
)

const positionsColumns = "id, user_id, symbol, quantity, avg_price, purchase_date"

// PositionRepository handles position database operations
type PositionRepository struct {
	appDB *sql.DB
	log   zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(appDB *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		appDB: appDB,
		log:   log.With().Str("repo", "position").Logger(),
	}
}

// executor covers both *sql.DB and *sql.Tx so position changes can run
// inside the trade execution transaction.
type executor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ListByUser returns all positions held by a user, ordered by symbol.
func (r *PositionRepository) ListByUser(userID int64) ([]Position, error) {
	query := fmt.Sprintf("SELECT %s FROM positions WHERE user_id = ? ORDER BY symbol", positionsColumns)

	rows, err := r.appDB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetByUserAndSymbol returns a single holding, or nil when the user holds
// no shares of the symbol.
func (r *PositionRepository) GetByUserAndSymbol(userID int64, symbol string) (*Position, error) {
	return r.getTx(r.appDB, userID, symbol)
}

func (r *PositionRepository) getTx(ex executor, userID int64, symbol string) (*Position, error) {
	query := fmt.Sprintf("SELECT %s FROM positions WHERE user_id = ? AND symbol = ?", positionsColumns)

	pos, err := scanPosition(ex.QueryRow(query, userID, symbol))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &pos, nil
}

// ApplyBuyTx folds a buy into the user's holding using the given executor.
// A new position is created at the trade price; an existing one is
// repriced to the weighted average of the old lot and the new shares:
//
//	new_avg = (old_avg*old_qty + price*qty) / (old_qty + qty)
func (r *PositionRepository) ApplyBuyTx(ex executor, userID int64, symbol string, quantity int64, price float64, executedAt time.Time) error {
	pos, err := r.getTx(ex, userID, symbol)
	if err != nil {
		return domain.Executionf("position lookup", err)
	}

	if pos == nil {
		_, err := ex.Exec(
			"INSERT INTO positions (user_id, symbol, quantity, avg_price, purchase_date) VALUES (?, ?, ?, ?, ?)",
			userID, symbol, quantity, price, executedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return domain.Executionf("position create", err)
		}
		return nil
	}

	newQty := pos.Quantity + quantity
	newAvg := (pos.AvgPrice*float64(pos.Quantity) + price*float64(quantity)) / float64(newQty)

	_, err = ex.Exec(
		"UPDATE positions SET quantity = ?, avg_price = ? WHERE id = ?",
		newQty, newAvg, pos.ID,
	)
	if err != nil {
		return domain.Executionf("position update", err)
	}
	return nil
}

// ApplySellTx folds a sell into the user's holding using the given
// executor. The average price never changes on a sell; selling the full
// quantity removes the row. Selling more than held, or a symbol with no
// holding, is a business-rule failure and leaves the row untouched.
func (r *PositionRepository) ApplySellTx(ex executor, userID int64, symbol string, quantity int64) error {
	pos, err := r.getTx(ex, userID, symbol)
	if err != nil {
		return domain.Executionf("position lookup", err)
	}

	if pos == nil {
		return domain.BusinessRulef("no holding in %s to sell", symbol)
	}
	if pos.Quantity < quantity {
		return domain.BusinessRulef("insufficient quantity: available %d, requested %d", pos.Quantity, quantity)
	}

	if pos.Quantity == quantity {
		if _, err := ex.Exec("DELETE FROM positions WHERE id = ?", pos.ID); err != nil {
			return domain.Executionf("position delete", err)
		}
		return nil
	}

	_, err = ex.Exec("UPDATE positions SET quantity = quantity - ? WHERE id = ?", quantity, pos.ID)
	if err != nil {
		return domain.Executionf("position update", err)
	}
	return nil
}

func scanPosition(row interface{ Scan(...interface{}) error }) (Position, error) {
	var pos Position
	var purchaseDate string

	err := row.Scan(&pos.ID, &pos.UserID, &pos.Symbol, &pos.Quantity, &pos.AvgPrice, &purchaseDate)
	if err != nil {
		return Position{}, err
	}

	if t, perr := time.Parse(time.RFC3339, purchaseDate); perr == nil {
		pos.PurchaseDate = t
	}
	return pos, nil
}
