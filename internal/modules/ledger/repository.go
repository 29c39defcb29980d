package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
)

// Repository handles transaction log database operations
type Repository struct {
	appDB *sql.DB
	log   zerolog.Logger
}

// NewRepository creates a new transaction repository
func NewRepository(appDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		appDB: appDB,
		log:   log.With().Str("repo", "ledger").Logger(),
	}
}

// execer lets repository writes run either on the connection or inside an
// enclosing transaction.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// RecordTx appends a transaction entry using the given executor. Trade
// execution passes its open *sql.Tx here so the entry commits atomically
// with the position change and balance adjustment.
func (r *Repository) RecordTx(ex execer, txn Transaction) (*Transaction, error) {
	query := `
		INSERT INTO transactions (transaction_id, user_id, amount, type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now().Unix()
	res, err := ex.Exec(query,
		txn.TransactionID,
		txn.UserID,
		txn.Amount,
		string(txn.Type),
		txn.Status,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction id: %w", err)
	}
	txn.ID = id
	txn.CreatedAt = time.Unix(now, 0).UTC()

	return &txn, nil
}

// Record appends a transaction entry on the connection.
func (r *Repository) Record(txn Transaction) (*Transaction, error) {
	return r.RecordTx(r.appDB, txn)
}

// ListByUser returns a user's transactions, most recent first.
func (r *Repository) ListByUser(userID int64) ([]Transaction, error) {
	query := `
		SELECT id, transaction_id, user_id, amount, type, status, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.appDB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		var txn Transaction
		var typ string
		var createdAt int64
		if err := rows.Scan(&txn.ID, &txn.TransactionID, &txn.UserID, &txn.Amount, &typ, &txn.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Type = domain.TransactionType(typ)
		txn.CreatedAt = time.Unix(createdAt, 0).UTC()
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}
