// Package ledger implements the account balance primitives and the
// append-only transaction log.
package ledger

import (
	"time"

	"github.com/stockpro/stockpro/internal/domain"
)

// Transaction is an immutable balance ledger entry.
type Transaction struct {
	ID            int64                  `json:"id"`
	TransactionID string                 `json:"transaction_id"`
	UserID        int64                  `json:"user_id"`
	Amount        float64                `json:"amount"`
	Type          domain.TransactionType `json:"type"`
	Status        string                 `json:"status"`
	CreatedAt     time.Time              `json:"created_at"`
}
