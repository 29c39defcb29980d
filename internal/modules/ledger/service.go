package ledger

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/database"
	"github.com/stockpro/stockpro/internal/domain"
)

// Service implements the two balance primitives, debit and credit.
// Neither ever persists a negative balance; the users table additionally
// carries a CHECK(balance >= 0) as a last line of defense.
type Service struct {
	appDB *sql.DB
	repo  *Repository
	log   zerolog.Logger
}

// NewService creates a new ledger service
func NewService(appDB *sql.DB, repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		appDB: appDB,
		repo:  repo,
		log:   log.With().Str("service", "ledger").Logger(),
	}
}

// queryExecer covers both *sql.DB and *sql.Tx.
type queryExecer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DebitTx subtracts amount from the user's balance inside the given
// executor. Fails with a not-found error when the account does not exist
// and a business-rule error when the balance is insufficient; the stored
// balance is untouched in both cases.
func (s *Service) DebitTx(ex queryExecer, userID int64, amount float64) error {
	if amount <= 0 {
		return domain.Validationf("amount must be greater than 0")
	}

	var balance float64
	err := ex.QueryRow("SELECT balance FROM users WHERE id = ?", userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("user %d not found", userID)
	}
	if err != nil {
		return domain.Executionf("balance debit", err)
	}

	if balance < amount {
		return domain.BusinessRulef("insufficient funds: available %.2f, required %.2f", balance, amount)
	}

	if _, err := ex.Exec("UPDATE users SET balance = balance - ? WHERE id = ?", amount, userID); err != nil {
		return domain.Executionf("balance debit", err)
	}

	return nil
}

// CreditTx adds amount to the user's balance inside the given executor.
func (s *Service) CreditTx(ex queryExecer, userID int64, amount float64) error {
	if amount <= 0 {
		return domain.Validationf("amount must be greater than 0")
	}

	var balance float64
	err := ex.QueryRow("SELECT balance FROM users WHERE id = ?", userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("user %d not found", userID)
	}
	if err != nil {
		return domain.Executionf("balance credit", err)
	}

	if _, err := ex.Exec("UPDATE users SET balance = balance + ? WHERE id = ?", amount, userID); err != nil {
		return domain.Executionf("balance credit", err)
	}

	return nil
}

// Debit runs DebitTx in its own transaction and records a WITHDRAW entry.
func (s *Service) Debit(userID int64, amount float64) (*Transaction, error) {
	return s.adjust(userID, amount, domain.TransactionWithdraw)
}

// Credit runs CreditTx in its own transaction and records an ADD entry.
func (s *Service) Credit(userID int64, amount float64) (*Transaction, error) {
	return s.adjust(userID, amount, domain.TransactionAdd)
}

func (s *Service) adjust(userID int64, amount float64, typ domain.TransactionType) (*Transaction, error) {
	var recorded *Transaction

	err := database.WithTransaction(s.appDB, func(tx *sql.Tx) error {
		var opErr error
		if typ == domain.TransactionWithdraw {
			opErr = s.DebitTx(tx, userID, amount)
		} else {
			opErr = s.CreditTx(tx, userID, amount)
		}
		if opErr != nil {
			return opErr
		}

		recorded, opErr = s.repo.RecordTx(tx, Transaction{
			TransactionID: uuid.NewString(),
			UserID:        userID,
			Amount:        amount,
			Type:          typ,
			Status:        "SUCCESS",
		})
		return opErr
	})
	if err != nil {
		// WithTransaction wraps the inner error; keep the domain error visible
		return nil, domain.Innermost(err)
	}

	s.log.Info().
		Int64("user_id", userID).
		Float64("amount", amount).
		Str("type", string(typ)).
		Msg("Balance adjusted")

	return recorded, nil
}

// GetBalance returns the user's current balance.
func (s *Service) GetBalance(userID int64) (float64, error) {
	var balance float64
	err := s.appDB.QueryRow("SELECT balance FROM users WHERE id = ?", userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundf("user %d not found", userID)
	}
	if err != nil {
		return 0, domain.Executionf("balance lookup", err)
	}
	return balance, nil
}

// Transactions returns a user's ledger entries, most recent first.
func (s *Service) Transactions(userID int64) ([]Transaction, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}
	txns, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, domain.Executionf("transaction listing", err)
	}
	return txns, nil
}
