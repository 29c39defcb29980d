package payments

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const cardsColumns = "id, user_id, card_number, card_holder_name, expiry_month, expiry_year, cvv, card_type, created_at"

// CardRepository handles saved card database operations
type CardRepository struct {
	appDB *sql.DB
	log   zerolog.Logger
}

// NewCardRepository creates a new card repository
func NewCardRepository(appDB *sql.DB, log zerolog.Logger) *CardRepository {
	return &CardRepository{
		appDB: appDB,
		log:   log.With().Str("repo", "cards").Logger(),
	}
}

// Create stores a new card.
func (r *CardRepository) Create(card SavedCard) (*SavedCard, error) {
	query := `
		INSERT INTO saved_cards (user_id, card_number, card_holder_name, expiry_month, expiry_year, cvv, card_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().Unix()
	res, err := r.appDB.Exec(query,
		card.UserID,
		card.CardNumber,
		card.CardHolderName,
		card.ExpiryMonth,
		card.ExpiryYear,
		card.CVV,
		card.CardType,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get card id: %w", err)
	}
	card.ID = id
	card.CreatedAt = time.Unix(now, 0).UTC()
	return &card, nil
}

// GetByNumber returns the card with the given number, or nil when no such
// card is registered.
func (r *CardRepository) GetByNumber(cardNumber string) (*SavedCard, error) {
	query := fmt.Sprintf("SELECT %s FROM saved_cards WHERE card_number = ?", cardsColumns)

	card, err := scanCard(r.appDB.QueryRow(query, cardNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

// ExistsByNumber reports whether a card number is already registered.
func (r *CardRepository) ExistsByNumber(cardNumber string) (bool, error) {
	var one int
	err := r.appDB.QueryRow("SELECT 1 FROM saved_cards WHERE card_number = ?", cardNumber).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check card: %w", err)
	}
	return true, nil
}

// ListByUser returns a user's saved cards, oldest first.
func (r *CardRepository) ListByUser(userID int64) ([]SavedCard, error) {
	query := fmt.Sprintf("SELECT %s FROM saved_cards WHERE user_id = ? ORDER BY id", cardsColumns)

	rows, err := r.appDB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []SavedCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// Delete removes a user's card. Returns sql.ErrNoRows when the card does
// not exist or belongs to someone else.
func (r *CardRepository) Delete(userID, cardID int64) error {
	res, err := r.appDB.Exec("DELETE FROM saved_cards WHERE id = ? AND user_id = ?", cardID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanCard(row interface{ Scan(...interface{}) error }) (SavedCard, error) {
	var card SavedCard
	var createdAt int64

	err := row.Scan(&card.ID, &card.UserID, &card.CardNumber, &card.CardHolderName,
		&card.ExpiryMonth, &card.ExpiryYear, &card.CVV, &card.CardType, &createdAt)
	if err != nil {
		return SavedCard{}, err
	}

	card.CreatedAt = time.Unix(createdAt, 0).UTC()
	return card, nil
}
