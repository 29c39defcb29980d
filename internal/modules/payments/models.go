package payments

import "time"

// SavedCard is a stored payment card. The number and CVV are kept verbatim
// because the payment flow is simulated; nothing is ever charged.
type SavedCard struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CardNumber     string    `json:"card_number"`
	CardHolderName string    `json:"card_holder_name"`
	ExpiryMonth    int       `json:"expiry_month"`
	ExpiryYear     int       `json:"expiry_year"`
	CVV            string    `json:"-"`
	CardType       string    `json:"card_type"`
	CreatedAt      time.Time `json:"created_at"`
}

// CardRequest is the payload for saving a card.
type CardRequest struct {
	CardNumber     string `json:"card_number"`
	CardHolderName string `json:"card_holder_name"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CVV            string `json:"cvv"`
	CardType       string `json:"card_type"`
}

// PaymentRequest asks to move money through a saved card.
type PaymentRequest struct {
	CardNumber string  `json:"card_number"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
}

// PaymentResult reports the outcome of a payment attempt.
type PaymentResult struct {
	TransactionID string  `json:"transaction_id,omitempty"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Message       string  `json:"message,omitempty"`
}
