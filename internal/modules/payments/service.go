package payments

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/ledger"
)

// BalanceAdjuster moves money in its own transaction and records the
// ledger entry. Satisfied by the ledger service.
type BalanceAdjuster interface {
	Credit(userID int64, amount float64) (*ledger.Transaction, error)
	Debit(userID int64, amount float64) (*ledger.Transaction, error)
}

// Service manages saved cards and the simulated card payment flow. No
// payment processor is involved; a valid card simply moves money between
// nowhere and the wallet balance.
type Service struct {
	cards  *CardRepository
	ledger BalanceAdjuster
	log    zerolog.Logger
}

// NewService creates a new payments service
func NewService(cards *CardRepository, ledger BalanceAdjuster, log zerolog.Logger) *Service {
	return &Service{
		cards:  cards,
		ledger: ledger,
		log:    log.With().Str("service", "payments").Logger(),
	}
}

// SaveCard stores a card for a user. The card type is detected from the
// number prefix when the caller does not supply one.
func (s *Service) SaveCard(userID int64, req CardRequest) (*SavedCard, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}

	number := strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
	if len(number) < 12 || len(number) > 19 {
		return nil, domain.Validationf("card number must be 12 to 19 digits")
	}
	if req.ExpiryMonth < 1 || req.ExpiryMonth > 12 {
		return nil, domain.Validationf("expiry month must be between 1 and 12")
	}
	if req.ExpiryYear <= 0 {
		return nil, domain.Validationf("expiry year must be valid")
	}

	exists, err := s.cards.ExistsByNumber(number)
	if err != nil {
		return nil, domain.Executionf("card lookup", err)
	}
	if exists {
		return nil, domain.BusinessRulef("card is already registered")
	}

	cardType := strings.TrimSpace(req.CardType)
	if cardType == "" {
		cardType = DetectCardType(number)
	}

	card, err := s.cards.Create(SavedCard{
		UserID:         userID,
		CardNumber:     number,
		CardHolderName: strings.TrimSpace(req.CardHolderName),
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		CVV:            req.CVV,
		CardType:       cardType,
	})
	if err != nil {
		return nil, domain.Executionf("card save", err)
	}

	s.log.Info().Int64("user_id", userID).Str("card_type", cardType).Msg("Card saved")
	return card, nil
}

// ListCards returns a user's saved cards.
func (s *Service) ListCards(userID int64) ([]SavedCard, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}
	cards, err := s.cards.ListByUser(userID)
	if err != nil {
		return nil, domain.Executionf("card listing", err)
	}
	return cards, nil
}

// DeleteCard removes a user's saved card.
func (s *Service) DeleteCard(userID, cardID int64) error {
	if userID <= 0 {
		return domain.Validationf("user ID must be valid")
	}
	err := s.cards.Delete(userID, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("card %d not found", cardID)
	}
	if err != nil {
		return domain.Executionf("card delete", err)
	}
	return nil
}

// ProcessCardPayment validates a saved card and moves the amount through
// the wallet balance: ADD credits, WITHDRAW debits. Any rejected check
// leaves the balance untouched.
func (s *Service) ProcessCardPayment(userID int64, req PaymentRequest) (*PaymentResult, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}
	if req.Amount <= 0 {
		return nil, domain.Validationf("amount must be greater than 0")
	}

	typ := domain.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if typ != domain.TransactionAdd && typ != domain.TransactionWithdraw {
		return nil, domain.Validationf("type must be ADD or WITHDRAW")
	}

	number := strings.ReplaceAll(strings.TrimSpace(req.CardNumber), " ", "")
	card, err := s.cards.GetByNumber(number)
	if err != nil {
		return nil, domain.Executionf("card lookup", err)
	}
	if card == nil {
		return nil, domain.BusinessRulef("card is not registered")
	}
	if card.UserID != userID {
		return nil, domain.BusinessRulef("card does not belong to this user")
	}
	if err := checkExpiry(card, time.Now()); err != nil {
		return nil, err
	}

	var txn *ledger.Transaction
	if typ == domain.TransactionAdd {
		txn, err = s.ledger.Credit(userID, req.Amount)
	} else {
		txn, err = s.ledger.Debit(userID, req.Amount)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("type", string(typ)).
		Float64("amount", req.Amount).
		Msg("Card payment processed")

	return &PaymentResult{
		TransactionID: txn.TransactionID,
		Status:        "SUCCESS",
		Amount:        req.Amount,
	}, nil
}

// checkExpiry rejects cards already expired or dated implausibly far out.
func checkExpiry(card *SavedCard, now time.Time) error {
	endOfMonth := time.Date(card.ExpiryYear, time.Month(card.ExpiryMonth), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	if !endOfMonth.After(now) {
		return domain.BusinessRulef("card expired %02d/%d", card.ExpiryMonth, card.ExpiryYear)
	}
	if card.ExpiryYear > now.Year()+10 {
		return domain.BusinessRulef("card expiry year %d is not valid", card.ExpiryYear)
	}
	return nil
}

// DetectCardType classifies a card number by its issuer prefix.
func DetectCardType(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "Visa"
	case len(number) >= 2 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return "MasterCard"
	case strings.HasPrefix(number, "60") || strings.HasPrefix(number, "65") ||
		strings.HasPrefix(number, "81") || strings.HasPrefix(number, "82"):
		return "RuPay"
	case strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37"):
		return "American Express"
	case strings.HasPrefix(number, "6"):
		return "Discover"
	default:
		return "Unknown"
	}
}
