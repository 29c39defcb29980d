package payments

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpro/stockpro/internal/database"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/ledger"
)

func newPaymentsFixture(t *testing.T) (*sql.DB, *Service) {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// each pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.AppSchema)
	require.NoError(t, err)

	ledgerService := ledger.NewService(db, ledger.NewRepository(db, log), log)
	return db, NewService(NewCardRepository(db, log), ledgerService, log)
}

func createUser(t *testing.T, db *sql.DB, email string, balance float64) int64 {
	t.Helper()
	res, err := db.Exec("INSERT INTO users (email, balance, created_at) VALUES (?, ?, 0)", email, balance)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func validCard() CardRequest {
	year := time.Now().Year() + 2
	return CardRequest{
		CardNumber:     "4111 1111 1111 1111",
		CardHolderName: "Jay Trader",
		ExpiryMonth:    12,
		ExpiryYear:     year,
		CVV:            "123",
	}
}

func TestDetectCardType(t *testing.T) {
	testCases := []struct {
		number   string
		expected string
	}{
		{"4111111111111111", "Visa"},
		{"5105105105105100", "MasterCard"},
		{"6011000990139424", "RuPay"},
		{"6522670000000000", "RuPay"},
		{"8112345678901234", "RuPay"},
		{"340000000000009", "American Express"},
		{"370000000000002", "American Express"},
		{"6331101999990016", "Discover"},
		{"9999999999999999", "Unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected+"_"+tc.number[:4], func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectCardType(tc.number))
		})
	}
}

func TestSaveCard_DetectsTypeAndRejectsDuplicates(t *testing.T) {
	db, service := newPaymentsFixture(t)
	userID := createUser(t, db, "c@example.com", 0)

	card, err := service.SaveCard(userID, validCard())
	require.NoError(t, err)
	assert.Equal(t, "Visa", card.CardType)
	assert.Equal(t, "4111111111111111", card.CardNumber)

	_, err = service.SaveCard(userID, validCard())
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "already registered")
}

func TestSaveCard_Validation(t *testing.T) {
	db, service := newPaymentsFixture(t)
	userID := createUser(t, db, "v@example.com", 0)

	bad := validCard()
	bad.CardNumber = "1234"
	_, err := service.SaveCard(userID, bad)
	assert.True(t, domain.IsValidation(err))

	bad = validCard()
	bad.ExpiryMonth = 13
	_, err = service.SaveCard(userID, bad)
	assert.True(t, domain.IsValidation(err))
}

func TestProcessCardPayment_AddCreditsWallet(t *testing.T) {
	db, service := newPaymentsFixture(t)
	userID := createUser(t, db, "p@example.com", 100)

	_, err := service.SaveCard(userID, validCard())
	require.NoError(t, err)

	result, err := service.ProcessCardPayment(userID, PaymentRequest{
		CardNumber: "4111111111111111",
		Amount:     500,
		Type:       "ADD",
	})
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", result.Status)
	assert.NotEmpty(t, result.TransactionID)

	var balance float64
	require.NoError(t, db.QueryRow("SELECT balance FROM users WHERE id = ?", userID).Scan(&balance))
	assert.InDelta(t, 600, balance, 1e-9)
}

func TestProcessCardPayment_WithdrawDebitsWallet(t *testing.T) {
	db, service := newPaymentsFixture(t)
	userID := createUser(t, db, "w@example.com", 1000)

	_, err := service.SaveCard(userID, validCard())
	require.NoError(t, err)

	_, err = service.ProcessCardPayment(userID, PaymentRequest{
		CardNumber: "4111111111111111",
		Amount:     2000,
		Type:       "WITHDRAW",
	})
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))

	var balance float64
	require.NoError(t, db.QueryRow("SELECT balance FROM users WHERE id = ?", userID).Scan(&balance))
	assert.InDelta(t, 1000, balance, 1e-9)
}

func TestProcessCardPayment_CardChecks(t *testing.T) {
	db, service := newPaymentsFixture(t)
	owner := createUser(t, db, "owner@example.com", 100)
	other := createUser(t, db, "other@example.com", 100)

	_, err := service.SaveCard(owner, validCard())
	require.NoError(t, err)

	// unregistered card
	_, err = service.ProcessCardPayment(owner, PaymentRequest{CardNumber: "4222222222222", Amount: 10, Type: "ADD"})
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "not registered")

	// someone else's card
	_, err = service.ProcessCardPayment(other, PaymentRequest{CardNumber: "4111111111111111", Amount: 10, Type: "ADD"})
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "does not belong")
}

func TestProcessCardPayment_ExpiryChecks(t *testing.T) {
	now := time.Now()

	expired := &SavedCard{ExpiryMonth: int(now.Month()), ExpiryYear: now.Year() - 1}
	err := checkExpiry(expired, now)
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))

	tooFar := &SavedCard{ExpiryMonth: 1, ExpiryYear: now.Year() + 11}
	err = checkExpiry(tooFar, now)
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))

	// current month is still valid
	current := &SavedCard{ExpiryMonth: int(now.Month()), ExpiryYear: now.Year()}
	assert.NoError(t, checkExpiry(current, now))
}

func TestProcessCardPayment_TypeValidation(t *testing.T) {
	db, service := newPaymentsFixture(t)
	userID := createUser(t, db, "t@example.com", 100)

	_, err := service.ProcessCardPayment(userID, PaymentRequest{CardNumber: "4111111111111111", Amount: 10, Type: "TRANSFER"})
	assert.True(t, domain.IsValidation(err))

	_, err = service.ProcessCardPayment(userID, PaymentRequest{CardNumber: "4111111111111111", Amount: 0, Type: "ADD"})
	assert.True(t, domain.IsValidation(err))
}
