package trading

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpro/stockpro/internal/database"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/ledger"
	"github.com/stockpro/stockpro/internal/modules/portfolio"
)

// stubQuotes serves fixed closes per symbol.
type stubQuotes struct {
	closes map[string]float64
}

func (s *stubQuotes) LatestClose(symbol string) (float64, error) {
	close, ok := s.closes[symbol]
	if !ok {
		return 0, domain.NotFoundf("no market data for %s", symbol)
	}
	return close, nil
}

type tradingFixture struct {
	db      *sql.DB
	service *Service
	quotes  *stubQuotes
	users   int
}

func newTradingFixture(t *testing.T) *tradingFixture {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// each pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.AppSchema)
	require.NoError(t, err)

	quotes := &stubQuotes{closes: map[string]float64{}}

	tradeRepo := NewTradeRepository(db, log)
	positionRepo := portfolio.NewPositionRepository(db, log)
	ledgerRepo := ledger.NewRepository(db, log)
	ledgerService := ledger.NewService(db, ledgerRepo, log)

	return &tradingFixture{
		db:      db,
		service: NewService(db, tradeRepo, positionRepo, ledgerService, ledgerRepo, quotes, log),
		quotes:  quotes,
	}
}

func (f *tradingFixture) createUser(t *testing.T, balance float64) int64 {
	t.Helper()
	f.users++
	res, err := f.db.Exec(
		"INSERT INTO users (email, balance, created_at) VALUES (?, ?, 0)",
		fmt.Sprintf("trader%d@example.com", f.users), balance,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func (f *tradingFixture) position(t *testing.T, userID int64, symbol string) (quantity int64, avgPrice float64, exists bool) {
	t.Helper()
	err := f.db.QueryRow(
		"SELECT quantity, avg_price FROM positions WHERE user_id = ? AND symbol = ?",
		userID, symbol,
	).Scan(&quantity, &avgPrice)
	if err == sql.ErrNoRows {
		return 0, 0, false
	}
	require.NoError(t, err)
	return quantity, avgPrice, true
}

func (f *tradingFixture) balance(t *testing.T, userID int64) float64 {
	t.Helper()
	var balance float64
	require.NoError(t, f.db.QueryRow("SELECT balance FROM users WHERE id = ?", userID).Scan(&balance))
	return balance
}

func (f *tradingFixture) tradeCount(t *testing.T, userID int64) int {
	t.Helper()
	var count int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM trades WHERE user_id = ?", userID).Scan(&count))
	return count
}

func TestExecuteTrade_BuyCreatesPosition(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 5000)
	f.quotes.closes["AAPL"] = 140.0

	trade, err := f.service.ExecuteTrade(userID, TradeRequest{
		Symbol: "AAPL", Side: "BUY", Quantity: 10, Price: 140.0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSideBuy, trade.Side)
	assert.NotZero(t, trade.ID)

	qty, avg, exists := f.position(t, userID, "AAPL")
	require.True(t, exists)
	assert.Equal(t, int64(10), qty)
	assert.InDelta(t, 140.0, avg, 1e-9)

	assert.InDelta(t, 5000-1400, f.balance(t, userID), 1e-9)
	assert.Equal(t, 1, f.tradeCount(t, userID))
}

func TestExecuteTrade_BuyAveragesExistingPosition(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 10000)

	f.quotes.closes["AAPL"] = 140.0
	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 10, Price: 140.0})
	require.NoError(t, err)

	f.quotes.closes["AAPL"] = 150.0
	_, err = f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 10, Price: 150.0})
	require.NoError(t, err)

	qty, avg, exists := f.position(t, userID, "AAPL")
	require.True(t, exists)
	assert.Equal(t, int64(20), qty)
	assert.InDelta(t, 145.0, avg, 1e-9)
}

func TestExecuteTrade_SellNeverChangesAveragePrice(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 10000)
	f.quotes.closes["INFY"] = 100.0

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "INFY", Side: "BUY", Quantity: 10, Price: 100.0})
	require.NoError(t, err)

	f.quotes.closes["INFY"] = 120.0
	_, err = f.service.ExecuteTrade(userID, TradeRequest{Symbol: "INFY", Side: "SELL", Quantity: 4, Price: 120.0})
	require.NoError(t, err)

	qty, avg, exists := f.position(t, userID, "INFY")
	require.True(t, exists)
	assert.Equal(t, int64(6), qty)
	assert.InDelta(t, 100.0, avg, 1e-9)
}

func TestExecuteTrade_SellFullQuantityRemovesPosition(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 10000)
	f.quotes.closes["AAPL"] = 145.0

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 20, Price: 145.0})
	require.NoError(t, err)
	balanceAfterBuy := f.balance(t, userID)

	f.quotes.closes["AAPL"] = 150.0
	_, err = f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "SELL", Quantity: 20, Price: 150.0})
	require.NoError(t, err)

	_, _, exists := f.position(t, userID, "AAPL")
	assert.False(t, exists)
	assert.InDelta(t, balanceAfterBuy+3000, f.balance(t, userID), 1e-9)
}

func TestExecuteTrade_SellMoreThanHeldLeavesNoTrace(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 10000)
	f.quotes.closes["TCS"] = 50.0

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "TCS", Side: "BUY", Quantity: 5, Price: 50.0})
	require.NoError(t, err)

	balanceBefore := f.balance(t, userID)
	tradesBefore := f.tradeCount(t, userID)

	_, err = f.service.ExecuteTrade(userID, TradeRequest{Symbol: "TCS", Side: "SELL", Quantity: 8, Price: 50.0})
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "available 5")
	assert.Contains(t, err.Error(), "requested 8")

	qty, _, exists := f.position(t, userID, "TCS")
	require.True(t, exists)
	assert.Equal(t, int64(5), qty)
	assert.Equal(t, balanceBefore, f.balance(t, userID))
	assert.Equal(t, tradesBefore, f.tradeCount(t, userID))
}

func TestExecuteTrade_SellWithNoHoldingRejected(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 1000)
	f.quotes.closes["WIPRO"] = 40.0

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "WIPRO", Side: "SELL", Quantity: 1, Price: 40.0})
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))
	assert.Equal(t, 0, f.tradeCount(t, userID))
}

func TestExecuteTrade_InsufficientFundsRollsBack(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 100)
	f.quotes.closes["AAPL"] = 140.0

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 10, Price: 140.0})
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))
	assert.Contains(t, err.Error(), "insufficient funds")

	_, _, exists := f.position(t, userID, "AAPL")
	assert.False(t, exists)
	assert.Equal(t, 100.0, f.balance(t, userID))
	assert.Equal(t, 0, f.tradeCount(t, userID))
}

func TestExecuteTrade_PriceTolerance(t *testing.T) {
	f := newTradingFixture(t)
	f.quotes.closes["AAPL"] = 100.00

	testCases := []struct {
		name     string
		price    float64
		accepted bool
	}{
		{"exact match", 100.00, true},
		{"at tolerance above", 100.01, true},
		{"at tolerance below", 99.99, true},
		{"just outside above", 100.02, false},
		{"well outside", 105.00, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			userID := f.createUser(t, 100000)

			_, err := f.service.ExecuteTrade(userID, TradeRequest{
				Symbol: "AAPL", Side: "BUY", Quantity: 1, Price: tc.price,
			})
			if tc.accepted {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, domain.IsBusinessRule(err))
				assert.Contains(t, err.Error(), "price mismatch")
			}
		})
	}
}

func TestExecuteTrade_UnknownSymbolFailsQuoteLookup(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 1000)

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "NOPE", Side: "BUY", Quantity: 1, Price: 10})
	require.Error(t, err)
	assert.True(t, domain.IsExecution(err))
}

func TestExecuteTrade_Validation(t *testing.T) {
	f := newTradingFixture(t)

	testCases := []struct {
		name   string
		userID int64
		req    TradeRequest
	}{
		{"zero user", 0, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 1, Price: 10}},
		{"empty symbol", 1, TradeRequest{Symbol: " ", Side: "BUY", Quantity: 1, Price: 10}},
		{"bad side", 1, TradeRequest{Symbol: "AAPL", Side: "HOLD", Quantity: 1, Price: 10}},
		{"zero quantity", 1, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 0, Price: 10}},
		{"negative quantity", 1, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: -3, Price: 10}},
		{"zero price", 1, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 1, Price: 0}},
		{"negative price", 1, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 1, Price: -5}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.ExecuteTrade(tc.userID, tc.req)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestExecuteTrade_RecordsLedgerEntry(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 5000)
	f.quotes.closes["AAPL"] = 140.0

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 10, Price: 140.0})
	require.NoError(t, err)

	var typ string
	var amount float64
	require.NoError(t, f.db.QueryRow(
		"SELECT type, amount FROM transactions WHERE user_id = ?", userID,
	).Scan(&typ, &amount))
	assert.Equal(t, "BUY", typ)
	assert.InDelta(t, 1400.0, amount, 1e-9)
}

func TestHistory_FiltersBySymbol(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 100000)
	f.quotes.closes["AAPL"] = 100.0
	f.quotes.closes["INFY"] = 50.0

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 1, Price: 100.0})
	require.NoError(t, err)
	_, err = f.service.ExecuteTrade(userID, TradeRequest{Symbol: "INFY", Side: "BUY", Quantity: 2, Price: 50.0})
	require.NoError(t, err)

	all, err := f.service.History(userID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := f.service.History(userID, "infy")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "INFY", filtered[0].Symbol)
}

func TestExecuteTrade_ToleranceBoundaryAcrossPrices(t *testing.T) {
	f := newTradingFixture(t)

	// Exact-boundary differences like 100.01-100.00 do not come out as
	// 0.01 in float64, so each magnitude is checked on both sides.
	for _, quote := range []float64{0.03, 1.10, 99.99, 100.00, 3333.33} {
		f.quotes.closes["TCS"] = quote

		for _, price := range []float64{quote + 0.01, quote - 0.01} {
			userID := f.createUser(t, 100000)
			_, err := f.service.ExecuteTrade(userID, TradeRequest{
				Symbol: "TCS", Side: "BUY", Quantity: 1, Price: price,
			})
			assert.NoError(t, err, "quote %.2f, submitted %.2f", quote, price)
		}
	}
}

func TestExecuteTrade_NormalizesSide(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 5000)
	f.quotes.closes["AAPL"] = 100.0

	trade, err := f.service.ExecuteTrade(userID, TradeRequest{
		Symbol: "aapl", Side: " buy ", Quantity: 2, Price: 100.0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSideBuy, trade.Side)

	trade, err = f.service.ExecuteTrade(userID, TradeRequest{
		Symbol: "AAPL", Side: "sell", Quantity: 2, Price: 100.0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSideSell, trade.Side)

	_, _, exists := f.position(t, userID, "AAPL")
	assert.False(t, exists)
}

func TestExecuteTrade_ConcurrentSellsNeverOversell(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 1000)
	f.quotes.closes["AAPL"] = 10.0

	_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 5, Price: 10.0})
	require.NoError(t, err)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "SELL", Quantity: 1, Price: 10.0})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.True(t, domain.IsBusinessRule(err))
			rejected++
		}
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 3, rejected)

	_, _, exists := f.position(t, userID, "AAPL")
	assert.False(t, exists)
	assert.InDelta(t, 1000.0, f.balance(t, userID), 1e-9)
	assert.Equal(t, 6, f.tradeCount(t, userID))
}

func TestExecuteTrade_ConcurrentBuysNeverOverdraw(t *testing.T) {
	f := newTradingFixture(t)
	userID := f.createUser(t, 50)
	f.quotes.closes["AAPL"] = 10.0

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.ExecuteTrade(userID, TradeRequest{Symbol: "AAPL", Side: "BUY", Quantity: 1, Price: 10.0})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.True(t, domain.IsBusinessRule(err))
		}
	}
	assert.Equal(t, 5, succeeded)
	assert.InDelta(t, 0.0, f.balance(t, userID), 1e-9)

	qty, _, exists := f.position(t, userID, "AAPL")
	require.True(t, exists)
	assert.Equal(t, int64(5), qty)
}
