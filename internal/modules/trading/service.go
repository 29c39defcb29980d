package trading

import (
	"database/sql"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/database"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/ledger"
	"github.com/stockpro/stockpro/internal/modules/portfolio"
)

// priceTolerance is the maximum absolute gap allowed between the price the
// caller submitted and the latest ingested close. Anything wider means the
// caller is working from a stale quote and the order is rejected.
const priceTolerance = 0.01

// priceEpsilon absorbs float64 noise in the tolerance comparison, so a
// price exactly at the tolerance boundary is still accepted.
const priceEpsilon = 1e-9

// lockStripes sizes the per-user lock table. Users hashing to the same
// stripe serialize against each other, which is harmless.
const lockStripes = 64

// QuoteProvider supplies the latest known close for a symbol.
type QuoteProvider interface {
	LatestClose(symbol string) (float64, error)
}

// Service executes orders. Every accepted order commits the position
// change, the trade record, the balance adjustment and the ledger entry in
// a single database transaction; a rejected or failed order leaves no
// trace of any of them.
type Service struct {
	appDB     *sql.DB
	trades    *TradeRepository
	positions *portfolio.PositionRepository
	balances  *ledger.Service
	entries   *ledger.Repository
	quotes    QuoteProvider
	log       zerolog.Logger

	// userLocks serializes trades per user across the quote check and the
	// transaction, so two concurrent orders cannot both pass validation
	// against the same balance or holding.
	userLocks [lockStripes]sync.Mutex
}

// NewService creates a new trading service
func NewService(
	appDB *sql.DB,
	trades *TradeRepository,
	positions *portfolio.PositionRepository,
	balances *ledger.Service,
	entries *ledger.Repository,
	quotes QuoteProvider,
	log zerolog.Logger,
) *Service {
	return &Service{
		appDB:     appDB,
		trades:    trades,
		positions: positions,
		balances:  balances,
		entries:   entries,
		quotes:    quotes,
		log:       log.With().Str("service", "trading").Logger(),
	}
}

// ExecuteTrade validates and executes one order for a user.
//
// The pipeline fails fast: input validation, then a freshness check of the
// submitted price against the latest ingested close, then the atomic
// execution. The position change is applied before the trade record is
// appended, so a rejected position change (selling more than held) can
// never leave an orphan trade behind.
func (s *Service) ExecuteTrade(userID int64, req TradeRequest) (*Trade, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	side := domain.TradeSide(strings.ToUpper(strings.TrimSpace(req.Side)))

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	quote, err := s.quotes.LatestClose(symbol)
	if err != nil {
		return nil, domain.Executionf("quote lookup", err)
	}
	if math.Abs(req.Price-quote) > priceTolerance+priceEpsilon {
		return nil, domain.BusinessRulef("price mismatch for %s: submitted %.2f, market %.2f", symbol, req.Price, quote)
	}

	trade := Trade{
		UserID:     userID,
		Symbol:     symbol,
		Side:       side,
		Quantity:   req.Quantity,
		Price:      req.Price,
		ExecutedAt: time.Now().UTC(),
	}
	total := req.Price * float64(req.Quantity)

	var executed *Trade
	err = database.WithTransaction(s.appDB, func(tx *sql.Tx) error {
		if side == domain.TradeSideBuy {
			if err := s.balances.DebitTx(tx, userID, total); err != nil {
				return err
			}
			if err := s.positions.ApplyBuyTx(tx, userID, symbol, req.Quantity, req.Price, trade.ExecutedAt); err != nil {
				return err
			}
		} else {
			if err := s.positions.ApplySellTx(tx, userID, symbol, req.Quantity); err != nil {
				return err
			}
			if err := s.balances.CreditTx(tx, userID, total); err != nil {
				return err
			}
		}

		var txErr error
		executed, txErr = s.trades.CreateTx(tx, trade)
		if txErr != nil {
			return domain.Executionf("trade persist", txErr)
		}

		_, txErr = s.entries.RecordTx(tx, ledger.Transaction{
			TransactionID: uuid.NewString(),
			UserID:        userID,
			Amount:        total,
			Type:          domain.TransactionType(side),
			Status:        "SUCCESS",
		})
		if txErr != nil {
			return txErr
		}
		return nil
	})
	if err != nil {
		return nil, domain.Innermost(err)
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("symbol", symbol).
		Str("side", string(side)).
		Int64("quantity", req.Quantity).
		Float64("price", req.Price).
		Msg("Trade executed")

	return executed, nil
}

// History returns a user's trades, optionally filtered to one symbol.
func (s *Service) History(userID int64, symbol string) ([]Trade, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}

	var trades []Trade
	var err error
	if symbol != "" {
		trades, err = s.trades.ListByUserAndSymbol(userID, strings.ToUpper(strings.TrimSpace(symbol)))
	} else {
		trades, err = s.trades.ListByUser(userID)
	}
	if err != nil {
		return nil, domain.Executionf("trade history", err)
	}
	return trades, nil
}

func (s *Service) lockFor(userID int64) *sync.Mutex {
	h := fnv.New32a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(userID >> (8 * i))
	}
	h.Write(buf[:])
	return &s.userLocks[h.Sum32()%lockStripes]
}
