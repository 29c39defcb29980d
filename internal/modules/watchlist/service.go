package watchlist

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/marketdata"
)

// BarProvider supplies the latest ingested bar for a symbol. Satisfied by
// the market data service.
type BarProvider interface {
	LatestBar(symbol string) (*marketdata.StockBar, error)
}

// Service manages per-user watchlists and their tracked symbols.
type Service struct {
	repo *Repository
	bars BarProvider
	log  zerolog.Logger
}

// NewService creates a new watchlist service
func NewService(repo *Repository, bars BarProvider, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		bars: bars,
		log:  log.With().Str("service", "watchlist").Logger(),
	}
}

// Create makes a new named watchlist for a user.
func (s *Service) Create(userID int64, name string) (*Watchlist, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("watchlist name must not be empty")
	}

	wl, err := s.repo.Create(userID, name)
	if err != nil {
		return nil, domain.Executionf("watchlist create", err)
	}

	s.log.Info().Int64("user_id", userID).Str("name", name).Msg("Watchlist created")
	return wl, nil
}

// List returns a user's watchlists.
func (s *Service) List(userID int64) ([]Watchlist, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}
	lists, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, domain.Executionf("watchlist listing", err)
	}
	return lists, nil
}

// Delete removes a user's watchlist and everything on it.
func (s *Service) Delete(userID, watchlistID int64) error {
	if _, err := s.owned(userID, watchlistID); err != nil {
		return err
	}

	err := s.repo.Delete(watchlistID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("watchlist %d not found", watchlistID)
	}
	if err != nil {
		return domain.Executionf("watchlist delete", err)
	}
	return nil
}

// AddSymbol puts a symbol on a watchlist, snapshotting the latest ingested
// trading day. Symbols with no ingested data are recorded with an empty
// snapshot date rather than rejected.
func (s *Service) AddSymbol(userID, watchlistID int64, symbol string) (*Item, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.Validationf("symbol must not be empty")
	}
	if _, err := s.owned(userID, watchlistID); err != nil {
		return nil, err
	}

	exists, err := s.repo.HasItem(watchlistID, symbol)
	if err != nil {
		return nil, domain.Executionf("watchlist item lookup", err)
	}
	if exists {
		return nil, domain.BusinessRulef("%s is already on the watchlist", symbol)
	}

	snapshotDate := ""
	if bar, err := s.bars.LatestBar(symbol); err == nil && bar != nil {
		snapshotDate = bar.Date
	}

	item, err := s.repo.AddItem(watchlistID, symbol, snapshotDate)
	if err != nil {
		return nil, domain.Executionf("watchlist item add", err)
	}
	return item, nil
}

// RemoveSymbol takes a symbol off a watchlist.
func (s *Service) RemoveSymbol(userID, watchlistID int64, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return domain.Validationf("symbol must not be empty")
	}
	if _, err := s.owned(userID, watchlistID); err != nil {
		return err
	}

	err := s.repo.RemoveItem(watchlistID, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundf("%s is not on the watchlist", symbol)
	}
	if err != nil {
		return domain.Executionf("watchlist item remove", err)
	}
	return nil
}

// ListSymbols returns a watchlist's symbols enriched with the latest
// ingested price.
func (s *Service) ListSymbols(userID, watchlistID int64) ([]EnrichedItem, error) {
	if _, err := s.owned(userID, watchlistID); err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(watchlistID)
	if err != nil {
		return nil, domain.Executionf("watchlist item listing", err)
	}

	enriched := make([]EnrichedItem, 0, len(items))
	for _, item := range items {
		e := EnrichedItem{Item: item}
		if bar, err := s.bars.LatestBar(item.Symbol); err == nil && bar != nil {
			e.Close = bar.Close
			e.Date = bar.Date
		}
		enriched = append(enriched, e)
	}
	return enriched, nil
}

// owned loads a watchlist and checks it belongs to the user. A foreign
// watchlist is reported as not found, not as forbidden.
func (s *Service) owned(userID, watchlistID int64) (*Watchlist, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}

	wl, err := s.repo.GetByID(watchlistID)
	if err != nil {
		return nil, domain.Executionf("watchlist lookup", err)
	}
	if wl == nil || wl.UserID != userID {
		return nil, domain.NotFoundf("watchlist %d not found", watchlistID)
	}
	return wl, nil
}
