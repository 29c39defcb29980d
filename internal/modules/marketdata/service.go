package marketdata

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
)

// BarFetcher fetches daily bars for one symbol from the upstream provider.
type BarFetcher interface {
	FetchDaily(symbol string) ([]StockBar, error)
}

// Service ingests provider data on a schedule and serves stored quotes.
// The provider's free tier allows only a handful of calls per minute, so
// each scheduler tick ingests exactly one symbol and the tracked list is
// walked round-robin.
type Service struct {
	repo    *Repository
	fetcher BarFetcher
	symbols []string
	log     zerolog.Logger

	mu   sync.Mutex
	next int
}

// NewService creates a new market data service
func NewService(repo *Repository, fetcher BarFetcher, symbols []string, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		fetcher: fetcher,
		symbols: symbols,
		log:     log.With().Str("service", "marketdata").Logger(),
	}
}

// IngestNext fetches and stores the daily series for the next tracked
// symbol in round-robin order. Called from the scheduler; a failed fetch
// is logged and the cursor still advances so one bad symbol cannot stall
// the rotation.
func (s *Service) IngestNext() {
	s.mu.Lock()
	if len(s.symbols) == 0 {
		s.mu.Unlock()
		return
	}
	symbol := s.symbols[s.next]
	s.next = (s.next + 1) % len(s.symbols)
	s.mu.Unlock()

	if err := s.Ingest(symbol); err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("Ingestion failed")
	}
}

// Ingest fetches and stores the daily series for one symbol.
func (s *Service) Ingest(symbol string) error {
	bars, err := s.fetcher.FetchDaily(symbol)
	if err != nil {
		return domain.Executionf("market data fetch", err)
	}

	if err := s.repo.UpsertBars(bars); err != nil {
		return domain.Executionf("market data store", err)
	}

	s.log.Info().Str("symbol", symbol).Int("bars", len(bars)).Msg("Symbol ingested")
	return nil
}

// LatestClose returns the most recent stored close for a symbol. Satisfies
// the quote needs of the trading and portfolio modules.
func (s *Service) LatestClose(symbol string) (float64, error) {
	bar, err := s.repo.Latest(symbol)
	if err != nil {
		return 0, domain.Executionf("quote lookup", err)
	}
	if bar == nil {
		return 0, domain.NotFoundf("no market data for %s", symbol)
	}
	return bar.Close, nil
}

// GetQuote returns the latest stored bar for a symbol.
func (s *Service) GetQuote(symbol string) (*Quote, error) {
	if symbol == "" {
		return nil, domain.Validationf("symbol must not be empty")
	}

	bar, err := s.repo.Latest(symbol)
	if err != nil {
		return nil, domain.Executionf("quote lookup", err)
	}
	if bar == nil {
		return nil, domain.NotFoundf("no market data for %s", symbol)
	}

	return &Quote{
		Symbol: bar.Symbol,
		Date:   bar.Date,
		Open:   bar.Open,
		High:   bar.High,
		Low:    bar.Low,
		Close:  bar.Close,
		Volume: bar.Volume,
	}, nil
}

// GetHistory returns up to limit stored bars for a symbol, most recent
// first.
func (s *Service) GetHistory(symbol string, limit int) ([]StockBar, error) {
	if symbol == "" {
		return nil, domain.Validationf("symbol must not be empty")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	bars, err := s.repo.Series(symbol, limit)
	if err != nil {
		return nil, domain.Executionf("history lookup", err)
	}
	return bars, nil
}

// TrackedSymbols returns the symbols with ingested data.
func (s *Service) TrackedSymbols() ([]string, error) {
	symbols, err := s.repo.Symbols()
	if err != nil {
		return nil, domain.Executionf("symbol listing", err)
	}
	return symbols, nil
}

// LatestBar exposes the raw latest bar, used by the watchlist module when
// snapshotting a symbol.
func (s *Service) LatestBar(symbol string) (*StockBar, error) {
	bar, err := s.repo.Latest(symbol)
	if err != nil {
		return nil, domain.Executionf("quote lookup", err)
	}
	return bar, nil
}
