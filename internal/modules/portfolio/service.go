package portfolio

import (
	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/domain"
)

// QuoteProvider supplies the latest known close for a symbol. Defined here
// to avoid an import cycle with the market data module.
type QuoteProvider interface {
	LatestClose(symbol string) (float64, error)
}

// Service assembles a user's portfolio view: stored holdings enriched with
// the latest ingested prices.
type Service struct {
	positions *PositionRepository
	quotes    QuoteProvider
	log       zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(positions *PositionRepository, quotes QuoteProvider, log zerolog.Logger) *Service {
	return &Service{
		positions: positions,
		quotes:    quotes,
		log:       log.With().Str("service", "portfolio").Logger(),
	}
}

// GetPortfolio returns the user's enriched positions plus aggregate totals.
// A symbol without ingested price data is reported with a zero current
// price rather than failing the whole portfolio.
func (s *Service) GetPortfolio(userID int64) (*Summary, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}

	positions, err := s.positions.ListByUser(userID)
	if err != nil {
		return nil, domain.Executionf("portfolio retrieval", err)
	}

	summary := &Summary{Positions: make([]EnrichedPosition, 0, len(positions))}
	for _, pos := range positions {
		enriched := s.enrich(pos)
		summary.Positions = append(summary.Positions, enriched)
		summary.TotalValue += enriched.MarketValue
		summary.TotalCost += enriched.CostBasis
	}
	summary.UnrealizedPnL = summary.TotalValue - summary.TotalCost

	return summary, nil
}

// GetPosition returns a single enriched holding.
func (s *Service) GetPosition(userID int64, symbol string) (*EnrichedPosition, error) {
	if userID <= 0 {
		return nil, domain.Validationf("user ID must be valid")
	}
	if symbol == "" {
		return nil, domain.Validationf("symbol must not be empty")
	}

	pos, err := s.positions.GetByUserAndSymbol(userID, symbol)
	if err != nil {
		return nil, domain.Executionf("position retrieval", err)
	}
	if pos == nil {
		return nil, domain.NotFoundf("no holding in %s", symbol)
	}

	enriched := s.enrich(*pos)
	return &enriched, nil
}

func (s *Service) enrich(pos Position) EnrichedPosition {
	price, err := s.quotes.LatestClose(pos.Symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", pos.Symbol).Msg("No price available, reporting zero")
		price = 0
	}

	enriched := EnrichedPosition{
		Position:     pos,
		CurrentPrice: price,
		MarketValue:  price * float64(pos.Quantity),
		CostBasis:    pos.AvgPrice * float64(pos.Quantity),
	}
	enriched.UnrealizedPnL = enriched.MarketValue - enriched.CostBasis
	if enriched.CostBasis > 0 {
		enriched.UnrealizedPnLPct = enriched.UnrealizedPnL / enriched.CostBasis * 100
	}
	return enriched
}
