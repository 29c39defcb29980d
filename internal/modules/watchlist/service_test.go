package watchlist

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpro/stockpro/internal/database"
	"github.com/stockpro/stockpro/internal/domain"
	"github.com/stockpro/stockpro/internal/modules/marketdata"
)

type stubBars struct {
	bars map[string]*marketdata.StockBar
}

func (s *stubBars) LatestBar(symbol string) (*marketdata.StockBar, error) {
	return s.bars[symbol], nil
}

func newWatchlistFixture(t *testing.T) (*Service, *stubBars) {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// each pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.AppSchema)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO users (id, email, balance, created_at) VALUES (1, 'w@example.com', 0, 0), (2, 'x@example.com', 0, 0)")
	require.NoError(t, err)

	bars := &stubBars{bars: map[string]*marketdata.StockBar{}}
	return NewService(NewRepository(db, log), bars, log), bars
}

func TestWatchlist_CreateListDelete(t *testing.T) {
	service, _ := newWatchlistFixture(t)

	wl, err := service.Create(1, "Tech")
	require.NoError(t, err)
	assert.Equal(t, "Tech", wl.Name)

	lists, err := service.List(1)
	require.NoError(t, err)
	require.Len(t, lists, 1)

	require.NoError(t, service.Delete(1, wl.ID))

	lists, err = service.List(1)
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestWatchlist_OwnershipEnforced(t *testing.T) {
	service, _ := newWatchlistFixture(t)

	wl, err := service.Create(1, "Mine")
	require.NoError(t, err)

	err = service.Delete(2, wl.ID)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	_, err = service.AddSymbol(2, wl.ID, "AAPL")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestWatchlist_AddSymbolSnapshotsLatestBar(t *testing.T) {
	service, bars := newWatchlistFixture(t)
	bars.bars["INFY"] = &marketdata.StockBar{Symbol: "INFY", Date: "2026-08-28", Close: 1500}

	wl, err := service.Create(1, "Tech")
	require.NoError(t, err)

	item, err := service.AddSymbol(1, wl.ID, "infy")
	require.NoError(t, err)
	assert.Equal(t, "INFY", item.Symbol)
	assert.Equal(t, "2026-08-28", item.SnapshotDate)

	// duplicate add rejected
	_, err = service.AddSymbol(1, wl.ID, "INFY")
	require.Error(t, err)
	assert.True(t, domain.IsBusinessRule(err))
}

func TestWatchlist_ListSymbolsEnriched(t *testing.T) {
	service, bars := newWatchlistFixture(t)
	bars.bars["INFY"] = &marketdata.StockBar{Symbol: "INFY", Date: "2026-08-28", Close: 1500}

	wl, err := service.Create(1, "Tech")
	require.NoError(t, err)

	_, err = service.AddSymbol(1, wl.ID, "INFY")
	require.NoError(t, err)
	_, err = service.AddSymbol(1, wl.ID, "UNPRICED")
	require.NoError(t, err)

	items, err := service.ListSymbols(1, wl.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.InDelta(t, 1500.0, items[0].Close, 1e-9)
	assert.Zero(t, items[1].Close)
}

func TestWatchlist_RemoveSymbol(t *testing.T) {
	service, _ := newWatchlistFixture(t)

	wl, err := service.Create(1, "Tech")
	require.NoError(t, err)

	_, err = service.AddSymbol(1, wl.ID, "TCS")
	require.NoError(t, err)

	require.NoError(t, service.RemoveSymbol(1, wl.ID, "TCS"))

	err = service.RemoveSymbol(1, wl.ID, "TCS")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestWatchlist_DeleteCascadesItems(t *testing.T) {
	service, _ := newWatchlistFixture(t)

	wl, err := service.Create(1, "Tech")
	require.NoError(t, err)
	_, err = service.AddSymbol(1, wl.ID, "TCS")
	require.NoError(t, err)

	require.NoError(t, service.Delete(1, wl.ID))

	_, err = service.ListSymbols(1, wl.ID)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}
