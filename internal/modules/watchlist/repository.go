package watchlist

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const watchlistsColumns = "id, user_id, name, created_at"
const itemsColumns = "id, watchlist_id, symbol, snapshot_date, added_at"

// Repository handles watchlist database operations
type Repository struct {
	appDB *sql.DB
	log   zerolog.Logger
}

// NewRepository creates a new watchlist repository
func NewRepository(appDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		appDB: appDB,
		log:   log.With().Str("repo", "watchlist").Logger(),
	}
}

// Create stores a new watchlist.
func (r *Repository) Create(userID int64, name string) (*Watchlist, error) {
	now := time.Now().Unix()
	res, err := r.appDB.Exec("INSERT INTO watchlists (user_id, name, created_at) VALUES (?, ?, ?)", userID, name, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create watchlist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist id: %w", err)
	}

	return &Watchlist{ID: id, UserID: userID, Name: name, CreatedAt: time.Unix(now, 0).UTC()}, nil
}

// GetByID returns a watchlist, or nil when it does not exist.
func (r *Repository) GetByID(id int64) (*Watchlist, error) {
	query := fmt.Sprintf("SELECT %s FROM watchlists WHERE id = ?", watchlistsColumns)

	wl, err := scanWatchlist(r.appDB.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return &wl, nil
}

// ListByUser returns a user's watchlists, oldest first.
func (r *Repository) ListByUser(userID int64) ([]Watchlist, error) {
	query := fmt.Sprintf("SELECT %s FROM watchlists WHERE user_id = ? ORDER BY id", watchlistsColumns)

	rows, err := r.appDB.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlists: %w", err)
	}
	defer rows.Close()

	var lists []Watchlist
	for rows.Next() {
		wl, err := scanWatchlist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist: %w", err)
		}
		lists = append(lists, wl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlists: %w", err)
	}

	return lists, nil
}

// Delete removes a watchlist; its items cascade. Returns sql.ErrNoRows
// when nothing was deleted.
func (r *Repository) Delete(id int64) error {
	res, err := r.appDB.Exec("DELETE FROM watchlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist: %w", err)
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

// AddItem stores a tracked symbol on a watchlist.
func (r *Repository) AddItem(watchlistID int64, symbol, snapshotDate string) (*Item, error) {
	now := time.Now().Unix()
	res, err := r.appDB.Exec(
		"INSERT INTO watchlist_stocks (watchlist_id, symbol, snapshot_date, added_at) VALUES (?, ?, ?, ?)",
		watchlistID, symbol, snapshotDate, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add watchlist item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get item id: %w", err)
	}

	return &Item{
		ID:           id,
		WatchlistID:  watchlistID,
		Symbol:       symbol,
		SnapshotDate: snapshotDate,
		AddedAt:      time.Unix(now, 0).UTC(),
	}, nil
}

// HasItem reports whether a symbol is already on a watchlist.
func (r *Repository) HasItem(watchlistID int64, symbol string) (bool, error) {
	var one int
	err := r.appDB.QueryRow("SELECT 1 FROM watchlist_stocks WHERE watchlist_id = ? AND symbol = ?", watchlistID, symbol).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist item: %w", err)
	}
	return true, nil
}

// ListItems returns a watchlist's tracked symbols, oldest first.
func (r *Repository) ListItems(watchlistID int64) ([]Item, error) {
	query := fmt.Sprintf("SELECT %s FROM watchlist_stocks WHERE watchlist_id = ? ORDER BY id", itemsColumns)

	rows, err := r.appDB.Query(query, watchlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist items: %w", err)
	}

	return items, nil
}

// RemoveItem removes a symbol from a watchlist. Returns sql.ErrNoRows when
// the symbol was not on it.
func (r *Repository) RemoveItem(watchlistID int64, symbol string) error {
	res, err := r.appDB.Exec("DELETE FROM watchlist_stocks WHERE watchlist_id = ? AND symbol = ?", watchlistID, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check remove result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanWatchlist(row interface{ Scan(...interface{}) error }) (Watchlist, error) {
	var wl Watchlist
	var createdAt int64

	if err := row.Scan(&wl.ID, &wl.UserID, &wl.Name, &createdAt); err != nil {
		return Watchlist{}, err
	}

	wl.CreatedAt = time.Unix(createdAt, 0).UTC()
	return wl, nil
}

func scanItem(row interface{ Scan(...interface{}) error }) (Item, error) {
	var item Item
	var addedAt int64

	if err := row.Scan(&item.ID, &item.WatchlistID, &item.Symbol, &item.SnapshotDate, &addedAt); err != nil {
		return Item{}, err
	}

	item.AddedAt = time.Unix(addedAt, 0).UTC()
	return item, nil
}
