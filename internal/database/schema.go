package database

// schemas maps database names to their full schema. Each schema is
// idempotent so it can be applied on every startup.
var schemas = map[string]string{
	"app":    AppSchema,
	"market": MarketSchema,
}

// AppSchema holds all user-facing financial state: accounts, positions, the
// immutable trade log, the transaction ledger, saved cards and watchlists.
// Keeping these tables in one database means a trade's position change,
// trade append and balance adjustment commit in a single transaction.
const AppSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT,
	name TEXT NOT NULL DEFAULT '',
	provider TEXT NOT NULL DEFAULT 'local' CHECK (provider IN ('local', 'google')),
	pan_number TEXT UNIQUE,
	mobile_number TEXT UNIQUE,
	gender TEXT,
	dob TEXT,
	balance REAL NOT NULL DEFAULT 0 CHECK (balance >= 0),
	verified INTEGER NOT NULL DEFAULT 0,
	profile_completed INTEGER NOT NULL DEFAULT 0,
	mobile_verified INTEGER NOT NULL DEFAULT 0,
	email_verified INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	avg_price REAL NOT NULL CHECK (avg_price > 0),
	purchase_date TEXT NOT NULL,
	UNIQUE (user_id, symbol)
);

CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	symbol TEXT NOT NULL,
	side TEXT NOT NULL CHECK (side IN ('BUY', 'SELL')),
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	price REAL NOT NULL CHECK (price > 0),
	executed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_user ON trades(user_id, executed_at);
CREATE INDEX IF NOT EXISTS idx_trades_user_symbol ON trades(user_id, symbol);

CREATE TABLE IF NOT EXISTS transactions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	transaction_id TEXT NOT NULL UNIQUE,
	user_id INTEGER NOT NULL REFERENCES users(id),
	amount REAL NOT NULL CHECK (amount > 0),
	type TEXT NOT NULL CHECK (type IN ('ADD', 'WITHDRAW', 'BUY', 'SELL')),
	status TEXT NOT NULL DEFAULT 'SUCCESS',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, created_at);

CREATE TABLE IF NOT EXISTS saved_cards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	card_number TEXT NOT NULL UNIQUE,
	card_holder_name TEXT NOT NULL DEFAULT '',
	expiry_month INTEGER NOT NULL CHECK (expiry_month BETWEEN 1 AND 12),
	expiry_year INTEGER NOT NULL,
	cvv TEXT NOT NULL DEFAULT '',
	card_type TEXT NOT NULL DEFAULT 'Unknown',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_cards_user ON saved_cards(user_id);

CREATE TABLE IF NOT EXISTS watchlists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_watchlists_user ON watchlists(user_id);

CREATE TABLE IF NOT EXISTS watchlist_stocks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	watchlist_id INTEGER NOT NULL REFERENCES watchlists(id) ON DELETE CASCADE,
	symbol TEXT NOT NULL,
	snapshot_date TEXT NOT NULL,
	added_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_watchlist_stocks_watchlist ON watchlist_stocks(watchlist_id);
`

// MarketSchema holds externally ingested stock time-series data. Quotes are
// derived from the latest row per symbol.
const MarketSchema = `
CREATE TABLE IF NOT EXISTS stocks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	date TEXT NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume INTEGER NOT NULL,
	fetched_at INTEGER NOT NULL,
	UNIQUE (symbol, date)
);
CREATE INDEX IF NOT EXISTS idx_stocks_symbol_date ON stocks(symbol, date DESC);
`
