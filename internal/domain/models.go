package domain

// TradeSide represents the direction of a trade
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Valid reports whether the side is one of the two known values.
func (s TradeSide) Valid() bool {
	return s == TradeSideBuy || s == TradeSideSell
}

// TransactionType classifies balance ledger entries
type TransactionType string

const (
	TransactionAdd      TransactionType = "ADD"
	TransactionWithdraw TransactionType = "WITHDRAW"
	TransactionBuy      TransactionType = "BUY"
	TransactionSell     TransactionType = "SELL"
)

// Valid reports whether the transaction type is known.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionAdd, TransactionWithdraw, TransactionBuy, TransactionSell:
		return true
	}
	return false
}

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID int64
	Email  string
}
