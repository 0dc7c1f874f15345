package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the stored header row of a posted transaction.
type Transaction struct {
	Reference   string    `db:"reference"`    // Primary Key
	Slug        string    `db:"slug"`         // Voucher type slug
	PostingDate time.Time `db:"posting_date"` // Calendar date, no time of day
	UserID      int64     `db:"user_id"`
	Memo        string    `db:"memo"`
	ReversalOf  *string   `db:"reversal_of"` // Unique; references another header
	CreatedAt   time.Time `db:"created_at"`
}

// Entry is one stored leg of a transaction.
type Entry struct {
	EntryID     string          `db:"entry_id"` // Primary Key (UUID)
	Reference   string          `db:"reference"`
	AccountID   int64           `db:"account_id"`
	Amount      decimal.Decimal `db:"amount"` // Signed; positive is a debit
	UserID      int64           `db:"user_id"`
	PostingDate time.Time       `db:"posting_date"`
	CreatedAt   time.Time       `db:"created_at"`
}
