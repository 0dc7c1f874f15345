package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryLine is one leg of a posting request: a signed amount against an account.
// Positive amounts are debits, negative amounts are credits.
type EntryLine struct {
	AccountID int64           `json:"accountID" validate:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount"`
}

// IsDebit reports whether the line debits its account.
func (l EntryLine) IsDebit() bool {
	return l.Amount.IsPositive()
}

// LedgerEntry is one committed leg of a transaction. Immutable once committed.
type LedgerEntry struct {
	EntryID     string          `json:"entryID"`
	Reference   string          `json:"reference"`
	AccountID   int64           `json:"accountID"`
	Amount      decimal.Decimal `json:"amount"` // Signed; positive is a debit
	UserID      int64           `json:"userID"`
	PostingDate time.Time       `json:"postingDate"` // UTC calendar date
	CreatedAt   time.Time       `json:"createdAt"`
}

// Transaction is a balanced set of ledger entries sharing one reference.
type Transaction struct {
	Reference   string        `json:"reference"` // Natural key
	Slug        string        `json:"slug"`      // Voucher type slug
	PostingDate time.Time     `json:"postingDate"`
	UserID      int64         `json:"userID"`
	Memo        string        `json:"memo"`
	ReversalOf  string        `json:"reversalOf,omitempty"` // Reference of the reversed transaction
	CreatedAt   time.Time     `json:"createdAt"`
	Entries     []LedgerEntry `json:"entries"`
}

// Sum returns the exact sum of the entry amounts.
func (t Transaction) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range t.Entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// IsBalanced reports whether the transaction has at least two legs summing to zero.
func (t Transaction) IsBalanced() bool {
	return len(t.Entries) >= 2 && t.Sum().IsZero()
}

// SumLines returns the exact sum of the line amounts.
func SumLines(lines []EntryLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}
