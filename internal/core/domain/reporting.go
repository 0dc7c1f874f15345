package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is the summed balance of one account as of a date.
type TrialBalanceRow struct {
	AccountID int64           `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
}

// TrialBalance is the full set of account balances as of a date. Rows are
// ordered by account ID. Balanced is true when the rows sum to exactly zero.
type TrialBalance struct {
	AsOf     time.Time         `json:"asOf"`
	UserID   *int64            `json:"userID,omitempty"`
	Rows     []TrialBalanceRow `json:"rows"`
	Total    decimal.Decimal   `json:"total"`
	Balanced bool              `json:"balanced"`
}
