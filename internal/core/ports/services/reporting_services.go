package services

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceSvc computes point-in-time balances from the journal.
type TrialBalanceSvc interface {
	// GetAccountBalances sums committed entries posted on or before asOf, per account,
	// optionally for one user. Returns an empty map when nothing matches.
	GetAccountBalances(ctx context.Context, asOf time.Time, userID *int64) (map[int64]decimal.Decimal, error)

	// TrialBalance returns the ordered balances with their total.
	TrialBalance(ctx context.Context, asOf time.Time, userID *int64) (*domain.TrialBalance, error)
}
