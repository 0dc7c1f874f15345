package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportingRepository defines aggregation reads over the journal.
type ReportingRepository interface {
	// SumBalances returns the exact sum of entry amounts per account for entries
	// posted on or before asOf, optionally restricted to one user. The map is
	// never nil.
	SumBalances(ctx context.Context, asOf time.Time, userID *int64) (map[int64]decimal.Decimal, error)
}
