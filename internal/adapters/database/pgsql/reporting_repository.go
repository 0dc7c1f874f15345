package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
)

type reportingRepository struct {
	BaseRepository
}

func newReportingRepository(pool *pgxpool.Pool, tables domain.TableMap) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: pool, Tables: tables},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// SumBalances aggregates with NUMERIC SUM, which is exact.
func (r *reportingRepository) SumBalances(ctx context.Context, asOf time.Time, userID *int64) (map[int64]decimal.Decimal, error) {
	query := fmt.Sprintf(`
		SELECT account_id, SUM(amount)
		FROM %s
		WHERE posting_date <= $1
	`, r.Tables.JournalEntries)
	args := []any{domain.DateOf(asOf)}
	if userID != nil {
		query += ` AND user_id = $2`
		args = append(args, *userID)
	}
	query += ` GROUP BY account_id;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to query account balances", err)
	}
	defer rows.Close()

	balances := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			accountID int64
			balance   decimal.Decimal
		)
		if err := rows.Scan(&accountID, &balance); err != nil {
			return nil, classify("failed to scan account balance", err)
		}
		balances[accountID] = balance
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate account balances", err)
	}
	return balances, nil
}
