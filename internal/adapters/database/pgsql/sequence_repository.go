package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
)

type PgxSequenceRepository struct {
	BaseRepository
}

func newPgxSequenceRepository(pool *pgxpool.Pool, tables domain.TableMap) portsrepo.SequenceCounter {
	return &PgxSequenceRepository{
		BaseRepository: BaseRepository{Pool: pool, Tables: tables},
	}
}

var _ portsrepo.SequenceCounter = (*PgxSequenceRepository)(nil)

// IncrementAndGet advances the counter for key in one statement. The row
// lock taken by ON CONFLICT DO UPDATE orders concurrent callers.
func (r *PgxSequenceRepository) IncrementAndGet(ctx context.Context, key sequence.CounterKey) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s AS seq (slug, enabled_from, period, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (slug, enabled_from, period) DO UPDATE SET last_value = seq.last_value + 1
		RETURNING last_value;
	`, r.Tables.VoucherSequences)

	var value int64
	if err := r.Pool.QueryRow(ctx, query, key.Slug, domain.DateOf(key.EnabledFrom), key.Period).Scan(&value); err != nil {
		return 0, classify("failed to increment sequence "+key.String(), err)
	}
	return value, nil
}
