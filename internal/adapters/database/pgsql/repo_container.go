// Package pgsql stores voucher types, sequence counters and the journal in
// PostgreSQL through a pgx connection pool.
package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
)

// poolCloser adapts pgxpool.Pool to portsrepo.Closer.
type poolCloser struct {
	pool *pgxpool.Pool
}

func (c poolCloser) Close() error {
	c.pool.Close()
	return nil
}

// NewRepositoryProvider wires every repository onto dbPool. Closing the
// provider closes the pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool, tables domain.TableMap) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		VoucherTypeRepo: newPgxVoucherTypeRepository(dbPool, tables),
		SequenceCounter: newPgxSequenceRepository(dbPool, tables),
		JournalRepo:     newPgxJournalRepository(dbPool, tables),
		ReportingRepo:   newReportingRepository(dbPool, tables),
		Closer:          poolCloser{pool: dbPool},
	}
}
