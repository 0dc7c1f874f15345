package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/models"
	"github.com/SscSPs/general_ledger/internal/utils/mapping"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal transactions and entries.
func newPgxJournalRepository(pool *pgxpool.Pool, tables domain.TableMap) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool, Tables: tables},
	}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// SaveTransaction inserts the header and a batch of entries inside one database transaction.
func (r *PgxJournalRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	header, entries := mapping.ToModelTransaction(txn)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Defer rollback in case of error
	defer r.Rollback(ctx, tx) // Ignored once committed

	headerQuery := fmt.Sprintf(`
		INSERT INTO %s (reference, slug, posting_date, user_id, memo, reversal_of, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`, r.Tables.JournalTransactions)
	_, err = tx.Exec(ctx, headerQuery,
		header.Reference,
		header.Slug,
		header.PostingDate,
		header.UserID,
		header.Memo,
		header.ReversalOf,
		header.CreatedAt,
	)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == codeUniqueViolation {
			if strings.Contains(constraint, "reversal_of") {
				return fmt.Errorf("%w: %q", domain.ErrAlreadyReversed, txn.ReversalOf)
			}
			return fmt.Errorf("%w: %q", domain.ErrDuplicateReference, txn.Reference)
		}
		return classify("failed to insert transaction "+header.Reference, err)
	}

	batch := &pgx.Batch{}
	entryQuery := fmt.Sprintf(`
		INSERT INTO %s (entry_id, reference, account_id, amount, user_id, posting_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`, r.Tables.JournalEntries)
	for _, e := range entries {
		batch.Queue(entryQuery,
			e.EntryID,
			e.Reference,
			e.AccountID,
			e.Amount,
			e.UserID,
			e.PostingDate,
			e.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	// Close reports the first failing command of the batch
	if err := br.Close(); err != nil {
		return classify("failed to insert entries for "+header.Reference, err)
	}

	return r.Commit(ctx, tx)
}

// ReferenceExists reports whether reference has been committed.
func (r *PgxJournalRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE reference = $1);`, r.Tables.JournalTransactions)
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, reference).Scan(&exists); err != nil {
		return false, classify("failed to check reference "+reference, err)
	}
	return exists, nil
}

// FindTransactionByReference retrieves a transaction and its entries.
func (r *PgxJournalRepository) FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	return r.findTransaction(ctx, "reference", reference)
}

// FindReversalOf retrieves the transaction that reverses reference.
func (r *PgxJournalRepository) FindReversalOf(ctx context.Context, reference string) (*domain.Transaction, error) {
	return r.findTransaction(ctx, "reversal_of", reference)
}

func (r *PgxJournalRepository) findTransaction(ctx context.Context, column, value string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT reference, slug, posting_date, user_id, memo, reversal_of, created_at
		FROM %s
		WHERE %s = $1;
	`, r.Tables.JournalTransactions, column)

	var header models.Transaction
	err := r.Pool.QueryRow(ctx, query, value).Scan(
		&header.Reference,
		&header.Slug,
		&header.PostingDate,
		&header.UserID,
		&header.Memo,
		&header.ReversalOf,
		&header.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction with %s %q", apperrors.ErrNotFound, column, value)
		}
		return nil, classify("failed to find transaction", err)
	}

	entries, err := r.findEntries(ctx, header.Reference)
	if err != nil {
		return nil, err
	}
	txn := mapping.ToDomainTransaction(header, entries)
	return &txn, nil
}

// findEntries loads the entries of reference in insertion order.
func (r *PgxJournalRepository) findEntries(ctx context.Context, reference string) ([]models.Entry, error) {
	query := fmt.Sprintf(`
		SELECT entry_id, reference, account_id, amount, user_id, posting_date, created_at
		FROM %s
		WHERE reference = $1
		ORDER BY created_at, ctid;
	`, r.Tables.JournalEntries)
	rows, err := r.Pool.Query(ctx, query, reference)
	if err != nil {
		return nil, classify("failed to query entries for "+reference, err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(
			&e.EntryID,
			&e.Reference,
			&e.AccountID,
			&e.Amount,
			&e.UserID,
			&e.PostingDate,
			&e.CreatedAt,
		); err != nil {
			return nil, classify("failed to scan entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate entries", err)
	}
	return entries, nil
}
