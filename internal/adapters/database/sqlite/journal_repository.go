package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
	"github.com/SscSPs/general_ledger/internal/models"
	"github.com/SscSPs/general_ledger/internal/utils/mapping"
)

// IncrementAndGet advances the counter for key in one UPSERT statement.
func (s *Store) IncrementAndGet(ctx context.Context, key sequence.CounterKey) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (slug, enabled_from, period, last_value)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (slug, enabled_from, period) DO UPDATE SET last_value = last_value + 1
		RETURNING last_value
	`, s.tables.VoucherSequences)

	var value int64
	err := s.db.QueryRowContext(ctx, query, key.Slug, formatDate(key.EnabledFrom), key.Period).Scan(&value)
	if err != nil {
		return 0, classify("failed to increment sequence "+key.String(), err)
	}
	return value, nil
}

// SaveTransaction inserts the header and every entry in one transaction.
func (s *Store) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	header, entries := mapping.ToModelTransaction(txn)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("failed to begin transaction", err)
	}
	defer rollback(tx)

	var reversalOf sql.NullString
	if header.ReversalOf != nil {
		reversalOf = sql.NullString{String: *header.ReversalOf, Valid: true}
	}
	insertHeader := fmt.Sprintf(`
		INSERT INTO %s (reference, slug, posting_date, user_id, memo, reversal_of, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.tables.JournalTransactions)
	_, err = tx.ExecContext(ctx, insertHeader,
		header.Reference, header.Slug, formatDate(header.PostingDate), header.UserID,
		header.Memo, reversalOf, formatTimestamp(header.CreatedAt),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "reversal_of"):
			return fmt.Errorf("%w: %q", domain.ErrAlreadyReversed, txn.ReversalOf)
		case isUniqueViolation(err, "reference"):
			return fmt.Errorf("%w: %q", domain.ErrDuplicateReference, txn.Reference)
		}
		return classify("failed to insert transaction", err)
	}

	insertEntry := fmt.Sprintf(`
		INSERT INTO %s (entry_id, reference, account_id, amount, user_id, posting_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.tables.JournalEntries)
	stmt, err := tx.PrepareContext(ctx, insertEntry)
	if err != nil {
		return classify("failed to prepare entry insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.EntryID, e.Reference, e.AccountID, e.Amount.String(), e.UserID,
			formatDate(e.PostingDate), formatTimestamp(e.CreatedAt),
		)
		if err != nil {
			return classify("failed to insert entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify("failed to commit transaction", err)
	}
	return nil
}

// ReferenceExists reports whether reference has been committed.
func (s *Store) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE reference = ?)`, s.tables.JournalTransactions)
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, reference).Scan(&exists); err != nil {
		return false, classify("failed to check reference", err)
	}
	return exists, nil
}

// FindTransactionByReference loads a header and its entries.
func (s *Store) FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	return s.findTransaction(ctx, "reference", reference)
}

// FindReversalOf loads the transaction whose reversal_of is reference.
func (s *Store) FindReversalOf(ctx context.Context, reference string) (*domain.Transaction, error) {
	return s.findTransaction(ctx, "reversal_of", reference)
}

func (s *Store) findTransaction(ctx context.Context, column, value string) (*domain.Transaction, error) {
	query := fmt.Sprintf(`
		SELECT reference, slug, posting_date, user_id, memo, reversal_of, created_at
		FROM %s WHERE %s = ?
	`, s.tables.JournalTransactions, column)

	var (
		header                 models.Transaction
		postingDate, createdAt string
		reversalOf             sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&header.Reference, &header.Slug, &postingDate, &header.UserID, &header.Memo, &reversalOf, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction with %s %q", apperrors.ErrNotFound, column, value)
		}
		return nil, classify("failed to load transaction", err)
	}
	if header.PostingDate, err = parseDate(postingDate); err != nil {
		return nil, err
	}
	if header.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}
	if reversalOf.Valid {
		header.ReversalOf = &reversalOf.String
	}

	entries, err := s.findEntries(ctx, header.Reference)
	if err != nil {
		return nil, err
	}
	txn := mapping.ToDomainTransaction(header, entries)
	return &txn, nil
}

func (s *Store) findEntries(ctx context.Context, reference string) ([]models.Entry, error) {
	query := fmt.Sprintf(`
		SELECT entry_id, reference, account_id, amount, user_id, posting_date, created_at
		FROM %s WHERE reference = ? ORDER BY rowid
	`, s.tables.JournalEntries)
	rows, err := s.db.QueryContext(ctx, query, reference)
	if err != nil {
		return nil, classify("failed to query entries", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var (
			e                         models.Entry
			amount, posted, createdAt string
		)
		if err := rows.Scan(&e.EntryID, &e.Reference, &e.AccountID, &amount, &e.UserID, &posted, &createdAt); err != nil {
			return nil, classify("failed to scan entry", err)
		}
		if e.Amount, err = parseAmount(amount); err != nil {
			return nil, err
		}
		if e.PostingDate, err = parseDate(posted); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate entries", err)
	}
	return entries, nil
}

// SumBalances sums entry amounts per account in Go; SQLite's SUM is floating point.
func (s *Store) SumBalances(ctx context.Context, asOf time.Time, userID *int64) (map[int64]decimal.Decimal, error) {
	query := fmt.Sprintf(`SELECT account_id, amount FROM %s WHERE posting_date <= ?`, s.tables.JournalEntries)
	args := []any{formatDate(asOf)}
	if userID != nil {
		query += ` AND user_id = ?`
		args = append(args, *userID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to query balances", err)
	}
	defer rows.Close()

	balances := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			accountID int64
			raw       string
		)
		if err := rows.Scan(&accountID, &raw); err != nil {
			return nil, classify("failed to scan balance row", err)
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		balances[accountID] = balances[accountID].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate balances", err)
	}
	return balances, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.KindIntegrity, "stored amount is invalid", err)
	}
	return d, nil
}
