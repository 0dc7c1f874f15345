package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/models"
	"github.com/SscSPs/general_ledger/internal/utils/mapping"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const voucherTypeColumns = `id, slug, name, description, prefix, suffix, sequence_kind, period_layout, enabled_from, enabled_to, created_at`

// CreateVoucherType checks non-overlap and inserts inside one immediate
// transaction, which holds the database write lock from BEGIN.
func (s *Store) CreateVoucherType(ctx context.Context, vt *domain.VoucherType) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("failed to begin transaction", err)
	}
	defer rollback(tx)

	existing, err := s.findBySlug(ctx, tx, vt.Slug())
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.Validity().Overlaps(vt.Validity()) {
			return fmt.Errorf("%w: %s conflicts with %s", domain.ErrOverlappingValidity, vt, other)
		}
	}

	m := mapping.ToModelVoucherType(vt)
	var enabledTo sql.NullString
	if m.EnabledTo != nil {
		enabledTo = sql.NullString{String: formatDate(*m.EnabledTo), Valid: true}
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (slug, name, description, prefix, suffix, sequence_kind, period_layout, enabled_from, enabled_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.tables.VoucherTypes)
	res, err := tx.ExecContext(ctx, query,
		m.Slug, m.Name, m.Description, m.Prefix, m.Suffix, m.SequenceKind, m.PeriodLayout,
		formatDate(m.EnabledFrom), enabledTo, formatTimestamp(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err, "enabled_from") {
			return fmt.Errorf("%w: %s already registered", domain.ErrOverlappingValidity, vt)
		}
		return classify("failed to insert voucher type", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return classify("failed to read voucher type id", err)
	}

	if err := tx.Commit(); err != nil {
		return classify("failed to commit voucher type", err)
	}
	vt.SetID(id)
	return nil
}

// UpdateEnabledTo moves the end of one window after re-checking its neighbours.
func (s *Store) UpdateEnabledTo(ctx context.Context, slug string, enabledFrom time.Time, enabledTo *time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("failed to begin transaction", err)
	}
	defer rollback(tx)

	versions, err := s.findBySlug(ctx, tx, slug)
	if err != nil {
		return err
	}
	from := domain.DateOf(enabledFrom)
	var target *domain.VoucherType
	for _, v := range versions {
		if v.EnabledFrom().Equal(from) {
			target = v
		}
	}
	if target == nil {
		return fmt.Errorf("%w: voucher type %s from %s", apperrors.ErrNotFound, slug, from.Format(domain.DateLayout))
	}
	if _, err := target.SetEnabledTo(enabledTo); err != nil {
		return err
	}
	for _, other := range versions {
		if other != target && other.Validity().Overlaps(target.Validity()) {
			return fmt.Errorf("%w: %s conflicts with %s", domain.ErrOverlappingValidity, target, other)
		}
	}

	var to sql.NullString
	if end := target.EnabledTo(); end != nil {
		to = sql.NullString{String: formatDate(*end), Valid: true}
	}
	query := fmt.Sprintf(`UPDATE %s SET enabled_to = ? WHERE slug = ? AND enabled_from = ?`, s.tables.VoucherTypes)
	if _, err := tx.ExecContext(ctx, query, to, slug, formatDate(from)); err != nil {
		return classify("failed to update voucher type", err)
	}
	if err := tx.Commit(); err != nil {
		return classify("failed to commit voucher type", err)
	}
	return nil
}

// FindVoucherTypesBySlug returns every version of slug ordered by enabledFrom.
func (s *Store) FindVoucherTypesBySlug(ctx context.Context, slug string) ([]*domain.VoucherType, error) {
	return s.findBySlug(ctx, s.db, slug)
}

// FindActiveVoucherTypes returns the versions of slug whose window contains asOf.
func (s *Store) FindActiveVoucherTypes(ctx context.Context, slug string, asOf time.Time) ([]*domain.VoucherType, error) {
	day := formatDate(asOf)
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE slug = ? AND enabled_from <= ? AND (enabled_to IS NULL OR enabled_to > ?)
		ORDER BY enabled_from
	`, voucherTypeColumns, s.tables.VoucherTypes)
	return s.queryVoucherTypes(ctx, s.db, query, slug, day, day)
}

func (s *Store) findBySlug(ctx context.Context, q queryer, slug string) ([]*domain.VoucherType, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = ? ORDER BY enabled_from`, voucherTypeColumns, s.tables.VoucherTypes)
	return s.queryVoucherTypes(ctx, q, query, slug)
}

func (s *Store) queryVoucherTypes(ctx context.Context, q queryer, query string, args ...any) ([]*domain.VoucherType, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to query voucher types", err)
	}
	defer rows.Close()

	var ms []models.VoucherType
	for rows.Next() {
		var (
			m               models.VoucherType
			from, createdAt string
			to              sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Slug, &m.Name, &m.Description, &m.Prefix, &m.Suffix,
			&m.SequenceKind, &m.PeriodLayout, &from, &to, &createdAt); err != nil {
			return nil, classify("failed to scan voucher type", err)
		}
		if m.EnabledFrom, err = parseDate(from); err != nil {
			return nil, err
		}
		if to.Valid {
			end, err := parseDate(to.String)
			if err != nil {
				return nil, err
			}
			m.EnabledTo = &end
		}
		if m.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate voucher types", err)
	}
	return mapping.ToDomainVoucherTypes(ms)
}
