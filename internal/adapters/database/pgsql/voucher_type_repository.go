package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/models"
	"github.com/SscSPs/general_ledger/internal/utils/mapping"
)

const voucherTypeColumns = `id, slug, name, description, prefix, suffix, sequence_kind, period_layout, enabled_from, enabled_to, created_at`

type PgxVoucherTypeRepository struct {
	BaseRepository
}

// newPgxVoucherTypeRepository creates a new repository for voucher type data.
func newPgxVoucherTypeRepository(pool *pgxpool.Pool, tables domain.TableMap) portsrepo.VoucherTypeRepositoryFacade {
	return &PgxVoucherTypeRepository{
		BaseRepository: BaseRepository{Pool: pool, Tables: tables},
	}
}

// Ensure PgxVoucherTypeRepository implements portsrepo.VoucherTypeRepositoryFacade
var _ portsrepo.VoucherTypeRepositoryFacade = (*PgxVoucherTypeRepository)(nil)

// lockSlug serialises writers of one slug until the transaction ends.
func (r *PgxVoucherTypeRepository) lockSlug(ctx context.Context, tx pgx.Tx, slug string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, r.Tables.VoucherTypes+":"+slug); err != nil {
		return classify("failed to lock voucher type slug", err)
	}
	return nil
}

// CreateVoucherType inserts vt under the slug lock after checking existing
// windows. The exclusion constraint backs the check.
func (r *PgxVoucherTypeRepository) CreateVoucherType(ctx context.Context, vt *domain.VoucherType) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Defer rollback in case of error
	defer r.Rollback(ctx, tx)

	if err := r.lockSlug(ctx, tx, vt.Slug()); err != nil {
		return err
	}
	existing, err := r.findBySlug(ctx, tx, vt.Slug())
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.Validity().Overlaps(vt.Validity()) {
			return fmt.Errorf("%w: %s conflicts with %s", domain.ErrOverlappingValidity, vt, other)
		}
	}

	m := mapping.ToModelVoucherType(vt)
	query := fmt.Sprintf(`
		INSERT INTO %s (slug, name, description, prefix, suffix, sequence_kind, period_layout, enabled_from, enabled_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id;
	`, r.Tables.VoucherTypes)
	var id int64
	err = tx.QueryRow(ctx, query,
		m.Slug,
		m.Name,
		m.Description,
		m.Prefix,
		m.Suffix,
		m.SequenceKind,
		m.PeriodLayout,
		m.EnabledFrom,
		m.EnabledTo,
	).Scan(&id)
	if err != nil {
		if code, _ := pgErrorCode(err); code == codeExclusionViolation || code == codeUniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrOverlappingValidity, vt)
		}
		return classify("failed to insert voucher type "+vt.String(), err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return err
	}
	vt.SetID(id)
	return nil
}

// UpdateEnabledTo moves the end of one window under the slug lock.
func (r *PgxVoucherTypeRepository) UpdateEnabledTo(ctx context.Context, slug string, enabledFrom time.Time, enabledTo *time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockSlug(ctx, tx, slug); err != nil {
		return err
	}
	versions, err := r.findBySlug(ctx, tx, slug)
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

	query := fmt.Sprintf(`UPDATE %s SET enabled_to = $1 WHERE slug = $2 AND enabled_from = $3;`, r.Tables.VoucherTypes)
	if _, err := tx.Exec(ctx, query, target.EnabledTo(), slug, from); err != nil {
		if code, _ := pgErrorCode(err); code == codeExclusionViolation {
			return fmt.Errorf("%w: %s", domain.ErrOverlappingValidity, target)
		}
		return classify("failed to update voucher type "+target.String(), err)
	}
	return r.Commit(ctx, tx)
}

// FindVoucherTypesBySlug returns every version of slug ordered by enabled_from.
func (r *PgxVoucherTypeRepository) FindVoucherTypesBySlug(ctx context.Context, slug string) ([]*domain.VoucherType, error) {
	return r.findBySlug(ctx, r.Pool, slug)
}

// FindActiveVoucherTypes returns the versions of slug whose window contains asOf.
func (r *PgxVoucherTypeRepository) FindActiveVoucherTypes(ctx context.Context, slug string, asOf time.Time) ([]*domain.VoucherType, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE slug = $1 AND enabled_from <= $2 AND (enabled_to IS NULL OR enabled_to > $2)
		ORDER BY enabled_from;
	`, voucherTypeColumns, r.Tables.VoucherTypes)
	return r.queryVoucherTypes(ctx, r.Pool, query, slug, domain.DateOf(asOf))
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PgxVoucherTypeRepository) findBySlug(ctx context.Context, q querier, slug string) ([]*domain.VoucherType, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1 ORDER BY enabled_from;`, voucherTypeColumns, r.Tables.VoucherTypes)
	return r.queryVoucherTypes(ctx, q, query, slug)
}

func (r *PgxVoucherTypeRepository) queryVoucherTypes(ctx context.Context, q querier, query string, args ...any) ([]*domain.VoucherType, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to query voucher types", err)
	}
	defer rows.Close()

	var ms []models.VoucherType
	for rows.Next() {
		var m models.VoucherType
		if err := rows.Scan(
			&m.ID,
			&m.Slug,
			&m.Name,
			&m.Description,
			&m.Prefix,
			&m.Suffix,
			&m.SequenceKind,
			&m.PeriodLayout,
			&m.EnabledFrom,
			&m.EnabledTo,
			&m.CreatedAt,
		); err != nil {
			return nil, classify("failed to scan voucher type", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to iterate voucher types", err)
	}
	return mapping.ToDomainVoucherTypes(ms)
}
