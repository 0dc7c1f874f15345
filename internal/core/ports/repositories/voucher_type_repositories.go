package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// VoucherTypeReader defines read operations for voucher types.
type VoucherTypeReader interface {
	// FindVoucherTypesBySlug returns every version of slug ordered by enabledFrom.
	FindVoucherTypesBySlug(ctx context.Context, slug string) ([]*domain.VoucherType, error)

	// FindActiveVoucherTypes returns the versions of slug whose window contains asOf.
	// More than one result means the non-overlap invariant was broken in storage.
	FindActiveVoucherTypes(ctx context.Context, slug string, asOf time.Time) ([]*domain.VoucherType, error)
}

// VoucherTypeWriter defines write operations for voucher types. Both methods
// check non-overlap for the slug and write in one atomic step, returning
// domain.ErrOverlappingValidity on conflict.
type VoucherTypeWriter interface {
	// CreateVoucherType persists vt and records its storage ID on it.
	CreateVoucherType(ctx context.Context, vt *domain.VoucherType) error

	// UpdateEnabledTo moves the end of the (slug, enabledFrom) window.
	// Returns apperrors.ErrNotFound when no such version exists.
	UpdateEnabledTo(ctx context.Context, slug string, enabledFrom time.Time, enabledTo *time.Time) error
}

// VoucherTypeRepositoryFacade combines all voucher type repository interfaces.
type VoucherTypeRepositoryFacade interface {
	VoucherTypeReader
	VoucherTypeWriter
}
