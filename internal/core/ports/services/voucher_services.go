package services

import (
	"context"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
	"github.com/SscSPs/general_ledger/internal/dto"
)

// VoucherTypeReaderSvc resolves voucher types.
type VoucherTypeReaderSvc interface {
	// Resolve returns the single voucher type of slug active on asOf.
	Resolve(ctx context.Context, slug string, asOf time.Time) (*domain.VoucherType, error)

	// List returns every version of slug ordered by enabledFrom.
	List(ctx context.Context, slug string) ([]*domain.VoucherType, error)

	// Strategy builds the sequence strategy owned by vt.
	Strategy(vt *domain.VoucherType) (sequence.Strategy, error)
}

// VoucherTypeWriterSvc registers and retires voucher types.
type VoucherTypeWriterSvc interface {
	// Register validates vt and persists it unless its window overlaps another version of the slug.
	Register(ctx context.Context, vt *domain.VoucherType) (*domain.VoucherType, error)

	// RegisterFromRequest builds a voucher type from a request and registers it.
	RegisterFromRequest(ctx context.Context, req dto.RegisterVoucherTypeRequest) (*domain.VoucherType, error)

	// Retire closes (or moves) the end of the (slug, enabledFrom) window.
	Retire(ctx context.Context, slug string, enabledFrom time.Time, enabledTo *time.Time) (*domain.VoucherType, error)
}

// VoucherTypeRegistrySvc combines the voucher type service interfaces.
type VoucherTypeRegistrySvc interface {
	VoucherTypeReaderSvc
	VoucherTypeWriterSvc
}
