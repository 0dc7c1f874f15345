package mapping

import (
	"fmt"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
	"github.com/SscSPs/general_ledger/internal/models"
)

// ToModelVoucherType converts a domain VoucherType to a model VoucherType
func ToModelVoucherType(d *domain.VoucherType) models.VoucherType {
	return models.VoucherType{
		ID:           d.ID(),
		Slug:         d.Slug(),
		Name:         d.Name(),
		Description:  d.Description(),
		Prefix:       d.Prefix(),
		Suffix:       d.Suffix(),
		SequenceKind: string(d.SequenceKind()),
		PeriodLayout: d.PeriodLayout(),
		EnabledFrom:  d.EnabledFrom(),
		EnabledTo:    d.EnabledTo(),
	}
}

// ToDomainVoucherType rebuilds a domain VoucherType through its validating
// setters. A stored row that no longer validates is an integrity error.
func ToDomainVoucherType(m models.VoucherType) (*domain.VoucherType, error) {
	vt, err := domain.NewVoucherType(m.Slug, m.Name, m.EnabledFrom)
	if err != nil {
		return nil, corrupt(m, err)
	}
	steps := []func() (*domain.VoucherType, error){
		func() (*domain.VoucherType, error) { return vt.SetDescription(m.Description) },
		func() (*domain.VoucherType, error) { return vt.SetPrefix(m.Prefix) },
		func() (*domain.VoucherType, error) { return vt.SetSuffix(m.Suffix) },
		func() (*domain.VoucherType, error) { return vt.SetSequence(sequence.Kind(m.SequenceKind), m.PeriodLayout) },
		func() (*domain.VoucherType, error) { return vt.SetEnabledTo(m.EnabledTo) },
	}
	for _, step := range steps {
		if _, err := step(); err != nil {
			return nil, corrupt(m, err)
		}
	}
	return vt.SetID(m.ID), nil
}

// ToDomainVoucherTypes converts rows in order.
func ToDomainVoucherTypes(ms []models.VoucherType) ([]*domain.VoucherType, error) {
	out := make([]*domain.VoucherType, 0, len(ms))
	for _, m := range ms {
		vt, err := ToDomainVoucherType(m)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}

func corrupt(m models.VoucherType, err error) error {
	return apperrors.Wrap(apperrors.KindIntegrity, fmt.Sprintf("stored voucher type %d (%s) is invalid", m.ID, m.Slug), err)
}
