package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// RegisterVoucherTypeRequest carries the attributes of a new voucher type.
// Length limits are enforced again by the domain setters.
type RegisterVoucherTypeRequest struct {
	Slug         string     `json:"slug" validate:"required,max=64"`
	Name         string     `json:"name" validate:"required,max=100"`
	Description  string     `json:"description" validate:"max=500"`
	Prefix       string     `json:"prefix" validate:"max=32"`
	Suffix       string     `json:"suffix" validate:"max=32"`
	SequenceKind string     `json:"sequenceKind" validate:"omitempty,oneof=MONOTONIC DATE_RESET"`
	PeriodLayout string     `json:"periodLayout" validate:"max=16"`
	EnabledFrom  time.Time  `json:"enabledFrom" validate:"required"`
	EnabledTo    *time.Time `json:"enabledTo"`
}

// VoucherTypeResponse is the read view of a voucher type.
type VoucherTypeResponse struct {
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Prefix       string  `json:"prefix"`
	Suffix       string  `json:"suffix"`
	SequenceKind string  `json:"sequenceKind"`
	PeriodLayout string  `json:"periodLayout,omitempty"`
	EnabledFrom  string  `json:"enabledFrom"`
	EnabledTo    *string `json:"enabledTo"`
}

// ToVoucherTypeResponse converts a domain.VoucherType to its response DTO.
func ToVoucherTypeResponse(vt *domain.VoucherType) VoucherTypeResponse {
	resp := VoucherTypeResponse{
		Slug:         vt.Slug(),
		Name:         vt.Name(),
		Description:  vt.Description(),
		Prefix:       vt.Prefix(),
		Suffix:       vt.Suffix(),
		SequenceKind: string(vt.SequenceKind()),
		PeriodLayout: vt.PeriodLayout(),
		EnabledFrom:  vt.EnabledFrom().Format(domain.DateLayout),
	}
	if to := vt.EnabledTo(); to != nil {
		s := to.Format(domain.DateLayout)
		resp.EnabledTo = &s
	}
	return resp
}
