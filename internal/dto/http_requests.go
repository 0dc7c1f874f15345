package dto

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// The HTTP bodies carry calendar dates as YYYY-MM-DD strings and convert to
// the service requests above.

// VoucherTypeBody is the JSON body of a voucher type registration.
type VoucherTypeBody struct {
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Prefix       string  `json:"prefix"`
	Suffix       string  `json:"suffix"`
	SequenceKind string  `json:"sequenceKind"`
	PeriodLayout string  `json:"periodLayout"`
	EnabledFrom  string  `json:"enabledFrom"`
	EnabledTo    *string `json:"enabledTo"`
}

// ToRequest parses the dates of b.
func (b VoucherTypeBody) ToRequest() (RegisterVoucherTypeRequest, error) {
	from, err := parseOptionalDate("enabledFrom", b.EnabledFrom)
	if err != nil {
		return RegisterVoucherTypeRequest{}, err
	}
	to, err := parseDatePtr("enabledTo", b.EnabledTo)
	if err != nil {
		return RegisterVoucherTypeRequest{}, err
	}
	return RegisterVoucherTypeRequest{
		Slug:         b.Slug,
		Name:         b.Name,
		Description:  b.Description,
		Prefix:       b.Prefix,
		Suffix:       b.Suffix,
		SequenceKind: b.SequenceKind,
		PeriodLayout: b.PeriodLayout,
		EnabledFrom:  from,
		EnabledTo:    to,
	}, nil
}

// RetireVoucherTypeBody moves the end of the window starting at EnabledFrom.
// A null EnabledTo reopens it.
type RetireVoucherTypeBody struct {
	EnabledFrom string  `json:"enabledFrom"`
	EnabledTo   *string `json:"enabledTo"`
}

// Dates parses the window bounds of b.
func (b RetireVoucherTypeBody) Dates() (time.Time, *time.Time, error) {
	from, err := parseOptionalDate("enabledFrom", b.EnabledFrom)
	if err != nil {
		return time.Time{}, nil, err
	}
	if from.IsZero() {
		return time.Time{}, nil, apperrors.NewValidationError("enabledFrom is required")
	}
	to, err := parseDatePtr("enabledTo", b.EnabledTo)
	if err != nil {
		return time.Time{}, nil, err
	}
	return from, to, nil
}

// PostBody is the JSON body of a posting.
type PostBody struct {
	Slug    string             `json:"slug"`
	AsOf    string             `json:"asOf"`
	Entries []domain.EntryLine `json:"entries"`
	UserID  int64              `json:"userID"`
	Memo    string             `json:"memo"`
}

// ToRequest parses the posting date of b.
func (b PostBody) ToRequest() (PostRequest, error) {
	asOf, err := parseOptionalDate("asOf", b.AsOf)
	if err != nil {
		return PostRequest{}, err
	}
	return PostRequest{Slug: b.Slug, AsOf: asOf, Entries: b.Entries, UserID: b.UserID, Memo: b.Memo}, nil
}

// ReverseBody is the JSON body of a reversal; the reference comes from the path.
type ReverseBody struct {
	AsOf   string `json:"asOf"`
	UserID int64  `json:"userID"`
	Memo   string `json:"memo"`
}

// ToRequest builds the reversal of reference.
func (b ReverseBody) ToRequest(reference string) (ReverseRequest, error) {
	asOf, err := parseOptionalDate("asOf", b.AsOf)
	if err != nil {
		return ReverseRequest{}, err
	}
	return ReverseRequest{Reference: reference, AsOf: asOf, UserID: b.UserID, Memo: b.Memo}, nil
}

// ParseQueryDate parses an optional as-of query value, falling back to def.
func ParseQueryDate(name, raw string, def time.Time) (time.Time, error) {
	if raw == "" {
		return domain.DateOf(def), nil
	}
	return parseOptionalDate(name, raw)
}

// parseOptionalDate leaves an empty value zero so request validation reports it.
func parseOptionalDate(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("%s must be YYYY-MM-DD, got %q", name, raw)
	}
	return t, nil
}

func parseDatePtr(name string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseOptionalDate(name, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
