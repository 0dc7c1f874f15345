package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/rules"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
)

const (
	MaxVoucherNameLength        = 100
	MaxVoucherDescriptionLength = 500
)

var (
	// ErrInvalidVoucherType is the validation error returned by every VoucherType setter.
	ErrInvalidVoucherType = apperrors.New(apperrors.KindValidation, "invalid voucher type")
	// ErrReferenceGeneration means a freshly minted reference was rejected by a rule.
	// Under correct configuration this cannot happen, so it is an integrity error.
	ErrReferenceGeneration = apperrors.New(apperrors.KindIntegrity, "reference generation failed")
)

// VoucherType describes a class of ledger transaction and its reference scheme.
// Identity is (slug, enabledFrom); the numeric ID is a storage detail only.
type VoucherType struct {
	id           int64
	slug         string
	name         string
	description  string
	prefix       string
	suffix       string
	sequenceKind sequence.Kind
	periodLayout string
	enabledFrom  time.Time
	enabledTo    *time.Time
}

// NewVoucherType creates an open-ended monotonic voucher type.
func NewVoucherType(slug, name string, enabledFrom time.Time) (*VoucherType, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, invalid("slug is required")
	}
	vt := &VoucherType{slug: slug, sequenceKind: sequence.KindMonotonic}
	if _, err := vt.SetName(name); err != nil {
		return nil, err
	}
	if _, err := vt.SetEnabledFrom(enabledFrom); err != nil {
		return nil, err
	}
	return vt, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidVoucherType, fmt.Sprintf(format, args...))
}

func (vt *VoucherType) ID() int64 { return vt.id }
func (vt *VoucherType) Slug() string { return vt.slug }
func (vt *VoucherType) Name() string { return vt.name }
func (vt *VoucherType) Description() string { return vt.description }
func (vt *VoucherType) Prefix() string { return vt.prefix }
func (vt *VoucherType) Suffix() string { return vt.suffix }
func (vt *VoucherType) SequenceKind() sequence.Kind { return vt.sequenceKind }
func (vt *VoucherType) PeriodLayout() string { return vt.periodLayout }
func (vt *VoucherType) EnabledFrom() time.Time { return vt.enabledFrom }

// EnabledTo returns the exclusive end of the validity window, nil when open-ended.
func (vt *VoucherType) EnabledTo() *time.Time {
	if vt.enabledTo == nil {
		return nil
	}
	t := *vt.enabledTo
	return &t
}

// SetID records the storage-generated identifier.
func (vt *VoucherType) SetID(id int64) *VoucherType {
	vt.id = id
	return vt
}

func (vt *VoucherType) SetName(name string) (*VoucherType, error) {
	if strings.TrimSpace(name) == "" {
		return vt, invalid("name is required")
	}
	if utf8.RuneCountInString(name) > MaxVoucherNameLength {
		return vt, invalid("name exceeds %d characters", MaxVoucherNameLength)
	}
	vt.name = name
	return vt, nil
}

func (vt *VoucherType) SetDescription(description string) (*VoucherType, error) {
	if utf8.RuneCountInString(description) > MaxVoucherDescriptionLength {
		return vt, invalid("description exceeds %d characters", MaxVoucherDescriptionLength)
	}
	vt.description = description
	return vt, nil
}

// SetPrefix sets the text placed before the sequence value. A non-empty prefix
// must fit rules.DefaultCharset.
func (vt *VoucherType) SetPrefix(prefix string) (*VoucherType, error) {
	if err := checkAffix("prefix", prefix); err != nil {
		return vt, err
	}
	vt.prefix = prefix
	return vt, nil
}

// SetSuffix sets the text placed after the sequence value. A non-empty suffix
// must fit rules.DefaultCharset.
func (vt *VoucherType) SetSuffix(suffix string) (*VoucherType, error) {
	if err := checkAffix("suffix", suffix); err != nil {
		return vt, err
	}
	vt.suffix = suffix
	return vt, nil
}

func checkAffix(name, value string) error {
	if value != "" && !rules.DefaultCharset.MatchString(value) {
		return invalid("%s %q contains characters outside %s", name, value, rules.DefaultCharset)
	}
	return nil
}

// SetSequence selects the sequence strategy. layout is only used by the
// date-reset kind and defaults to monthly periods.
func (vt *VoucherType) SetSequence(kind sequence.Kind, layout string) (*VoucherType, error) {
	switch kind {
	case sequence.KindMonotonic:
		layout = ""
	case sequence.KindDateReset:
		if layout == "" {
			layout = sequence.DefaultPeriodLayout
		}
	default:
		return vt, invalid("unknown sequence kind %q", kind)
	}
	vt.sequenceKind = kind
	vt.periodLayout = layout
	return vt, nil
}

// SetEnabledFrom moves the inclusive start of the window. It must stay strictly
// before an existing enabledTo.
func (vt *VoucherType) SetEnabledFrom(from time.Time) (*VoucherType, error) {
	if from.IsZero() {
		return vt, invalid("enabledFrom is required")
	}
	from = DateOf(from)
	if vt.enabledTo != nil && !from.Before(*vt.enabledTo) {
		return vt, invalid("enabledFrom %s must be before enabledTo %s", from.Format(DateLayout), vt.enabledTo.Format(DateLayout))
	}
	vt.enabledFrom = from
	return vt, nil
}

// SetEnabledTo closes (or reopens, with nil) the window. A non-nil value must be
// strictly after enabledFrom.
func (vt *VoucherType) SetEnabledTo(to *time.Time) (*VoucherType, error) {
	if to == nil {
		vt.enabledTo = nil
		return vt, nil
	}
	end := DateOf(*to)
	if !end.After(vt.enabledFrom) {
		return vt, invalid("enabledTo %s must be after enabledFrom %s", end.Format(DateLayout), vt.enabledFrom.Format(DateLayout))
	}
	vt.enabledTo = &end
	return vt, nil
}

// Validate re-checks every attribute. Used before persisting and after loading.
func (vt *VoucherType) Validate() error {
	if strings.TrimSpace(vt.slug) == "" {
		return invalid("slug is required")
	}
	if _, err := (&VoucherType{}).SetName(vt.name); err != nil {
		return err
	}
	if utf8.RuneCountInString(vt.description) > MaxVoucherDescriptionLength {
		return invalid("description exceeds %d characters", MaxVoucherDescriptionLength)
	}
	if err := checkAffix("prefix", vt.prefix); err != nil {
		return err
	}
	if err := checkAffix("suffix", vt.suffix); err != nil {
		return err
	}
	if vt.enabledFrom.IsZero() {
		return invalid("enabledFrom is required")
	}
	if vt.enabledTo != nil && !vt.enabledTo.After(vt.enabledFrom) {
		return invalid("enabledTo must be after enabledFrom")
	}
	switch vt.sequenceKind {
	case sequence.KindMonotonic:
	case sequence.KindDateReset:
		if vt.periodLayout == "" {
			return invalid("date-reset sequence requires a period layout")
		}
	default:
		return invalid("unknown sequence kind %q", vt.sequenceKind)
	}
	return nil
}

// Validity returns the half-open window [enabledFrom, enabledTo).
func (vt *VoucherType) Validity() Interval {
	return Interval{From: vt.enabledFrom, To: vt.EnabledTo()}
}

// ActiveOn reports whether the type is valid on the given date.
func (vt *VoucherType) ActiveOn(asOf time.Time) bool {
	return vt.Validity().Contains(asOf)
}

// CounterKey is the durable counter owned by this type.
func (vt *VoucherType) CounterKey() sequence.CounterKey {
	return sequence.CounterKey{Slug: vt.slug, EnabledFrom: vt.enabledFrom}
}

// SharesReferences reports whether vt and other, two non-overlapping versions
// of one slug, can mint the same reference. Each version owns its counter, so
// equal affixes with a monotonic sequence repeat every value. Date-reset
// versions with equal affixes and layout collide only when a period spans the
// boundary between their windows.
func (vt *VoucherType) SharesReferences(other *VoucherType) bool {
	if vt.slug != other.slug || vt.prefix != other.prefix || vt.suffix != other.suffix {
		return false
	}
	if vt.sequenceKind != other.sequenceKind {
		return false
	}
	if vt.sequenceKind == sequence.KindMonotonic {
		return true
	}
	if vt.periodLayout != other.periodLayout {
		return false
	}
	earlier, later := vt, other
	if later.enabledFrom.Before(earlier.enabledFrom) {
		earlier, later = later, earlier
	}
	if earlier.enabledTo == nil {
		return true
	}
	lastDay := earlier.enabledTo.AddDate(0, 0, -1)
	return lastDay.Format(vt.periodLayout) == later.enabledFrom.Format(vt.periodLayout)
}

// Sequence builds the type's sequence strategy over a durable counter.
func (vt *VoucherType) Sequence(counter sequence.Counter) (sequence.Strategy, error) {
	return sequence.New(vt.sequenceKind, counter, vt.CounterKey(), vt.periodLayout)
}

// GenerateReference mints prefix + next sequence value + suffix and runs it
// through bag. The counter advances exactly once per call, even when a rule
// rejects the result; the consumed value is never handed out again.
func (vt *VoucherType) GenerateReference(ctx context.Context, counter sequence.Counter, bag *rules.Bag, asOf time.Time) (string, error) {
	strategy, err := vt.Sequence(counter)
	if err != nil {
		return "", err
	}
	asOf = DateOf(asOf)
	value, err := strategy.NextVal(ctx, asOf)
	if err != nil {
		return "", err
	}
	reference := vt.prefix + value.String() + vt.suffix

	if bag == nil {
		return reference, nil
	}
	rc := rules.Context{Slug: vt.slug, Prefix: vt.prefix, Suffix: vt.suffix, AsOf: asOf}
	if err := bag.Validate(ctx, reference, rc); err != nil {
		var violation *rules.ViolationError
		if errors.As(err, &violation) {
			return "", fmt.Errorf("%w: %q: %w", ErrReferenceGeneration, reference, err)
		}
		// A predicate that could not run (storage lookup failed) keeps its own kind.
		return "", err
	}
	return reference, nil
}

func (vt *VoucherType) String() string {
	to := "open"
	if vt.enabledTo != nil {
		to = vt.enabledTo.Format(DateLayout)
	}
	return fmt.Sprintf("%s[%s,%s)", vt.slug, vt.enabledFrom.Format(DateLayout), to)
}
