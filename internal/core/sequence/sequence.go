// Package sequence produces the numeric segment of voucher references.
//
// A Strategy never keeps counter state in process: every value comes from a
// single atomic increment-and-return at the storage boundary (Counter), so
// callers in different processes sharing one store never observe the same
// value for the same key.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
)

// Kind selects a Strategy variant.
type Kind string

const (
	// KindMonotonic is one counter for the lifetime of the voucher type.
	KindMonotonic Kind = "MONOTONIC"
	// KindDateReset restarts at 1 whenever the calendar period changes.
	KindDateReset Kind = "DATE_RESET"
)

// DefaultPeriodLayout is a monthly period (e.g. 202002).
const DefaultPeriodLayout = "200601"

// ErrUnknownKind is returned by New for an unsupported Kind.
var ErrUnknownKind = apperrors.New(apperrors.KindValidation, "unknown sequence kind")

// CounterKey identifies one durable counter. Period is empty for monotonic counters.
type CounterKey struct {
	Slug        string
	EnabledFrom time.Time
	Period      string
}

func (k CounterKey) String() string {
	s := k.Slug + "@" + k.EnabledFrom.Format("2006-01-02")
	if k.Period != "" {
		s += "#" + k.Period
	}
	return s
}

// Counter is the durable storage capability behind every Strategy.
// IncrementAndGet must be a single atomic operation: the first call for a key
// returns 1, and no two calls for the same key ever return the same value.
type Counter interface {
	IncrementAndGet(ctx context.Context, key CounterKey) (int64, error)
}

// Value is one issued sequence value.
type Value struct {
	Period string
	N      int64
}

// String renders the value as it appears inside a reference.
func (v Value) String() string {
	if v.Period == "" {
		return strconv.FormatInt(v.N, 10)
	}
	return v.Period + "-" + strconv.FormatInt(v.N, 10)
}

// Strategy issues sequence values for one voucher type.
type Strategy interface {
	Kind() Kind
	// NextVal consumes and returns the next value. asOf only matters to
	// period-based strategies.
	NextVal(ctx context.Context, asOf time.Time) (Value, error)
}

// New selects the Strategy variant for kind.
func New(kind Kind, counter Counter, key CounterKey, periodLayout string) (Strategy, error) {
	if counter == nil {
		return nil, fmt.Errorf("sequence %s: counter is required", key)
	}
	switch kind {
	case KindMonotonic:
		return NewMonotonic(counter, key), nil
	case KindDateReset:
		return NewDateReset(counter, key, periodLayout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Monotonic is a single strictly increasing counter.
type Monotonic struct {
	counter Counter
	key     CounterKey
}

// NewMonotonic creates a monotonic strategy over key.
func NewMonotonic(counter Counter, key CounterKey) *Monotonic {
	key.Period = ""
	return &Monotonic{counter: counter, key: key}
}

func (m *Monotonic) Kind() Kind { return KindMonotonic }

func (m *Monotonic) NextVal(ctx context.Context, _ time.Time) (Value, error) {
	n, err := m.counter.IncrementAndGet(ctx, m.key)
	if err != nil {
		return Value{}, fmt.Errorf("sequence %s: %w", m.key, err)
	}
	return Value{N: n}, nil
}

// DateReset keeps one counter per calendar period. The period is part of the
// rendered value so references stay unique across resets.
type DateReset struct {
	counter Counter
	key     CounterKey
	layout  string
}

// NewDateReset creates a period-reset strategy. An empty layout means monthly.
func NewDateReset(counter Counter, key CounterKey, layout string) *DateReset {
	if layout == "" {
		layout = DefaultPeriodLayout
	}
	return &DateReset{counter: counter, key: key, layout: layout}
}

func (d *DateReset) Kind() Kind { return KindDateReset }

// Period returns the period label for asOf.
func (d *DateReset) Period(asOf time.Time) string {
	return asOf.UTC().Format(d.layout)
}

func (d *DateReset) NextVal(ctx context.Context, asOf time.Time) (Value, error) {
	key := d.key
	key.Period = d.Period(asOf)
	n, err := d.counter.IncrementAndGet(ctx, key)
	if err != nil {
		return Value{}, fmt.Errorf("sequence %s: %w", key, err)
	}
	return Value{Period: key.Period, N: n}, nil
}
