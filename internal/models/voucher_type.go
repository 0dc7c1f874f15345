package models

import "time"

// VoucherType is the stored row of one voucher type version.
type VoucherType struct {
	ID           int64      `db:"id"`
	Slug         string     `db:"slug"`
	Name         string     `db:"name"`
	Description  string     `db:"description"`
	Prefix       string     `db:"prefix"`
	Suffix       string     `db:"suffix"`
	SequenceKind string     `db:"sequence_kind"`
	PeriodLayout string     `db:"period_layout"`
	EnabledFrom  time.Time  `db:"enabled_from"`
	EnabledTo    *time.Time `db:"enabled_to"` // Exclusive; nil is open-ended
	CreatedAt    time.Time  `db:"created_at"`
}
