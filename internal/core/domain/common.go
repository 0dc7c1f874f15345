package domain

import (
	"regexp"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
)

// DateLayout is the calendar-date layout used for as-of and posting dates.
const DateLayout = "2006-01-02"

// DateOf normalises t to its UTC calendar date. The ledger never compares
// times of day.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// TableMap names the storage tables. Column names are fixed.
type TableMap struct {
	VoucherTypes        string `mapstructure:"TABLE_VOUCHER_TYPES"`
	VoucherSequences    string `mapstructure:"TABLE_VOUCHER_SEQUENCES"`
	JournalTransactions string `mapstructure:"TABLE_JOURNAL_TRANSACTIONS"`
	JournalEntries      string `mapstructure:"TABLE_JOURNAL_ENTRIES"`
}

// DefaultTableMap returns the table names created by the bundled migrations.
func DefaultTableMap() TableMap {
	return TableMap{
		VoucherTypes:        "voucher_types",
		VoucherSequences:    "voucher_sequences",
		JournalTransactions: "journal_transactions",
		JournalEntries:      "journal_entries",
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}(\.[A-Za-z_][A-Za-z0-9_]{0,62})?$`)

// Validate rejects names that cannot be safely interpolated into SQL.
func (m TableMap) Validate() error {
	for field, name := range map[string]string{
		"voucher types":        m.VoucherTypes,
		"voucher sequences":    m.VoucherSequences,
		"journal transactions": m.JournalTransactions,
		"journal entries":      m.JournalEntries,
	} {
		if !identifierPattern.MatchString(name) {
			return apperrors.NewValidationError("invalid table name %q for %s", name, field)
		}
	}
	return nil
}
