package mapping

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
	"github.com/SscSPs/general_ledger/internal/models"
)

func TestToModelTransaction_ReversalLink(t *testing.T) {
	createdAt := time.Date(2020, 2, 1, 12, 0, 0, 0, time.FixedZone("IST", 19800))
	txn := domain.Transaction{
		Reference:   "GL_2",
		Slug:        "GL",
		PostingDate: time.Date(2020, 2, 1, 23, 0, 0, 0, time.UTC),
		UserID:      7,
		ReversalOf:  "GL_1",
		CreatedAt:   createdAt,
		Entries: []domain.LedgerEntry{
			{EntryID: "a", AccountID: 1, Amount: decimal.NewFromInt(-5), PostingDate: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)},
			{EntryID: "b", AccountID: 2, Amount: decimal.NewFromInt(5), PostingDate: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	header, entries := ToModelTransaction(txn)

	require.NotNil(t, header.ReversalOf)
	assert.Equal(t, "GL_1", *header.ReversalOf)
	assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), header.PostingDate)
	assert.Equal(t, time.UTC, header.CreatedAt.Location())
	require.Len(t, entries, 2)
	assert.Equal(t, "GL_2", entries[0].Reference)

	back := ToDomainTransaction(header, entries)
	assert.Equal(t, "GL_1", back.ReversalOf)
	assert.True(t, back.IsBalanced())

	txn.ReversalOf = ""
	header, _ = ToModelTransaction(txn)
	assert.Nil(t, header.ReversalOf)
}

func TestToDomainVoucherType(t *testing.T) {
	end := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	m := models.VoucherType{
		ID:           3,
		Slug:         "JV",
		Name:         "Journal voucher",
		Prefix:       "JV-",
		SequenceKind: string(sequence.KindDateReset),
		PeriodLayout: "2006",
		EnabledFrom:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EnabledTo:    &end,
	}

	vt, err := ToDomainVoucherType(m)

	require.NoError(t, err)
	assert.Equal(t, int64(3), vt.ID())
	assert.Equal(t, sequence.KindDateReset, vt.SequenceKind())
	assert.Equal(t, "2006", vt.PeriodLayout())
	assert.Equal(t, m, ToModelVoucherType(vt))
}

func TestToDomainVoucherType_CorruptRow(t *testing.T) {
	tests := []struct {
		name string
		m    models.VoucherType
	}{
		{name: "empty name", m: models.VoucherType{Slug: "JV", SequenceKind: "MONOTONIC", EnabledFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{name: "unknown kind", m: models.VoucherType{Slug: "JV", Name: "x", SequenceKind: "RANDOM", EnabledFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToDomainVoucherType(tt.m)
			assert.Equal(t, apperrors.KindIntegrity, apperrors.KindOf(err))
			assert.ErrorIs(t, err, domain.ErrInvalidVoucherType)
		})
	}

	out, err := ToDomainVoucherTypes(nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
}
