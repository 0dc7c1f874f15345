package domain_test

import (
	"testing"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_IsBalanced(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		want    bool
	}{
		{name: "simple pair", amounts: []string{"100.00", "-100.00"}, want: true},
		{name: "split credit", amounts: []string{"100.00", "-33.33", "-33.33", "-33.34"}, want: true},
		{name: "off by a cent", amounts: []string{"100.00", "-99.99"}, want: false},
		{name: "single leg", amounts: []string{"0"}, want: false},
		{name: "no legs", amounts: nil, want: false},
		{name: "binary-unfriendly fractions", amounts: []string{"0.1", "0.2", "-0.3"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := domain.Transaction{Reference: "GL_1"}
			for i, a := range tt.amounts {
				txn.Entries = append(txn.Entries, domain.LedgerEntry{
					AccountID: int64(i + 1),
					Amount:    decimal.RequireFromString(a),
				})
			}
			assert.Equal(t, tt.want, txn.IsBalanced())
		})
	}
}

func TestSumLines(t *testing.T) {
	lines := []domain.EntryLine{
		{AccountID: 1, Amount: decimal.RequireFromString("100.00")},
		{AccountID: 2, Amount: decimal.RequireFromString("-99.99")},
	}
	assert.True(t, decimal.RequireFromString("0.01").Equal(domain.SumLines(lines)))
	assert.True(t, lines[0].IsDebit())
	assert.False(t, lines[1].IsDebit())
	assert.True(t, domain.SumLines(nil).IsZero())
}
