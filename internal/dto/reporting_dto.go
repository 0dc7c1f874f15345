package dto

import (
	"sort"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance response
type TrialBalanceRowResponse struct {
	AccountID int64           `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse represents the trial balance response
type TrialBalanceResponse struct {
	AsOf     string                    `json:"asOf"`
	Rows     []TrialBalanceRowResponse `json:"rows"`
	Total    decimal.Decimal           `json:"total"`
	Balanced bool                      `json:"balanced"`
}

// ToTrialBalanceResponse converts a domain.TrialBalance to its response DTO.
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	rows := make([]TrialBalanceRowResponse, len(tb.Rows))
	for i, r := range tb.Rows {
		rows[i] = TrialBalanceRowResponse{AccountID: r.AccountID, Balance: r.Balance}
	}
	return TrialBalanceResponse{
		AsOf:     tb.AsOf.Format(domain.DateLayout),
		Rows:     rows,
		Total:    tb.Total,
		Balanced: tb.Balanced,
	}
}

// ToAccountBalancesResponse converts a balance map to rows ordered by account ID.
func ToAccountBalancesResponse(balances map[int64]decimal.Decimal) []TrialBalanceRowResponse {
	rows := make([]TrialBalanceRowResponse, 0, len(balances))
	for accountID, balance := range balances {
		rows = append(rows, TrialBalanceRowResponse{AccountID: accountID, Balance: balance})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountID < rows[j].AccountID })
	return rows
}
