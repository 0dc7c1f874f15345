package dto

import (
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryResponse defines the data returned for one ledger entry.
type EntryResponse struct {
	AccountID int64           `json:"accountID"`
	Amount    decimal.Decimal `json:"amount"`
}

// TransactionResponse defines the data returned for a posted transaction.
type TransactionResponse struct {
	Reference   string          `json:"reference"`
	Slug        string          `json:"slug"`
	PostingDate string          `json:"postingDate"`
	UserID      int64           `json:"userID"`
	Memo        string          `json:"memo,omitempty"`
	ReversalOf  string          `json:"reversalOf,omitempty"`
	Entries     []EntryResponse `json:"entries"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	entries := make([]EntryResponse, len(txn.Entries))
	for i, e := range txn.Entries {
		entries[i] = EntryResponse{AccountID: e.AccountID, Amount: e.Amount}
	}
	return TransactionResponse{
		Reference:   txn.Reference,
		Slug:        txn.Slug,
		PostingDate: txn.PostingDate.Format(domain.DateLayout),
		UserID:      txn.UserID,
		Memo:        txn.Memo,
		ReversalOf:  txn.ReversalOf,
		Entries:     entries,
	}
}
