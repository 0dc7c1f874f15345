package mapping

import (
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/models"
)

// ToModelTransaction converts a domain Transaction to its header row and entry rows.
func ToModelTransaction(d domain.Transaction) (models.Transaction, []models.Entry) {
	header := models.Transaction{
		Reference:   d.Reference,
		Slug:        d.Slug,
		PostingDate: domain.DateOf(d.PostingDate),
		UserID:      d.UserID,
		Memo:        d.Memo,
		CreatedAt:   d.CreatedAt.UTC(),
	}
	if d.ReversalOf != "" {
		reversalOf := d.ReversalOf
		header.ReversalOf = &reversalOf
	}

	entries := make([]models.Entry, len(d.Entries))
	for i, e := range d.Entries {
		entries[i] = models.Entry{
			EntryID:     e.EntryID,
			Reference:   d.Reference,
			AccountID:   e.AccountID,
			Amount:      e.Amount,
			UserID:      e.UserID,
			PostingDate: domain.DateOf(e.PostingDate),
			CreatedAt:   e.CreatedAt.UTC(),
		}
	}
	return header, entries
}

// ToDomainTransaction converts a header row and its entry rows to a domain Transaction
func ToDomainTransaction(m models.Transaction, entries []models.Entry) domain.Transaction {
	txn := domain.Transaction{
		Reference:   m.Reference,
		Slug:        m.Slug,
		PostingDate: domain.DateOf(m.PostingDate),
		UserID:      m.UserID,
		Memo:        m.Memo,
		CreatedAt:   m.CreatedAt.UTC(),
		Entries:     make([]domain.LedgerEntry, len(entries)),
	}
	if m.ReversalOf != nil {
		txn.ReversalOf = *m.ReversalOf
	}
	for i, e := range entries {
		txn.Entries[i] = ToDomainEntry(e)
	}
	return txn
}

// ToDomainEntry converts a model Entry to a domain LedgerEntry
func ToDomainEntry(m models.Entry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:     m.EntryID,
		Reference:   m.Reference,
		AccountID:   m.AccountID,
		Amount:      m.Amount,
		UserID:      m.UserID,
		PostingDate: domain.DateOf(m.PostingDate),
		CreatedAt:   m.CreatedAt.UTC(),
	}
}
