package repositories

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
)

// JournalReader defines read operations on posted transactions.
type JournalReader interface {
	// ReferenceExists reports whether a transaction with this reference has been committed.
	ReferenceExists(ctx context.Context, reference string) (bool, error)

	// FindTransactionByReference loads a transaction and its entries.
	// Returns apperrors.ErrNotFound when no such reference exists.
	FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error)

	// FindReversalOf loads the transaction reversing reference.
	// Returns apperrors.ErrNotFound when it has not been reversed.
	FindReversalOf(ctx context.Context, reference string) (*domain.Transaction, error)
}

// JournalWriter defines the single write path into the journal.
type JournalWriter interface {
	// SaveTransaction persists the transaction header and all of its entries as one
	// atomic unit. On any error nothing is visible to readers. A reference that is
	// already present yields domain.ErrDuplicateReference; a second reversal of the
	// same transaction yields domain.ErrAlreadyReversed.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// JournalRepositoryFacade combines all journal-related repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
