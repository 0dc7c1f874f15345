package services

import (
	"context"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/dto"
)

// PostingSvc is the only write path into the journal.
type PostingSvc interface {
	// Post validates, balances and atomically commits req, returning the minted reference.
	Post(ctx context.Context, req dto.PostRequest) (string, error)

	// Reverse posts a new transaction negating every entry of req.Reference.
	Reverse(ctx context.Context, req dto.ReverseRequest) (string, error)

	// GetTransaction loads a committed transaction by reference.
	GetTransaction(ctx context.Context, reference string) (*domain.Transaction, error)
}
