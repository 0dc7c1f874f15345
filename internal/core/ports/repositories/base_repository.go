package repositories

import "github.com/SscSPs/general_ledger/internal/core/sequence"

// SequenceCounter is the durable increment-and-return capability backing
// every sequence strategy.
type SequenceCounter interface {
	sequence.Counter
}

// Closer is implemented by stores holding connections.
type Closer interface {
	Close() error
}
