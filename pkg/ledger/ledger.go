// Package ledger is the embeddable entry point to the general ledger: voucher
// type registration, balanced posting with generated references, reversals and
// point-in-time balances over a pluggable store.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/services"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/pkg/database"
)

type (
	VoucherType  = domain.VoucherType
	EntryLine    = domain.EntryLine
	Transaction  = domain.Transaction
	TrialBalance = domain.TrialBalance

	PostRequest                = dto.PostRequest
	ReverseRequest             = dto.ReverseRequest
	RegisterVoucherTypeRequest = dto.RegisterVoucherTypeRequest

	// Repositories bundles a store's ports for New.
	Repositories = portsrepo.RepositoryProvider

	Option = services.PostingServiceOption
)

var (
	WithMaxAttempts   = services.WithMaxAttempts
	WithRetryInterval = services.WithRetryInterval
	WithRuleBag       = services.WithRuleBag
	WithClock         = services.WithClock
)

// Ledger bundles the services over one store.
type Ledger struct {
	services *portssvc.ServiceContainer
	closer   portsrepo.Closer
}

// New builds a Ledger over repos. cfg supplies the retry policy and may be nil.
func New(cfg *Config, repos Repositories, options ...Option) *Ledger {
	return &Ledger{
		services: services.NewServiceContainer(cfg, repos, options...),
		closer:   repos.Closer,
	}
}

// Open builds a Ledger over the store selected by cfg, usually from NewConfig
// or LoadConfig. A nil cfg is a validation error.
func Open(ctx context.Context, cfg *Config, options ...Option) (*Ledger, error) {
	repos, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, repos, options...), nil
}

// Close releases the underlying store.
func (l *Ledger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// RegisterVoucherType persists vt unless its window overlaps another version of its slug.
func (l *Ledger) RegisterVoucherType(ctx context.Context, req RegisterVoucherTypeRequest) (*VoucherType, error) {
	return l.services.VoucherTypes.RegisterFromRequest(ctx, req)
}

// RetireVoucherType moves the end of the (slug, enabledFrom) window; nil reopens it.
func (l *Ledger) RetireVoucherType(ctx context.Context, slug string, enabledFrom time.Time, enabledTo *time.Time) (*VoucherType, error) {
	return l.services.VoucherTypes.Retire(ctx, slug, enabledFrom, enabledTo)
}

// VoucherTypes lists every version of slug ordered by enabledFrom.
func (l *Ledger) VoucherTypes(ctx context.Context, slug string) ([]*VoucherType, error) {
	return l.services.VoucherTypes.List(ctx, slug)
}

// Post commits a balanced transaction and returns its reference.
func (l *Ledger) Post(ctx context.Context, req PostRequest) (string, error) {
	return l.services.Posting.Post(ctx, req)
}

// Reverse posts the negation of a committed transaction and returns the new reference.
func (l *Ledger) Reverse(ctx context.Context, req ReverseRequest) (string, error) {
	return l.services.Posting.Reverse(ctx, req)
}

// GetTransaction loads a committed transaction.
func (l *Ledger) GetTransaction(ctx context.Context, reference string) (*Transaction, error) {
	return l.services.Posting.GetTransaction(ctx, reference)
}

// GetAccountBalances sums entries posted on or before asOf per account,
// optionally for one user. The map is empty, never nil, when nothing matches.
func (l *Ledger) GetAccountBalances(ctx context.Context, asOf time.Time, userID *int64) (map[int64]decimal.Decimal, error) {
	return l.services.TrialBalance.GetAccountBalances(ctx, asOf, userID)
}

// TrialBalance returns the balances ordered by account with their total.
func (l *Ledger) TrialBalance(ctx context.Context, asOf time.Time, userID *int64) (*TrialBalance, error) {
	return l.services.TrialBalance.TrialBalance(ctx, asOf, userID)
}
