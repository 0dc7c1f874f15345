// Package memory is a process-local store implementing every repository port.
// One mutex guards all state, so each port method is a single atomic step.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
)

// Store holds voucher types, counters and the journal in memory.
type Store struct {
	mu           sync.Mutex
	nextID       int64
	voucherTypes map[string][]*domain.VoucherType
	counters     map[sequence.CounterKey]int64
	transactions map[string]domain.Transaction
	order        []string
	reversals    map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		voucherTypes: make(map[string][]*domain.VoucherType),
		counters:     make(map[sequence.CounterKey]int64),
		transactions: make(map[string]domain.Transaction),
		reversals:    make(map[string]string),
	}
}

var (
	_ portsrepo.VoucherTypeRepositoryFacade = (*Store)(nil)
	_ portsrepo.SequenceCounter             = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade     = (*Store)(nil)
	_ portsrepo.ReportingRepository         = (*Store)(nil)
	_ portsrepo.Closer                      = (*Store)(nil)
)

// NewRepositoryProvider wires one store into every port.
func NewRepositoryProvider() (portsrepo.RepositoryProvider, *Store) {
	s := NewStore()
	return portsrepo.RepositoryProvider{
		VoucherTypeRepo: s,
		SequenceCounter: s,
		JournalRepo:     s,
		ReportingRepo:   s,
		Closer:          s,
	}, s
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// CreateVoucherType implements portsrepo.VoucherTypeWriter.
func (s *Store) CreateVoucherType(ctx context.Context, vt *domain.VoucherType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.voucherTypes[vt.Slug()] {
		if existing.Validity().Overlaps(vt.Validity()) {
			return fmt.Errorf("%w: %s conflicts with %s", domain.ErrOverlappingValidity, vt, existing)
		}
	}
	s.nextID++
	vt.SetID(s.nextID)
	stored := *vt
	versions := append(s.voucherTypes[vt.Slug()], &stored)
	sort.Slice(versions, func(i, j int) bool { return versions[i].EnabledFrom().Before(versions[j].EnabledFrom()) })
	s.voucherTypes[vt.Slug()] = versions
	return nil
}

// UpdateEnabledTo implements portsrepo.VoucherTypeWriter.
func (s *Store) UpdateEnabledTo(ctx context.Context, slug string, enabledFrom time.Time, enabledTo *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	from := domain.DateOf(enabledFrom)
	var target *domain.VoucherType
	for _, v := range s.voucherTypes[slug] {
		if v.EnabledFrom().Equal(from) {
			target = v
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: voucher type %s from %s", apperrors.ErrNotFound, slug, from.Format(domain.DateLayout))
	}

	updated := *target
	if _, err := updated.SetEnabledTo(enabledTo); err != nil {
		return err
	}
	for _, other := range s.voucherTypes[slug] {
		if other != target && other.Validity().Overlaps(updated.Validity()) {
			return fmt.Errorf("%w: %s conflicts with %s", domain.ErrOverlappingValidity, &updated, other)
		}
	}
	*target = updated
	return nil
}

// FindVoucherTypesBySlug implements portsrepo.VoucherTypeReader.
func (s *Store) FindVoucherTypesBySlug(ctx context.Context, slug string) ([]*domain.VoucherType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.VoucherType, 0, len(s.voucherTypes[slug]))
	for _, v := range s.voucherTypes[slug] {
		c := *v
		out = append(out, &c)
	}
	return out, nil
}

// FindActiveVoucherTypes implements portsrepo.VoucherTypeReader.
func (s *Store) FindActiveVoucherTypes(ctx context.Context, slug string, asOf time.Time) ([]*domain.VoucherType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.VoucherType, 0, 1)
	for _, v := range s.voucherTypes[slug] {
		if v.ActiveOn(asOf) {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

// IncrementAndGet implements sequence.Counter.
func (s *Store) IncrementAndGet(ctx context.Context, key sequence.CounterKey) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key.EnabledFrom = domain.DateOf(key.EnabledFrom)
	s.counters[key]++
	return s.counters[key], nil
}

// SaveTransaction implements portsrepo.JournalWriter.
func (s *Store) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.transactions[txn.Reference]; ok {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateReference, txn.Reference)
	}
	if txn.ReversalOf != "" {
		if by, ok := s.reversals[txn.ReversalOf]; ok {
			return fmt.Errorf("%w: %q reversed by %q", domain.ErrAlreadyReversed, txn.ReversalOf, by)
		}
		s.reversals[txn.ReversalOf] = txn.Reference
	}
	s.transactions[txn.Reference] = cloneTransaction(txn)
	s.order = append(s.order, txn.Reference)
	return nil
}

// ReferenceExists implements portsrepo.JournalReader.
func (s *Store) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.transactions[reference]
	return ok, nil
}

// FindTransactionByReference implements portsrepo.JournalReader.
func (s *Store) FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.transactions[reference]
	if !ok {
		return nil, fmt.Errorf("%w: transaction %q", apperrors.ErrNotFound, reference)
	}
	c := cloneTransaction(txn)
	return &c, nil
}

// FindReversalOf implements portsrepo.JournalReader.
func (s *Store) FindReversalOf(ctx context.Context, reference string) (*domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	by, ok := s.reversals[reference]
	if !ok {
		return nil, fmt.Errorf("%w: reversal of %q", apperrors.ErrNotFound, reference)
	}
	c := cloneTransaction(s.transactions[by])
	return &c, nil
}

// SumBalances implements portsrepo.ReportingRepository.
func (s *Store) SumBalances(ctx context.Context, asOf time.Time, userID *int64) (map[int64]decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.DateOf(asOf)
	balances := make(map[int64]decimal.Decimal)
	for _, ref := range s.order {
		txn := s.transactions[ref]
		for _, e := range txn.Entries {
			if e.PostingDate.After(day) {
				continue
			}
			if userID != nil && e.UserID != *userID {
				continue
			}
			balances[e.AccountID] = balances[e.AccountID].Add(e.Amount)
		}
	}
	return balances, nil
}

// EntryCount returns the number of committed entries.
func (s *Store) EntryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, txn := range s.transactions {
		n += len(txn.Entries)
	}
	return n
}

func cloneTransaction(txn domain.Transaction) domain.Transaction {
	entries := make([]domain.LedgerEntry, len(txn.Entries))
	copy(entries, txn.Entries)
	txn.Entries = entries
	return txn
}
