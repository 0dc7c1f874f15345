package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
)

// --- Mock VoucherTypeRepository ---
type MockVoucherTypeRepository struct {
	mock.Mock
}

var _ portsrepo.VoucherTypeRepositoryFacade = (*MockVoucherTypeRepository)(nil)

func (m *MockVoucherTypeRepository) CreateVoucherType(ctx context.Context, vt *domain.VoucherType) error {
	args := m.Called(ctx, vt)
	return args.Error(0)
}

func (m *MockVoucherTypeRepository) UpdateEnabledTo(ctx context.Context, slug string, enabledFrom time.Time, enabledTo *time.Time) error {
	args := m.Called(ctx, slug, enabledFrom, enabledTo)
	return args.Error(0)
}

func (m *MockVoucherTypeRepository) FindVoucherTypesBySlug(ctx context.Context, slug string) ([]*domain.VoucherType, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VoucherType), args.Error(1)
}

func (m *MockVoucherTypeRepository) FindActiveVoucherTypes(ctx context.Context, slug string, asOf time.Time) ([]*domain.VoucherType, error) {
	args := m.Called(ctx, slug, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VoucherType), args.Error(1)
}

// --- Mock SequenceCounter ---
type MockSequenceCounter struct {
	mock.Mock
}

var _ portsrepo.SequenceCounter = (*MockSequenceCounter)(nil)

func (m *MockSequenceCounter) IncrementAndGet(ctx context.Context, key sequence.CounterKey) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock JournalRepository ---
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockJournalRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) FindTransactionByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockJournalRepository) FindReversalOf(ctx context.Context, reference string) (*domain.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) SumBalances(ctx context.Context, asOf time.Time, userID *int64) (map[int64]decimal.Decimal, error) {
	args := m.Called(ctx, asOf, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]decimal.Decimal), args.Error(1)
}

// --- Mock VoucherTypeReaderSvc ---
type MockVoucherTypeReader struct {
	mock.Mock
}

var _ portssvc.VoucherTypeReaderSvc = (*MockVoucherTypeReader)(nil)

func (m *MockVoucherTypeReader) Resolve(ctx context.Context, slug string, asOf time.Time) (*domain.VoucherType, error) {
	args := m.Called(ctx, slug, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VoucherType), args.Error(1)
}

func (m *MockVoucherTypeReader) List(ctx context.Context, slug string) ([]*domain.VoucherType, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VoucherType), args.Error(1)
}

func (m *MockVoucherTypeReader) Strategy(vt *domain.VoucherType) (sequence.Strategy, error) {
	args := m.Called(vt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(sequence.Strategy), args.Error(1)
}

// day parses a calendar date or panics.
func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

// voucherType builds a valid monotonic voucher type with prefix slug + "_".
func voucherType(slug, from string, to *time.Time) *domain.VoucherType {
	vt, err := domain.NewVoucherType(slug, slug+" vouchers", day(from))
	if err != nil {
		panic(err)
	}
	if _, err := vt.SetPrefix(slug + "_"); err != nil {
		panic(err)
	}
	if _, err := vt.SetEnabledTo(to); err != nil {
		panic(err)
	}
	return vt
}

func line(accountID int64, amount string) domain.EntryLine {
	return domain.EntryLine{AccountID: accountID, Amount: decimal.RequireFromString(amount)}
}
