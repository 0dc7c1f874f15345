// Package storetest holds the behaviour every repository adapter must share.
// Adapter packages run ContractSuite against a fresh store per test.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
)

// ContractSuite tests the port contracts against one adapter.
type ContractSuite struct {
	suite.Suite

	// NewProvider returns an empty store. Cleanup is registered on t.
	NewProvider func(t *testing.T) portsrepo.RepositoryProvider
	// ConcurrentCallers is the fan-out used by the counter test.
	ConcurrentCallers int

	repos portsrepo.RepositoryProvider
	ctx   context.Context
}

func (s *ContractSuite) SetupTest() {
	s.repos = s.NewProvider(s.T())
	s.ctx = context.Background()
	if s.ConcurrentCallers == 0 {
		s.ConcurrentCallers = 32
	}
}

// Day parses a YYYY-MM-DD date or panics.
func Day(v string) time.Time {
	d, err := domain.ParseDate(v)
	if err != nil {
		panic(err)
	}
	return d
}

// DayPtr is Day returning a pointer.
func DayPtr(v string) *time.Time {
	d := Day(v)
	return &d
}

// NewVoucherType builds a valid voucher type for tests.
func NewVoucherType(t *testing.T, slug, from string, to *time.Time) *domain.VoucherType {
	t.Helper()
	vt, err := domain.NewVoucherType(slug, slug+" vouchers", Day(from))
	if err != nil {
		t.Fatalf("new voucher type: %v", err)
	}
	if _, err := vt.SetPrefix(slug + "_"); err != nil {
		t.Fatalf("set prefix: %v", err)
	}
	if _, err := vt.SetEnabledTo(to); err != nil {
		t.Fatalf("set enabledTo: %v", err)
	}
	return vt
}

// NewTransaction builds a committed-shape transaction of two legs.
func NewTransaction(reference, slug, date string, userID int64, debit, credit int64, amount string) domain.Transaction {
	amt := decimal.RequireFromString(amount)
	posted := Day(date)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return domain.Transaction{
		Reference:   reference,
		Slug:        slug,
		PostingDate: posted,
		UserID:      userID,
		Memo:        "test",
		CreatedAt:   now,
		Entries: []domain.LedgerEntry{
			{EntryID: reference + "-1", Reference: reference, AccountID: debit, Amount: amt, UserID: userID, PostingDate: posted, CreatedAt: now},
			{EntryID: reference + "-2", Reference: reference, AccountID: credit, Amount: amt.Neg(), UserID: userID, PostingDate: posted, CreatedAt: now},
		},
	}
}

func (s *ContractSuite) TestVoucherType_CreateAndFind() {
	repo := s.repos.VoucherTypeRepo

	later := NewVoucherType(s.T(), "GL", "2020-01-01", nil)
	_, err := later.SetSuffix("/HQ")
	s.Require().NoError(err)
	_, err = later.SetSequence(sequence.KindDateReset, "2006")
	s.Require().NoError(err)
	s.Require().NoError(repo.CreateVoucherType(s.ctx, later))
	s.NotZero(later.ID())

	earlier := NewVoucherType(s.T(), "GL", "2019-01-01", DayPtr("2019-06-01"))
	s.Require().NoError(repo.CreateVoucherType(s.ctx, earlier))

	versions, err := repo.FindVoucherTypesBySlug(s.ctx, "GL")
	s.Require().NoError(err)
	s.Require().Len(versions, 2)
	s.Equal(Day("2019-01-01"), versions[0].EnabledFrom())
	s.Equal(Day("2019-06-01"), *versions[0].EnabledTo())
	s.Equal(Day("2020-01-01"), versions[1].EnabledFrom())
	s.Nil(versions[1].EnabledTo())
	s.Equal("GL_", versions[1].Prefix())
	s.Equal("/HQ", versions[1].Suffix())
	s.Equal(sequence.KindDateReset, versions[1].SequenceKind())
	s.Equal("2006", versions[1].PeriodLayout())
	s.NoError(versions[1].Validate())

	active, err := repo.FindActiveVoucherTypes(s.ctx, "GL", Day("2019-05-31"))
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(Day("2019-01-01"), active[0].EnabledFrom())

	active, err = repo.FindActiveVoucherTypes(s.ctx, "GL", Day("2019-06-01"))
	s.Require().NoError(err)
	s.Empty(active, "enabledTo is exclusive")

	none, err := repo.FindVoucherTypesBySlug(s.ctx, "AP")
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *ContractSuite) TestVoucherType_RejectsOverlap() {
	repo := s.repos.VoucherTypeRepo
	s.Require().NoError(repo.CreateVoucherType(s.ctx, NewVoucherType(s.T(), "GL", "2019-01-01", DayPtr("2019-06-01"))))

	err := repo.CreateVoucherType(s.ctx, NewVoucherType(s.T(), "GL", "2019-03-01", DayPtr("2019-12-01")))
	s.ErrorIs(err, domain.ErrOverlappingValidity)

	err = repo.CreateVoucherType(s.ctx, NewVoucherType(s.T(), "GL", "2018-01-01", nil))
	s.ErrorIs(err, domain.ErrOverlappingValidity)

	s.NoError(repo.CreateVoucherType(s.ctx, NewVoucherType(s.T(), "GL", "2019-06-01", nil)), "touching windows do not overlap")
	s.NoError(repo.CreateVoucherType(s.ctx, NewVoucherType(s.T(), "AP", "2019-03-01", nil)), "other slugs are independent")
}

func (s *ContractSuite) TestVoucherType_ConcurrentOverlappingCreates() {
	repo := s.repos.VoucherTypeRepo
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from := Day("2020-01-01").AddDate(0, 0, i)
			vt, err := domain.NewVoucherType("JV", "journal vouchers", from)
			if err != nil {
				errs <- err
				return
			}
			errs <- repo.CreateVoucherType(s.ctx, vt)
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, domain.ErrOverlappingValidity)
	}
	s.Equal(1, succeeded, "open-ended windows of one slug always overlap")
}

func (s *ContractSuite) TestVoucherType_UpdateEnabledTo() {
	repo := s.repos.VoucherTypeRepo
	s.Require().NoError(repo.CreateVoucherType(s.ctx, NewVoucherType(s.T(), "GL", "2019-01-01", nil)))

	s.Require().NoError(repo.UpdateEnabledTo(s.ctx, "GL", Day("2019-01-01"), DayPtr("2020-01-01")))
	s.Require().NoError(repo.CreateVoucherType(s.ctx, NewVoucherType(s.T(), "GL", "2020-01-01", nil)))

	err := repo.UpdateEnabledTo(s.ctx, "GL", Day("2019-01-01"), nil)
	s.ErrorIs(err, domain.ErrOverlappingValidity, "reopening would overlap the successor")

	err = repo.UpdateEnabledTo(s.ctx, "GL", Day("2018-01-01"), DayPtr("2018-06-01"))
	s.True(apperrors.IsNotFound(err))

	versions, err := repo.FindVoucherTypesBySlug(s.ctx, "GL")
	s.Require().NoError(err)
	s.Require().Len(versions, 2)
	s.Equal(Day("2020-01-01"), *versions[0].EnabledTo())
}

func (s *ContractSuite) TestCounter_StartsAtOneAndIsPerKey() {
	counter := s.repos.SequenceCounter
	gl := sequence.CounterKey{Slug: "GL", EnabledFrom: Day("2020-01-01")}
	feb := sequence.CounterKey{Slug: "GL", EnabledFrom: Day("2020-01-01"), Period: "202002"}

	for want := int64(1); want <= 3; want++ {
		got, err := counter.IncrementAndGet(s.ctx, gl)
		s.Require().NoError(err)
		s.Equal(want, got)
	}
	got, err := counter.IncrementAndGet(s.ctx, feb)
	s.Require().NoError(err)
	s.Equal(int64(1), got)
}

func (s *ContractSuite) TestCounter_ConcurrentCallersGetDistinctValues() {
	counter := s.repos.SequenceCounter
	key := sequence.CounterKey{Slug: "GL", EnabledFrom: Day("2020-01-01")}
	n := s.ConcurrentCallers

	var wg sync.WaitGroup
	values := make(chan int64, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := counter.IncrementAndGet(s.ctx, key)
			if err != nil {
				errs <- err
				return
			}
			values <- v
		}()
	}
	wg.Wait()
	close(values)
	close(errs)

	for err := range errs {
		s.Fail("increment failed", err.Error())
	}
	seen := make(map[int64]bool, n)
	for v := range values {
		s.False(seen[v], "value %d issued twice", v)
		seen[v] = true
	}
	s.Len(seen, n)
	for i := int64(1); i <= int64(n); i++ {
		s.True(seen[i], "value %d missing", i)
	}
}

func (s *ContractSuite) TestJournal_SaveAndLoad() {
	repo := s.repos.JournalRepo
	txn := NewTransaction("GL_1", "GL", "2020-02-01", 7, 1, 2, "100.00")

	exists, err := repo.ReferenceExists(s.ctx, "GL_1")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(repo.SaveTransaction(s.ctx, txn))

	exists, err = repo.ReferenceExists(s.ctx, "GL_1")
	s.Require().NoError(err)
	s.True(exists)

	loaded, err := repo.FindTransactionByReference(s.ctx, "GL_1")
	s.Require().NoError(err)
	s.Equal("GL", loaded.Slug)
	s.Equal(int64(7), loaded.UserID)
	s.Equal(Day("2020-02-01"), loaded.PostingDate)
	s.Equal("test", loaded.Memo)
	s.Empty(loaded.ReversalOf)
	s.Require().Len(loaded.Entries, 2)
	s.True(loaded.IsBalanced())
	byAccount := map[int64]decimal.Decimal{}
	for _, e := range loaded.Entries {
		byAccount[e.AccountID] = e.Amount
		s.Equal("GL_1", e.Reference)
		s.NotEmpty(e.EntryID)
	}
	s.True(decimal.RequireFromString("100").Equal(byAccount[1]))
	s.True(decimal.RequireFromString("-100").Equal(byAccount[2]))

	_, err = repo.FindTransactionByReference(s.ctx, "GL_2")
	s.True(apperrors.IsNotFound(err))
}

func (s *ContractSuite) TestJournal_DuplicateReferenceWritesNothing() {
	repo := s.repos.JournalRepo
	s.Require().NoError(repo.SaveTransaction(s.ctx, NewTransaction("GL_1", "GL", "2020-02-01", 7, 1, 2, "100.00")))

	dup := NewTransaction("GL_1", "GL", "2020-02-01", 7, 3, 4, "5.00")
	dup.Entries[0].EntryID, dup.Entries[1].EntryID = "other-1", "other-2"
	err := repo.SaveTransaction(s.ctx, dup)
	s.ErrorIs(err, domain.ErrDuplicateReference)
	s.Equal(apperrors.KindIntegrity, apperrors.KindOf(err))

	balances, err := s.repos.ReportingRepo.SumBalances(s.ctx, Day("2020-12-31"), nil)
	s.Require().NoError(err)
	s.Len(balances, 2, "the rejected transaction left no entries")
}

func (s *ContractSuite) TestJournal_ReversalIsUnique() {
	repo := s.repos.JournalRepo
	s.Require().NoError(repo.SaveTransaction(s.ctx, NewTransaction("GL_1", "GL", "2020-02-01", 7, 1, 2, "100.00")))

	_, err := repo.FindReversalOf(s.ctx, "GL_1")
	s.True(apperrors.IsNotFound(err))

	rev := NewTransaction("GL_2", "GL", "2020-02-02", 7, 2, 1, "100.00")
	rev.ReversalOf = "GL_1"
	s.Require().NoError(repo.SaveTransaction(s.ctx, rev))

	found, err := repo.FindReversalOf(s.ctx, "GL_1")
	s.Require().NoError(err)
	s.Equal("GL_2", found.Reference)
	s.Equal("GL_1", found.ReversalOf)

	again := NewTransaction("GL_3", "GL", "2020-02-03", 7, 2, 1, "100.00")
	again.ReversalOf = "GL_1"
	s.ErrorIs(repo.SaveTransaction(s.ctx, again), domain.ErrAlreadyReversed)

	exists, err := repo.ReferenceExists(s.ctx, "GL_3")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ContractSuite) TestJournal_CancelledContextWritesNothing() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	err := s.repos.JournalRepo.SaveTransaction(ctx, NewTransaction("GL_1", "GL", "2020-02-01", 7, 1, 2, "1"))
	s.Error(err)

	exists, err := s.repos.JournalRepo.ReferenceExists(s.ctx, "GL_1")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ContractSuite) TestReporting_SumBalances() {
	repo := s.repos.JournalRepo
	s.Require().NoError(repo.SaveTransaction(s.ctx, NewTransaction("GL_1", "GL", "2020-02-01", 7, 1, 2, "100.00")))
	s.Require().NoError(repo.SaveTransaction(s.ctx, NewTransaction("GL_2", "GL", "2020-02-15", 7, 1, 3, "0.10")))
	s.Require().NoError(repo.SaveTransaction(s.ctx, NewTransaction("GL_3", "GL", "2020-02-15", 8, 2, 1, "0.20")))
	s.Require().NoError(repo.SaveTransaction(s.ctx, NewTransaction("GL_4", "GL", "2020-03-01", 7, 1, 2, "50")))

	reporting := s.repos.ReportingRepo

	empty, err := reporting.SumBalances(s.ctx, Day("2020-01-31"), nil)
	s.Require().NoError(err)
	s.NotNil(empty)
	s.Empty(empty)

	onFirst, err := reporting.SumBalances(s.ctx, Day("2020-02-01"), nil)
	s.Require().NoError(err)
	s.Len(onFirst, 2, "posting date is inclusive")

	all, err := reporting.SumBalances(s.ctx, Day("2020-02-29"), nil)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("99.9", all[1].String())
	s.Equal("-99.8", all[2].String())
	s.Equal("-0.1", all[3].String())

	user := int64(7)
	mine, err := reporting.SumBalances(s.ctx, Day("2020-02-29"), &user)
	s.Require().NoError(err)
	s.Equal("100.1", mine[1].String())
	s.Equal("-100", mine[2].String())

	total := decimal.Zero
	for _, b := range all {
		total = total.Add(b)
	}
	s.True(total.IsZero())
}
