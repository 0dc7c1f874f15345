package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/rules"
	"github.com/SscSPs/general_ledger/internal/dto"
	"github.com/SscSPs/general_ledger/internal/platform/logging"
)

const (
	DefaultPostMaxAttempts          uint = 3
	DefaultPostRetryInitialInterval      = 50 * time.Millisecond
	DefaultPostRetryMaxInterval          = time.Second
)

// postingService is the only write path into the journal.
type postingService struct {
	BaseService
	voucherTypes portssvc.VoucherTypeReaderSvc
	counter      portsrepo.SequenceCounter
	journalRepo  portsrepo.JournalRepositoryFacade

	ruleBag         *rules.Bag
	maxAttempts     uint
	initialInterval time.Duration
	maxInterval     time.Duration
	now             func() time.Time
}

// PostingServiceOption is a functional option for configuring the posting service
type PostingServiceOption func(*postingService)

// WithMaxAttempts bounds how often a post is tried when storage reports contention.
func WithMaxAttempts(n uint) PostingServiceOption {
	return func(s *postingService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithRetryInterval sets the exponential backoff between attempts.
func WithRetryInterval(initial, maxInterval time.Duration) PostingServiceOption {
	return func(s *postingService) {
		if initial > 0 {
			s.initialInterval = initial
		}
		if maxInterval >= s.initialInterval {
			s.maxInterval = maxInterval
		}
	}
}

// WithRuleBag replaces the default reference rules.
func WithRuleBag(bag *rules.Bag) PostingServiceOption {
	return func(s *postingService) {
		s.ruleBag = bag
	}
}

// WithClock overrides the source of CreatedAt timestamps.
func WithClock(now func() time.Time) PostingServiceOption {
	return func(s *postingService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPostingService creates a new posting service with the provided options
func NewPostingService(voucherTypes portssvc.VoucherTypeReaderSvc, counter portsrepo.SequenceCounter, journalRepo portsrepo.JournalRepositoryFacade, options ...PostingServiceOption) portssvc.PostingSvc {
	svc := &postingService{
		voucherTypes:    voucherTypes,
		counter:         counter,
		journalRepo:     journalRepo,
		maxAttempts:     DefaultPostMaxAttempts,
		initialInterval: DefaultPostRetryInitialInterval,
		maxInterval:     DefaultPostRetryMaxInterval,
		now:             time.Now,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	if svc.ruleBag == nil {
		svc.ruleBag = rules.Default(journalRepo)
	}
	return svc
}

// Ensure postingService implements the PostingSvc interface
var _ portssvc.PostingSvc = (*postingService)(nil)

// Post validates and balances req, resolves its voucher type and commits the
// transaction under a freshly minted reference.
func (s *postingService) Post(ctx context.Context, req dto.PostRequest) (string, error) {
	req.Slug = strings.TrimSpace(req.Slug)
	ctx, _ = logging.WithRequestLogger(ctx, slog.String("slug", req.Slug))

	if err := dto.Validate(req); err != nil {
		s.LogWarn(ctx, err, "Rejected invalid posting request")
		return "", err
	}
	if err := checkLines(req.Entries); err != nil {
		s.LogWarn(ctx, err, "Rejected posting request",
			slog.Int64("user_id", req.UserID),
			slog.String("sum", domain.SumLines(req.Entries).String()))
		return "", err
	}

	// Resolved once; a retry reuses the same version.
	vt, err := s.voucherTypes.Resolve(ctx, req.Slug, req.AsOf)
	if err != nil {
		s.LogWarn(ctx, err, "Could not resolve voucher type", slog.String("as_of", req.AsOf.Format(domain.DateLayout)))
		return "", err
	}

	reference, err := s.commit(ctx, vt, posting{
		lines:  req.Entries,
		asOf:   req.AsOf,
		userID: req.UserID,
		memo:   req.Memo,
	})
	if err != nil {
		return "", err
	}

	s.LogInfo(ctx, "Transaction posted",
		slog.String("reference", reference),
		slog.Int64("user_id", req.UserID),
		slog.Int("entries", len(req.Entries)))
	return reference, nil
}

// Reverse posts a transaction negating every entry of req.Reference under the
// same slug, resolved as of the reversal date.
func (s *postingService) Reverse(ctx context.Context, req dto.ReverseRequest) (string, error) {
	ctx, _ = logging.WithRequestLogger(ctx, slog.String("reversal_of", req.Reference))

	if err := dto.Validate(req); err != nil {
		s.LogWarn(ctx, err, "Rejected invalid reversal request")
		return "", err
	}

	original, err := s.journalRepo.FindTransactionByReference(ctx, req.Reference)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", err
		}
		s.LogError(ctx, err, "Failed to load transaction for reversal")
		return "", fmt.Errorf("failed to load transaction %q: %w", req.Reference, err)
	}
	if original.ReversalOf != "" {
		return "", fmt.Errorf("%w: %q is itself the reversal of %q", domain.ErrAlreadyReversed, original.Reference, original.ReversalOf)
	}
	asOf := domain.DateOf(req.AsOf)
	if asOf.Before(original.PostingDate) {
		return "", apperrors.NewValidationError("reversal date %s is before posting date %s of %q",
			asOf.Format(domain.DateLayout), original.PostingDate.Format(domain.DateLayout), original.Reference)
	}

	existing, err := s.journalRepo.FindReversalOf(ctx, original.Reference)
	switch {
	case err == nil:
		return "", fmt.Errorf("%w: %q reversed by %q", domain.ErrAlreadyReversed, original.Reference, existing.Reference)
	case !apperrors.IsNotFound(err):
		s.LogError(ctx, err, "Failed to look up existing reversal")
		return "", fmt.Errorf("failed to look up reversal of %q: %w", original.Reference, err)
	}

	lines := make([]domain.EntryLine, len(original.Entries))
	for i, e := range original.Entries {
		lines[i] = domain.EntryLine{AccountID: e.AccountID, Amount: e.Amount.Neg()}
	}
	memo := req.Memo
	if memo == "" {
		memo = "Reversal of " + original.Reference
	}

	vt, err := s.voucherTypes.Resolve(ctx, original.Slug, asOf)
	if err != nil {
		s.LogWarn(ctx, err, "Could not resolve voucher type for reversal", slog.String("slug", original.Slug))
		return "", err
	}

	reference, err := s.commit(ctx, vt, posting{
		lines:      lines,
		asOf:       asOf,
		userID:     req.UserID,
		memo:       memo,
		reversalOf: original.Reference,
	})
	if err != nil {
		return "", err
	}

	s.LogInfo(ctx, "Transaction reversed", slog.String("reference", reference))
	return reference, nil
}

// GetTransaction loads a committed transaction by reference.
func (s *postingService) GetTransaction(ctx context.Context, reference string) (*domain.Transaction, error) {
	txn, err := s.journalRepo.FindTransactionByReference(ctx, reference)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.LogError(ctx, err, "Failed to load transaction", slog.String("reference", reference))
		}
		return nil, err
	}
	return txn, nil
}

type posting struct {
	lines      []domain.EntryLine
	asOf       time.Time
	userID     int64
	memo       string
	reversalOf string
}

// commit mints a reference and saves the transaction, retrying the pair on
// transient storage errors. Every attempt consumes a fresh sequence value.
func (s *postingService) commit(ctx context.Context, vt *domain.VoucherType, p posting) (string, error) {
	asOf := domain.DateOf(p.asOf)
	attempt := 0

	operation := func() (string, error) {
		attempt++
		if err := ctx.Err(); err != nil {
			return "", backoff.Permanent(err)
		}

		reference, err := vt.GenerateReference(ctx, s.counter, s.ruleBag, asOf)
		if err != nil {
			return "", classify(err)
		}

		createdAt := s.now().UTC()
		txn := domain.Transaction{
			Reference:   reference,
			Slug:        vt.Slug(),
			PostingDate: asOf,
			UserID:      p.userID,
			Memo:        p.memo,
			ReversalOf:  p.reversalOf,
			CreatedAt:   createdAt,
			Entries:     make([]domain.LedgerEntry, len(p.lines)),
		}
		for i, line := range p.lines {
			txn.Entries[i] = domain.LedgerEntry{
				EntryID:     uuid.NewString(),
				Reference:   reference,
				AccountID:   line.AccountID,
				Amount:      line.Amount,
				UserID:      p.userID,
				PostingDate: asOf,
				CreatedAt:   createdAt,
			}
		}

		if err := s.journalRepo.SaveTransaction(ctx, txn); err != nil {
			return "", classify(err)
		}
		return reference, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	policy.MaxInterval = s.maxInterval

	reference, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(s.maxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			s.LogWarn(ctx, err, "Retrying post after transient storage error",
				slog.Int("attempt", attempt),
				slog.Duration("wait", wait))
		}),
	)
	if err != nil {
		switch apperrors.KindOf(err) {
		case apperrors.KindValidation, apperrors.KindNotFound:
			s.LogWarn(ctx, err, "Posting rejected", slog.Int("attempts", attempt))
		default:
			s.LogError(ctx, err, "Posting failed", slog.Int("attempts", attempt))
		}
		return "", err
	}
	return reference, nil
}

// classify marks every error except transient storage contention as permanent.
func classify(err error) error {
	if apperrors.IsRetryable(err) {
		return err
	}
	return backoff.Permanent(err)
}

// checkLines rejects zero legs and unbalanced sums before anything touches storage.
func checkLines(lines []domain.EntryLine) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: got %d", domain.ErrTooFewEntries, len(lines))
	}
	for i, line := range lines {
		if line.Amount.IsZero() {
			return apperrors.NewValidationError("entry %d for account %d has a zero amount", i, line.AccountID)
		}
	}
	if sum := domain.SumLines(lines); !sum.IsZero() {
		return fmt.Errorf("%w: entries sum to %s", domain.ErrUnbalancedTransaction, sum.String())
	}
	return nil
}
