package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
	"github.com/SscSPs/general_ledger/internal/dto"
)

// voucherTypeRegistry registers, retires and resolves voucher types.
type voucherTypeRegistry struct {
	BaseService
	voucherTypeRepo portsrepo.VoucherTypeRepositoryFacade
	counter         portsrepo.SequenceCounter
}

// NewVoucherTypeRegistry creates a new voucher type registry.
func NewVoucherTypeRegistry(repo portsrepo.VoucherTypeRepositoryFacade, counter portsrepo.SequenceCounter) portssvc.VoucherTypeRegistrySvc {
	return &voucherTypeRegistry{
		voucherTypeRepo: repo,
		counter:         counter,
	}
}

// Ensure voucherTypeRegistry implements the portssvc.VoucherTypeRegistrySvc interface
var _ portssvc.VoucherTypeRegistrySvc = (*voucherTypeRegistry)(nil)

// Register validates vt, checks it against every stored window of the slug and
// persists it. The store repeats the overlap check atomically.
func (s *voucherTypeRegistry) Register(ctx context.Context, vt *domain.VoucherType) (*domain.VoucherType, error) {
	if vt == nil {
		return nil, apperrors.NewValidationError("voucher type is required")
	}
	if err := vt.Validate(); err != nil {
		s.LogWarn(ctx, err, "Rejected invalid voucher type", slog.String("slug", vt.Slug()))
		return nil, err
	}

	existing, err := s.voucherTypeRepo.FindVoucherTypesBySlug(ctx, vt.Slug())
	if err != nil {
		s.LogError(ctx, err, "Failed to load voucher type versions", slog.String("slug", vt.Slug()))
		return nil, fmt.Errorf("failed to load voucher types for %q: %w", vt.Slug(), err)
	}
	if conflict := firstOverlap(vt, existing); conflict != nil {
		err := fmt.Errorf("%w: %s conflicts with %s", domain.ErrOverlappingValidity, vt, conflict)
		s.LogWarn(ctx, err, "Rejected overlapping voucher type", slog.String("slug", vt.Slug()))
		return nil, err
	}
	if clash := firstSharedScheme(vt, existing); clash != nil {
		err := fmt.Errorf("%w: %s and %s both use prefix %q and suffix %q", domain.ErrSharedReferenceScheme, vt, clash, vt.Prefix(), vt.Suffix())
		s.LogWarn(ctx, err, "Rejected voucher type reusing a reference scheme", slog.String("slug", vt.Slug()))
		return nil, err
	}

	if err := s.voucherTypeRepo.CreateVoucherType(ctx, vt); err != nil {
		if errors.Is(err, domain.ErrOverlappingValidity) {
			s.LogWarn(ctx, err, "Store rejected overlapping voucher type", slog.String("slug", vt.Slug()))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to persist voucher type", slog.String("slug", vt.Slug()))
		return nil, fmt.Errorf("failed to persist voucher type %s: %w", vt, err)
	}

	s.LogInfo(ctx, "Voucher type registered",
		slog.String("slug", vt.Slug()),
		slog.String("validity", vt.String()),
		slog.String("sequence", string(vt.SequenceKind())))
	return vt, nil
}

// RegisterFromRequest builds a voucher type through the validating setters and registers it.
func (s *voucherTypeRegistry) RegisterFromRequest(ctx context.Context, req dto.RegisterVoucherTypeRequest) (*domain.VoucherType, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	vt, err := domain.NewVoucherType(req.Slug, req.Name, req.EnabledFrom)
	if err != nil {
		return nil, err
	}
	kind := sequence.Kind(req.SequenceKind)
	if kind == "" {
		kind = sequence.KindMonotonic
	}
	steps := []func() (*domain.VoucherType, error){
		func() (*domain.VoucherType, error) { return vt.SetDescription(req.Description) },
		func() (*domain.VoucherType, error) { return vt.SetPrefix(req.Prefix) },
		func() (*domain.VoucherType, error) { return vt.SetSuffix(req.Suffix) },
		func() (*domain.VoucherType, error) { return vt.SetSequence(kind, req.PeriodLayout) },
		func() (*domain.VoucherType, error) { return vt.SetEnabledTo(req.EnabledTo) },
	}
	for _, step := range steps {
		if _, err := step(); err != nil {
			return nil, err
		}
	}
	return s.Register(ctx, vt)
}

// Retire moves the end of the (slug, enabledFrom) window. A nil enabledTo
// reopens it; both paths re-check the other versions of the slug.
func (s *voucherTypeRegistry) Retire(ctx context.Context, slug string, enabledFrom time.Time, enabledTo *time.Time) (*domain.VoucherType, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperrors.NewValidationError("slug is required")
	}
	from := domain.DateOf(enabledFrom)

	versions, err := s.voucherTypeRepo.FindVoucherTypesBySlug(ctx, slug)
	if err != nil {
		s.LogError(ctx, err, "Failed to load voucher type versions", slog.String("slug", slug))
		return nil, fmt.Errorf("failed to load voucher types for %q: %w", slug, err)
	}

	var target *domain.VoucherType
	others := make([]*domain.VoucherType, 0, len(versions))
	for _, v := range versions {
		if v.EnabledFrom().Equal(from) {
			target = v
			continue
		}
		others = append(others, v)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: voucher type %s from %s", apperrors.ErrNotFound, slug, from.Format(domain.DateLayout))
	}

	updated := *target
	if _, err := updated.SetEnabledTo(enabledTo); err != nil {
		return nil, err
	}
	if conflict := firstOverlap(&updated, others); conflict != nil {
		return nil, fmt.Errorf("%w: %s conflicts with %s", domain.ErrOverlappingValidity, &updated, conflict)
	}
	if clash := firstSharedScheme(&updated, others); clash != nil {
		return nil, fmt.Errorf("%w: %s and %s", domain.ErrSharedReferenceScheme, &updated, clash)
	}

	if err := s.voucherTypeRepo.UpdateEnabledTo(ctx, slug, from, updated.EnabledTo()); err != nil {
		if errors.Is(err, domain.ErrOverlappingValidity) || apperrors.IsNotFound(err) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update voucher type window", slog.String("slug", slug))
		return nil, fmt.Errorf("failed to retire voucher type %s: %w", &updated, err)
	}

	s.LogInfo(ctx, "Voucher type window updated", slog.String("slug", slug), slog.String("validity", updated.String()))
	return &updated, nil
}

// Resolve returns the single version of slug active on asOf.
func (s *voucherTypeRegistry) Resolve(ctx context.Context, slug string, asOf time.Time) (*domain.VoucherType, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperrors.NewValidationError("slug is required")
	}
	day := domain.DateOf(asOf)
	active, err := s.voucherTypeRepo.FindActiveVoucherTypes(ctx, slug, day)
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve voucher type", slog.String("slug", slug))
		return nil, fmt.Errorf("failed to resolve voucher type %q: %w", slug, err)
	}

	switch len(active) {
	case 0:
		return nil, fmt.Errorf("%w: %q on %s", domain.ErrNoActiveVoucherType, slug, day.Format(domain.DateLayout))
	case 1:
		return active[0], nil
	default:
		windows := make([]string, len(active))
		for i, vt := range active {
			windows[i] = vt.String()
		}
		err := fmt.Errorf("%w: %q on %s matches %s", domain.ErrAmbiguousVoucherType, slug, day.Format(domain.DateLayout), strings.Join(windows, ", "))
		s.LogError(ctx, err, "Voucher type windows overlap in storage", slog.String("slug", slug))
		return nil, err
	}
}

// List returns every version of slug ordered by enabledFrom.
func (s *voucherTypeRegistry) List(ctx context.Context, slug string) ([]*domain.VoucherType, error) {
	slug = strings.TrimSpace(slug)
	versions, err := s.voucherTypeRepo.FindVoucherTypesBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to list voucher types for %q: %w", slug, err)
	}
	if versions == nil {
		versions = []*domain.VoucherType{}
	}
	return versions, nil
}

// Strategy builds the sequence strategy owned by vt over the shared counter.
func (s *voucherTypeRegistry) Strategy(vt *domain.VoucherType) (sequence.Strategy, error) {
	if vt == nil {
		return nil, apperrors.NewValidationError("voucher type is required")
	}
	return vt.Sequence(s.counter)
}

func firstOverlap(vt *domain.VoucherType, others []*domain.VoucherType) *domain.VoucherType {
	window := vt.Validity()
	for _, other := range others {
		if window.Overlaps(other.Validity()) {
			return other
		}
	}
	return nil
}

func firstSharedScheme(vt *domain.VoucherType, others []*domain.VoucherType) *domain.VoucherType {
	for _, other := range others {
		if vt.SharesReferences(other) {
			return other
		}
	}
	return nil
}
