package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
)

// trialBalanceService implements the TrialBalanceSvc interface
type trialBalanceService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewTrialBalanceService creates a new trial balance service.
func NewTrialBalanceService(repo portsrepo.ReportingRepository) portssvc.TrialBalanceSvc {
	return &trialBalanceService{
		reportingRepo: repo,
	}
}

// Ensure trialBalanceService implements the TrialBalanceSvc interface
var _ portssvc.TrialBalanceSvc = (*trialBalanceService)(nil)

// GetAccountBalances sums committed entries posted on or before asOf, per account.
func (s *trialBalanceService) GetAccountBalances(ctx context.Context, asOf time.Time, userID *int64) (map[int64]decimal.Decimal, error) {
	day := domain.DateOf(asOf)
	balances, err := s.reportingRepo.SumBalances(ctx, day, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve account balances", slog.String("asOf", day.Format(domain.DateLayout)))
		return nil, fmt.Errorf("failed to retrieve account balances: %w", err)
	}
	// Return empty map instead of nil
	if balances == nil {
		balances = make(map[int64]decimal.Decimal)
	}

	s.LogDebug(ctx, "Account balances computed",
		slog.String("asOf", day.Format(domain.DateLayout)),
		slog.Int("account_count", len(balances)))
	return balances, nil
}

// TrialBalance generates a trial balance report as of a specific date
func (s *trialBalanceService) TrialBalance(ctx context.Context, asOf time.Time, userID *int64) (*domain.TrialBalance, error) {
	balances, err := s.GetAccountBalances(ctx, asOf, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.TrialBalanceRow, 0, len(balances))
	total := decimal.Zero
	for accountID, balance := range balances {
		rows = append(rows, domain.TrialBalanceRow{AccountID: accountID, Balance: balance})
		total = total.Add(balance)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountID < rows[j].AccountID })

	report := &domain.TrialBalance{
		AsOf:     domain.DateOf(asOf),
		UserID:   userID,
		Rows:     rows,
		Total:    total,
		Balanced: total.IsZero(),
	}
	if !report.Balanced {
		s.GetLogger(ctx).Warn("Trial balance does not sum to zero",
			slog.String("asOf", report.AsOf.Format(domain.DateLayout)),
			slog.String("total", total.String()))
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("asOf", report.AsOf.Format(domain.DateLayout)),
		slog.Int("row_count", len(rows)))
	return report, nil
}
