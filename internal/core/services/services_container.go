package services

import (
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/general_ledger/internal/core/ports/services"
	"github.com/SscSPs/general_ledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...PostingServiceOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The registry comes first; posting resolves voucher types through it.
	container.VoucherTypes = NewVoucherTypeRegistry(repos.VoucherTypeRepo, repos.SequenceCounter)

	postingOptions := make([]PostingServiceOption, 0, len(options)+2)
	if cfg != nil {
		postingOptions = append(postingOptions,
			WithMaxAttempts(cfg.PostMaxAttempts),
			WithRetryInterval(cfg.PostRetryInitialInterval, cfg.PostRetryMaxInterval),
		)
	}
	postingOptions = append(postingOptions, options...)
	container.Posting = NewPostingService(container.VoucherTypes, repos.SequenceCounter, repos.JournalRepo, postingOptions...)

	container.TrialBalance = NewTrialBalanceService(repos.ReportingRepo)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.VoucherTypeRegistrySvc = (*voucherTypeRegistry)(nil)
	_ portssvc.PostingSvc             = (*postingService)(nil)
	_ portssvc.TrialBalanceSvc        = (*trialBalanceService)(nil)
)
