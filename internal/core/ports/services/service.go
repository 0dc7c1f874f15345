package services

// ServiceContainer holds instances of all the ledger services.
// This is the main entry point for accessing service functionality.
type ServiceContainer struct {
	VoucherTypes VoucherTypeRegistrySvc
	Posting      PostingSvc
	TrialBalance TrialBalanceSvc
}
