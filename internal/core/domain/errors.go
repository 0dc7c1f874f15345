package domain

import "github.com/SscSPs/general_ledger/internal/apperrors"

// Integrity and lookup errors shared by services and storage adapters.
var (
	ErrNoActiveVoucherType   = apperrors.New(apperrors.KindNotFound, "no active voucher type")
	ErrAmbiguousVoucherType  = apperrors.New(apperrors.KindIntegrity, "more than one active voucher type")
	ErrOverlappingValidity   = apperrors.New(apperrors.KindIntegrity, "voucher type validity overlaps an existing window")
	ErrSharedReferenceScheme = apperrors.New(apperrors.KindIntegrity, "voucher type would mint references of another version")
	ErrUnbalancedTransaction = apperrors.New(apperrors.KindIntegrity, "transaction entries do not balance to zero")
	ErrTooFewEntries         = apperrors.New(apperrors.KindValidation, "transaction must have at least two entries")
	ErrDuplicateReference    = apperrors.New(apperrors.KindIntegrity, "reference already posted")
	ErrAlreadyReversed       = apperrors.New(apperrors.KindIntegrity, "transaction already reversed")
)
