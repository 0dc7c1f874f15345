package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can tell "fix your input" from
// "try again" from "this is a bug".
type Kind string

const (
	// KindValidation is malformed input. Never retried.
	KindValidation Kind = "VALIDATION"
	// KindIntegrity is a logic or data bug upstream (overlap, ambiguity, unbalanced entries).
	KindIntegrity Kind = "INTEGRITY"
	// KindNotFound is a lookup that matched nothing.
	KindNotFound Kind = "NOT_FOUND"
	// KindTransient is contention at the storage boundary. The only retryable kind.
	KindTransient Kind = "TRANSIENT"
	// KindInternal is any other storage or programming failure.
	KindInternal Kind = "INTERNAL"
)

// AppError is a kinded error. Sentinels of this type are compared with errors.Is
// by identity, so wrap them with fmt.Errorf("...: %w", sentinel) to add context.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a kinded error.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap creates a kinded error around a cause.
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = New(KindNotFound, "resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = New(KindValidation, "validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = New(KindIntegrity, "resource already exists")

// ErrTransient indicates storage contention (serialization failure, lock timeout, busy database).
var ErrTransient = New(KindTransient, "transient storage failure")

// NewValidationError wraps ErrValidation with a message.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewTransientError marks a storage error as retryable.
func NewTransientError(message string, err error) error {
	return Wrap(KindTransient, message, errors.Join(ErrTransient, err))
}

// NewInternalError marks a storage error as non-retryable.
func NewInternalError(message string, err error) error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of the outermost AppError in the chain, or
// KindInternal for unkinded errors. Nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err is a transient storage error.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
