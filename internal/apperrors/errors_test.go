package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	conflict := apperrors.New(apperrors.KindIntegrity, "conflict")

	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: apperrors.KindInternal},
		{name: "validation helper", err: apperrors.NewValidationError("name %q too long", "x"), want: apperrors.KindValidation},
		{name: "wrapped sentinel", err: fmt.Errorf("lookup GL: %w", apperrors.ErrNotFound), want: apperrors.KindNotFound},
		{name: "transient", err: apperrors.NewTransientError("commit", errors.New("40001")), want: apperrors.KindTransient},
		{name: "custom sentinel", err: fmt.Errorf("ctx: %w", conflict), want: apperrors.KindIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.KindOf(tt.err))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	cause := errors.New("serialization failure")
	err := apperrors.NewTransientError("failed to commit", cause)

	assert.True(t, apperrors.IsRetryable(err))
	assert.True(t, errors.Is(err, apperrors.ErrTransient))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "failed to commit")

	assert.False(t, apperrors.IsRetryable(apperrors.ErrValidation))
	assert.False(t, apperrors.IsRetryable(apperrors.NewInternalError("insert", cause)))
	assert.True(t, apperrors.IsNotFound(fmt.Errorf("x: %w", apperrors.ErrNotFound)))
}
