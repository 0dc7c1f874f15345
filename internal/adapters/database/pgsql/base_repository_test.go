package pgsql

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/general_ledger/internal/apperrors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: codeSerializationFailure}, want: apperrors.KindTransient},
		{name: "deadlock", err: &pgconn.PgError{Code: codeDeadlockDetected}, want: apperrors.KindTransient},
		{name: "lock not available", err: &pgconn.PgError{Code: codeLockNotAvailable}, want: apperrors.KindTransient},
		{name: "check violation", err: &pgconn.PgError{Code: codeCheckViolation}, want: apperrors.KindInternal},
		{name: "plain error", err: errors.New("boom"), want: apperrors.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classify("op", nil))
	err := classify("op", context.DeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, apperrors.IsRetryable(err))
}

func TestPgErrorCode(t *testing.T) {
	wrapped := errors.Join(errors.New("insert failed"), &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "journal_transactions_reversal_of_key"})
	code, constraint := pgErrorCode(wrapped)
	assert.Equal(t, codeUniqueViolation, code)
	assert.Equal(t, "journal_transactions_reversal_of_key", constraint)

	code, constraint = pgErrorCode(errors.New("other"))
	assert.Empty(t, code)
	assert.Empty(t, constraint)
}

func TestMigrationFilesEmbedded(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
