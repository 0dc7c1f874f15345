package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/general_ledger/internal/adapters/database/storetest"
	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
)

func newFileStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "ledger.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreContract(t *testing.T) {
	suite.Run(t, &storetest.ContractSuite{
		NewProvider: func(t *testing.T) portsrepo.RepositoryProvider {
			s := newFileStore(t)
			return portsrepo.RepositoryProvider{
				VoucherTypeRepo: s,
				SequenceCounter: s,
				JournalRepo:     s,
				ReportingRepo:   s,
				Closer:          s,
			}
		},
		ConcurrentCallers: 32,
	})
}

func TestNew_InMemory(t *testing.T) {
	repos, err := NewRepositoryProvider(MemoryPath)
	require.NoError(t, err)
	defer repos.Closer.Close()

	v, err := repos.SequenceCounter.IncrementAndGet(context.Background(), sequence.CounterKey{Slug: "GL", EnabledFrom: storetest.Day("2020-01-01")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestNew_CustomTables(t *testing.T) {
	tables := domain.TableMap{
		VoucherTypes:        "gl_voucher_types",
		VoucherSequences:    "gl_sequences",
		JournalTransactions: "gl_transactions",
		JournalEntries:      "gl_entries",
	}
	s := newFileStore(t, WithTables(tables))
	ctx := context.Background()

	require.NoError(t, s.SaveTransaction(ctx, storetest.NewTransaction("GL_1", "GL", "2020-02-01", 7, 1, 2, "12.34")))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gl_entries`).Scan(&n))
	assert.Equal(t, 2, n)

	_, err := New(filepath.Join(t.TempDir(), "bad.db"), WithTables(domain.TableMap{
		VoucherTypes: "x; DROP TABLE y", VoucherSequences: "a", JournalTransactions: "b", JournalEntries: "c",
	}))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = New(filepath.Join(t.TempDir(), "qualified.db"), WithTables(domain.TableMap{
		VoucherTypes: "main.vt", VoucherSequences: "a", JournalTransactions: "b", JournalEntries: "c",
	}))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateVoucherType(ctx, storetest.NewVoucherType(t, "GL", "2020-01-01", nil)))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	versions, err := s.FindVoucherTypesBySlug(ctx, "GL")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "GL_", versions[0].Prefix())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{name: "busy", err: sqlite3.Error{Code: sqlite3.ErrBusy}, want: apperrors.KindTransient},
		{name: "locked", err: sqlite3.Error{Code: sqlite3.ErrLocked}, want: apperrors.KindTransient},
		{name: "constraint", err: sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintCheck}, want: apperrors.KindInternal},
		{name: "other", err: errors.New("disk I/O error"), want: apperrors.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("op", tt.err)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	assert.NoError(t, classify("op", nil))
	assert.ErrorIs(t, classify("op", context.Canceled), context.Canceled)
}
