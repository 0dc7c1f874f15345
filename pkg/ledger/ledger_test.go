package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/general_ledger/pkg/ledger"
)

// Only exported identifiers of pkg/ledger are used here, as an importer
// outside the module would.

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ledger.ParseDate(s)
	require.NoError(t, err)
	return d
}

func openMemory(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(context.Background(), ledger.NewConfig(ledger.WithMemory()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLedger_EndToEnd(t *testing.T) {
	ctx := context.Background()
	l := openMemory(t)

	_, err := l.RegisterVoucherType(ctx, ledger.RegisterVoucherTypeRequest{
		Slug:         "SV",
		Name:         "Sales voucher",
		Prefix:       "SV-",
		SequenceKind: "DATE_RESET",
		EnabledFrom:  date(t, "2020-01-01"),
	})
	require.NoError(t, err)

	lines := []ledger.EntryLine{
		{AccountID: 10, Amount: decimal.RequireFromString("12.50")},
		{AccountID: 20, Amount: decimal.RequireFromString("-12.50")},
	}
	first, err := l.Post(ctx, ledger.PostRequest{Slug: "SV", AsOf: date(t, "2020-01-31"), Entries: lines, UserID: 1})
	require.NoError(t, err)
	second, err := l.Post(ctx, ledger.PostRequest{Slug: "SV", AsOf: date(t, "2020-02-01"), Entries: lines, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, "SV-202001-1", first)
	assert.Equal(t, "SV-202002-1", second)

	reversal, err := l.Reverse(ctx, ledger.ReverseRequest{Reference: second, AsOf: date(t, "2020-02-02"), UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, "SV-202002-2", reversal)

	txn, err := l.GetTransaction(ctx, reversal)
	require.NoError(t, err)
	assert.Equal(t, second, txn.ReversalOf)

	balances, err := l.GetAccountBalances(ctx, date(t, "2020-02-02"), nil)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(balances[10]))

	report, err := l.TrialBalance(ctx, date(t, "2020-02-02"), nil)
	require.NoError(t, err)
	assert.True(t, report.Balanced)

	_, err = l.RetireVoucherType(ctx, "SV", date(t, "2020-01-01"), timePtr(date(t, "2020-03-01")))
	require.NoError(t, err)
	versions, err := l.VoucherTypes(ctx, "SV")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, date(t, "2020-03-01"), *versions[0].EnabledTo())

	_, err = l.Post(ctx, ledger.PostRequest{Slug: "SV", AsOf: date(t, "2020-03-01"), Entries: lines, UserID: 1})
	assert.True(t, ledger.IsNotFound(err))
	assert.ErrorIs(t, err, ledger.ErrNoActiveVoucherType)
}

func TestLedger_WithOptions(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2020, 5, 5, 5, 5, 5, 0, time.UTC)
	l, err := ledger.Open(ctx, &ledger.Config{StorageDriver: ledger.DriverMemory}, ledger.WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	defer l.Close()

	_, err = l.RegisterVoucherType(ctx, ledger.RegisterVoucherTypeRequest{Slug: "GL", Name: "General", EnabledFrom: date(t, "2020-01-01")})
	require.NoError(t, err)
	reference, err := l.Post(ctx, ledger.PostRequest{Slug: "GL", AsOf: date(t, "2020-05-05"), UserID: 2, Entries: []ledger.EntryLine{
		{AccountID: 1, Amount: decimal.NewFromInt(3)},
		{AccountID: 2, Amount: decimal.NewFromInt(-3)},
	}})
	require.NoError(t, err)
	assert.Equal(t, "1", reference)

	txn, err := l.GetTransaction(ctx, reference)
	require.NoError(t, err)
	assert.Equal(t, fixed, txn.CreatedAt)
}

func TestOpen_NilConfig(t *testing.T) {
	l, err := ledger.Open(context.Background(), nil)

	assert.Nil(t, l)
	assert.Equal(t, ledger.KindValidation, ledger.KindOf(err))
}

func TestOpen_SQLiteFromExportedOptions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")
	cfg := ledger.NewConfig(ledger.WithSQLite(path), ledger.WithPostRetry(5, time.Millisecond, 10*time.Millisecond))
	assert.Equal(t, ledger.DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, ledger.DefaultTableMap(), cfg.Tables)

	l, err := ledger.Open(ctx, cfg)
	require.NoError(t, err)

	_, err = l.RegisterVoucherType(ctx, ledger.RegisterVoucherTypeRequest{Slug: "GL", Name: "General", Prefix: "GL_", EnabledFrom: date(t, "2020-01-01")})
	require.NoError(t, err)
	reference, err := l.Post(ctx, ledger.PostRequest{Slug: "GL", AsOf: date(t, "2020-02-01"), UserID: 1, Entries: []ledger.EntryLine{
		{AccountID: 1, Amount: decimal.NewFromInt(8)},
		{AccountID: 2, Amount: decimal.NewFromInt(-8)},
	}})
	require.NoError(t, err)
	assert.Equal(t, "GL_1", reference)
	require.NoError(t, l.Close())

	reopened, err := ledger.Open(ctx, cfg)
	require.NoError(t, err)
	defer reopened.Close()
	txn, err := reopened.GetTransaction(ctx, reference)
	require.NoError(t, err)
	assert.True(t, txn.IsBalanced())
}

func TestLedger_ExportedErrors(t *testing.T) {
	ctx := context.Background()
	l := openMemory(t)

	_, err := l.RegisterVoucherType(ctx, ledger.RegisterVoucherTypeRequest{Slug: "GL", Name: "General", Prefix: "GL_", EnabledFrom: date(t, "2020-01-01")})
	require.NoError(t, err)

	_, err = l.RegisterVoucherType(ctx, ledger.RegisterVoucherTypeRequest{
		Slug: "GL", Name: "Old", Prefix: "GL_", EnabledFrom: date(t, "2019-01-01"), EnabledTo: timePtr(date(t, "2019-06-01")),
	})
	assert.True(t, errors.Is(err, ledger.ErrSharedReferenceScheme))
	assert.Equal(t, ledger.KindIntegrity, ledger.KindOf(err))

	_, err = l.RegisterVoucherType(ctx, ledger.RegisterVoucherTypeRequest{Slug: "AP", Name: "Payables", Prefix: "AP ", EnabledFrom: date(t, "2020-01-01")})
	assert.ErrorIs(t, err, ledger.ErrInvalidVoucherType)

	_, err = l.Post(ctx, ledger.PostRequest{Slug: "GL", AsOf: date(t, "2020-02-01"), UserID: 1, Entries: []ledger.EntryLine{
		{AccountID: 1, Amount: decimal.NewFromInt(8)},
		{AccountID: 2, Amount: decimal.NewFromInt(-7)},
	}})
	assert.ErrorIs(t, err, ledger.ErrUnbalancedTransaction)
	assert.False(t, ledger.IsRetryable(err))
}

func timePtr(t time.Time) *time.Time { return &t }
