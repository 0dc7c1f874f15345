package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/core/sequence"
	"github.com/SscSPs/general_ledger/internal/platform/config"
)

func TestOpen_Memory(t *testing.T) {
	repos, err := Open(context.Background(), &config.Config{StorageDriver: config.DriverMemory, Tables: domain.DefaultTableMap()})
	require.NoError(t, err)
	defer repos.Closer.Close()

	v, err := repos.SequenceCounter.IncrementAndGet(context.Background(), sequence.CounterKey{Slug: "GL"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestOpen_SQLite(t *testing.T) {
	cfg := &config.Config{
		StorageDriver: config.DriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "ledger.db"),
		Tables:        domain.DefaultTableMap(),
	}
	repos, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer repos.Closer.Close()

	exists, err := repos.JournalRepo.ReferenceExists(context.Background(), "GL_1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOpen_PostgresNeedsURL(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StorageDriver: config.DriverPostgres, Tables: domain.DefaultTableMap()})
	assert.Error(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StorageDriver: "oracle"})
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestOpen_NilConfig(t *testing.T) {
	_, err := Open(context.Background(), nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestOpen_SQLiteDefaultTables(t *testing.T) {
	cfg := &config.Config{StorageDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "ledger.db")}
	repos, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer repos.Closer.Close()

	v, err := repos.SequenceCounter.IncrementAndGet(context.Background(), sequence.CounterKey{Slug: "GL", EnabledFrom: domain.DateOf(time.Now())})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

