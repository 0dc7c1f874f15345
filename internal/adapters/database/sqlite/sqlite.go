/*
Package sqlite provides a SQLite-backed implementation of the repository ports.

The schema is auto-migrated on New using the configured table names. The
database is opened in WAL mode with immediate write transactions and a busy
timeout, so concurrent writers queue at the file lock instead of failing.
Lock contention that outlives the timeout surfaces as a transient error and
is retried by the posting service.

Amounts are stored as TEXT and summed in Go with decimal arithmetic because
SQLite has no exact numeric type.

USAGE:

	store, err := sqlite.New("./data/ledger.db")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
)

const (
	// MemoryPath opens a private in-memory database on a single connection.
	MemoryPath = ":memory:"

	defaultBusyTimeout = 5 * time.Second
	timestampLayout    = time.RFC3339Nano
)

// Store implements every repository port on one SQLite database.
type Store struct {
	db          *sql.DB
	tables      domain.TableMap
	busyTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTables overrides the default table names.
func WithTables(tables domain.TableMap) Option {
	return func(s *Store) {
		s.tables = tables
	}
}

// WithBusyTimeout sets how long a writer waits for the file lock.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

var (
	_ portsrepo.VoucherTypeRepositoryFacade = (*Store)(nil)
	_ portsrepo.SequenceCounter             = (*Store)(nil)
	_ portsrepo.JournalRepositoryFacade     = (*Store)(nil)
	_ portsrepo.ReportingRepository         = (*Store)(nil)
	_ portsrepo.Closer                      = (*Store)(nil)
)

// New opens (creating if needed) the database at dbPath and migrates it.
// Use MemoryPath for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	s := &Store{tables: domain.DefaultTableMap(), busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.tables.Validate(); err != nil {
		return nil, err
	}
	for _, name := range []string{s.tables.VoucherTypes, s.tables.VoucherSequences, s.tables.JournalTransactions, s.tables.JournalEntries} {
		if strings.Contains(name, ".") {
			return nil, apperrors.NewValidationError("sqlite table %q cannot be schema-qualified", name)
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=%d",
		dbPath, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	s.db = db
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// NewRepositoryProvider opens a store and wires it into every port.
func NewRepositoryProvider(dbPath string, opts ...Option) (portsrepo.RepositoryProvider, error) {
	s, err := New(dbPath, opts...)
	if err != nil {
		return portsrepo.RepositoryProvider{}, err
	}
	return portsrepo.RepositoryProvider{
		VoucherTypeRepo: s,
		SequenceCounter: s,
		JournalRepo:     s,
		ReportingRepo:   s,
		Closer:          s,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate(ctx context.Context) error {
	t := s.tables
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slug TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		prefix TEXT NOT NULL DEFAULT '',
		suffix TEXT NOT NULL DEFAULT '',
		sequence_kind TEXT NOT NULL,
		period_layout TEXT NOT NULL DEFAULT '',
		enabled_from TEXT NOT NULL,
		enabled_to TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (slug, enabled_from),
		CHECK (enabled_to IS NULL OR enabled_to > enabled_from)
	);

	CREATE TABLE IF NOT EXISTS %[2]s (
		slug TEXT NOT NULL,
		enabled_from TEXT NOT NULL,
		period TEXT NOT NULL DEFAULT '',
		last_value INTEGER NOT NULL,
		PRIMARY KEY (slug, enabled_from, period)
	);

	CREATE TABLE IF NOT EXISTS %[3]s (
		reference TEXT PRIMARY KEY,
		slug TEXT NOT NULL,
		posting_date TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		memo TEXT NOT NULL DEFAULT '',
		reversal_of TEXT UNIQUE REFERENCES %[3]s(reference),
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS %[4]s (
		entry_id TEXT PRIMARY KEY,
		reference TEXT NOT NULL REFERENCES %[3]s(reference),
		account_id INTEGER NOT NULL,
		amount TEXT NOT NULL,
		user_id INTEGER NOT NULL,
		posting_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Balance aggregation (hot path)
	CREATE INDEX IF NOT EXISTS idx_%[4]s_posting_date ON %[4]s(posting_date);
	CREATE INDEX IF NOT EXISTS idx_%[4]s_user_date ON %[4]s(user_id, posting_date);
	CREATE INDEX IF NOT EXISTS idx_%[4]s_reference ON %[4]s(reference);
	`, t.VoucherTypes, t.VoucherSequences, t.JournalTransactions, t.JournalEntries)

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// classify maps driver errors onto apperrors kinds. Lock contention is the
// only transient failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return apperrors.NewTransientError(op, err)
		}
	}
	return apperrors.NewInternalError(op, err)
}

func isUniqueViolation(err error, column string) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.ExtendedCode != sqlite3.ErrConstraintUnique && se.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return false
	}
	return strings.Contains(se.Error(), "."+column)
}

func formatDate(t time.Time) string {
	return domain.DateOf(t).Format(domain.DateLayout)
}

func parseDate(value string) (time.Time, error) {
	d, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.KindIntegrity, "stored date is invalid", err)
	}
	return d, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.KindIntegrity, "stored timestamp is invalid", err)
	}
	return t.UTC(), nil
}

func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
