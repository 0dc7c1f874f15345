package ledger

import (
	"time"

	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/SscSPs/general_ledger/internal/platform/config"
)

type (
	// Config selects the store and the posting retry policy.
	Config   = config.Config
	TableMap = domain.TableMap

	ErrorKind = apperrors.Kind
)

// Storage drivers accepted in Config.StorageDriver.
const (
	DriverPostgres = config.DriverPostgres
	DriverSQLite   = config.DriverSQLite
	DriverMemory   = config.DriverMemory
)

const (
	KindValidation = apperrors.KindValidation
	KindIntegrity  = apperrors.KindIntegrity
	KindNotFound   = apperrors.KindNotFound
	KindTransient  = apperrors.KindTransient
	KindInternal   = apperrors.KindInternal
)

var (
	// LoadConfig reads the environment (and a .env file when present).
	LoadConfig      = config.LoadConfig
	DefaultTableMap = domain.DefaultTableMap
	ParseDate       = domain.ParseDate

	KindOf      = apperrors.KindOf
	IsNotFound  = apperrors.IsNotFound
	IsRetryable = apperrors.IsRetryable

	ErrInvalidVoucherType    = domain.ErrInvalidVoucherType
	ErrReferenceGeneration   = domain.ErrReferenceGeneration
	ErrNoActiveVoucherType   = domain.ErrNoActiveVoucherType
	ErrAmbiguousVoucherType  = domain.ErrAmbiguousVoucherType
	ErrOverlappingValidity   = domain.ErrOverlappingValidity
	ErrSharedReferenceScheme = domain.ErrSharedReferenceScheme
	ErrUnbalancedTransaction = domain.ErrUnbalancedTransaction
	ErrTooFewEntries         = domain.ErrTooFewEntries
	ErrDuplicateReference    = domain.ErrDuplicateReference
	ErrAlreadyReversed       = domain.ErrAlreadyReversed
)

// ConfigOption adjusts a Config built by NewConfig.
type ConfigOption func(*Config)

// NewConfig returns an in-memory configuration with the default tables and
// retry policy, then applies options.
func NewConfig(options ...ConfigOption) *Config {
	cfg := &Config{
		StorageDriver:            DriverMemory,
		LogLevel:                 "info",
		PostMaxAttempts:          3,
		PostRetryInitialInterval: 50 * time.Millisecond,
		PostRetryMaxInterval:     time.Second,
		Tables:                   domain.DefaultTableMap(),
	}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// WithMemory keeps everything in process memory.
func WithMemory() ConfigOption {
	return func(cfg *Config) {
		cfg.StorageDriver = DriverMemory
	}
}

// WithSQLite stores the ledger in the SQLite file at path.
func WithSQLite(path string) ConfigOption {
	return func(cfg *Config) {
		cfg.StorageDriver = DriverSQLite
		cfg.SQLitePath = path
	}
}

// WithPostgres connects to url, applying the embedded migrations first when
// runMigrations is set.
func WithPostgres(url string, runMigrations bool) ConfigOption {
	return func(cfg *Config) {
		cfg.StorageDriver = DriverPostgres
		cfg.DatabaseURL = url
		cfg.RunMigrations = runMigrations
	}
}

// WithTables overrides the table names.
func WithTables(tables TableMap) ConfigOption {
	return func(cfg *Config) {
		cfg.Tables = tables
	}
}

// WithPostRetry sets the retry policy for transient storage errors.
func WithPostRetry(maxAttempts uint, initial, maxInterval time.Duration) ConfigOption {
	return func(cfg *Config) {
		cfg.PostMaxAttempts = maxAttempts
		cfg.PostRetryInitialInterval = initial
		cfg.PostRetryMaxInterval = maxInterval
	}
}
