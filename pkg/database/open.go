// Package database opens the configured ledger store.
package database

import (
	"context"
	"fmt"

	"github.com/SscSPs/general_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/general_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/general_ledger/internal/adapters/database/sqlite"
	"github.com/SscSPs/general_ledger/internal/apperrors"
	"github.com/SscSPs/general_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/general_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/general_ledger/internal/platform/config"
	"github.com/SscSPs/general_ledger/internal/platform/logging"
)

// Open builds the repositories for cfg.StorageDriver. Postgres migrations run
// first when cfg.RunMigrations is set; SQLite creates its schema on open.
// A zero table map selects the default names. Callers close the result
// through its Closer.
func Open(ctx context.Context, cfg *config.Config) (portsrepo.RepositoryProvider, error) {
	if cfg == nil {
		return portsrepo.RepositoryProvider{}, apperrors.NewValidationError("store config is required")
	}
	logger := logging.GetLoggerFromCtx(ctx)

	tables := cfg.Tables
	if tables == (domain.TableMap{}) {
		tables = domain.DefaultTableMap()
	}

	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Info("Using in-memory store.")
		repos, _ := memory.NewRepositoryProvider()
		return repos, nil

	case config.DriverSQLite:
		logger.Info("Opening SQLite store.", "path", cfg.SQLitePath)
		repos, err := sqlite.NewRepositoryProvider(cfg.SQLitePath, sqlite.WithTables(tables))
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return repos, nil

	case config.DriverPostgres:
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			if err := pgsql.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return portsrepo.RepositoryProvider{}, err
			}
		}
		pool, err := NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return portsrepo.RepositoryProvider{}, err
		}
		return pgsql.NewRepositoryProvider(pool, tables), nil
	}
	return portsrepo.RepositoryProvider{}, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
