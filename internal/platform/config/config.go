package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/general_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers understood by the store factory.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	StorageDriver string
	DatabaseURL   string
	SQLitePath    string
	RunMigrations bool
	LogLevel      string

	// HTTP surface.
	Port               string
	IsProduction       bool
	RateLimit          string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	// Posting retry policy for transient storage errors.
	PostMaxAttempts          uint
	PostRetryInitialInterval time.Duration
	PostRetryMaxInterval     time.Duration

	Tables domain.TableMap
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("SQLITE_PATH", "general_ledger.db")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("RATE_LIMIT", "600-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("POST_MAX_ATTEMPTS", 3)
	v.SetDefault("POST_RETRY_INITIAL_INTERVAL", "50ms")
	v.SetDefault("POST_RETRY_MAX_INTERVAL", "1s")

	defaults := domain.DefaultTableMap()
	v.SetDefault("TABLE_VOUCHER_TYPES", defaults.VoucherTypes)
	v.SetDefault("TABLE_VOUCHER_SEQUENCES", defaults.VoucherSequences)
	v.SetDefault("TABLE_JOURNAL_TRANSACTIONS", defaults.JournalTransactions)
	v.SetDefault("TABLE_JOURNAL_ENTRIES", defaults.JournalEntries)

	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER")))
	switch cfg.StorageDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		log.Printf("Warning: Unknown STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, DriverPostgres)
		cfg.StorageDriver = DriverPostgres
	}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.StorageDriver == DriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.SQLitePath = v.GetString("SQLITE_PATH")
	cfg.RunMigrations = v.GetBool("RUN_MIGRATIONS")
	cfg.LogLevel = v.GetString("LOG_LEVEL")

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.RateLimit = v.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.ShutdownTimeout = durationOrDefault(v, "SHUTDOWN_TIMEOUT", 10*time.Second)

	attempts := v.GetInt("POST_MAX_ATTEMPTS")
	if attempts < 1 {
		log.Printf("Warning: Invalid value for POST_MAX_ATTEMPTS (%d). Defaulting to 1.\n", attempts)
		attempts = 1
	}
	cfg.PostMaxAttempts = uint(attempts)

	cfg.PostRetryInitialInterval = durationOrDefault(v, "POST_RETRY_INITIAL_INTERVAL", 50*time.Millisecond)
	cfg.PostRetryMaxInterval = durationOrDefault(v, "POST_RETRY_MAX_INTERVAL", time.Second)

	cfg.Tables = domain.TableMap{
		VoucherTypes:        v.GetString("TABLE_VOUCHER_TYPES"),
		VoucherSequences:    v.GetString("TABLE_VOUCHER_SEQUENCES"),
		JournalTransactions: v.GetString("TABLE_JOURNAL_TRANSACTIONS"),
		JournalEntries:      v.GetString("TABLE_JOURNAL_ENTRIES"),
	}
	if err := cfg.Tables.Validate(); err != nil {
		return nil, fmt.Errorf("invalid table map: %w", err)
	}

	return cfg, nil
}

func durationOrDefault(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

// splitList parses a comma separated list, dropping blanks.
func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
