package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds database configuration.
type Config struct {
	// Driver selects the backend. Empty or "auto" detects it from URL.
	Driver Driver

	// URL is the PostgreSQL connection string.
	URL string

	// SQLitePath is the SQLite database file. Defaults to ~/.bookwell/bookwell.db.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool.
	MaxConns int

	// BusyTimeout is how long SQLite waits on a locked database.
	BusyTimeout time.Duration
}

type connectFunc func(ctx context.Context, cfg Config) (Connection, error)

var (
	postgresConnect connectFunc
	sqliteConnect   connectFunc
)

// RegisterPostgresDriver registers the PostgreSQL connection factory.
// The postgres package calls this from init.
func RegisterPostgresDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	postgresConnect = fn
}

// RegisterSQLiteDriver registers the SQLite connection factory.
// The sqlite package calls this from init.
func RegisterSQLiteDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	sqliteConnect = fn
}

// NewConnection opens a connection for the configured driver.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}

	var connect connectFunc
	switch driver {
	case DriverPostgres:
		connect = postgresConnect
	case DriverSQLite:
		connect = sqliteConnect
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if connect == nil {
		return nil, fmt.Errorf("database driver %s is not linked into this binary", driver)
	}
	return connect(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".bookwell", "bookwell.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
