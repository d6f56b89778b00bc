// Package migrations applies the embedded schema for each database driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/bookwell/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Files returns the ordered .up.sql migration names for driver.
func Files(driver database.Driver) ([]string, error) {
	if !driver.IsValid() {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	entries, err := fs.ReadDir(migrationsFS, string(driver))
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Run applies every migration not yet recorded in schema_migrations. Each
// migration runs in its own transaction together with its version row.
func Run(ctx context.Context, conn database.Connection) ([]string, error) {
	driver := conn.Driver()
	files, err := Files(driver)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, conn)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, file := range files {
		version := strings.TrimSuffix(file, ".up.sql")
		if applied[version] {
			continue
		}

		body, err := migrationsFS.ReadFile(string(driver) + "/" + file)
		if err != nil {
			return ran, fmt.Errorf("read migration %s: %w", file, err)
		}
		if err := apply(ctx, conn, version, string(body)); err != nil {
			return ran, fmt.Errorf("apply migration %s: %w", file, err)
		}
		ran = append(ran, version)
	}
	return ran, nil
}

func appliedVersions(ctx context.Context, conn database.Connection) (map[string]bool, error) {
	rows, err := conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func apply(ctx context.Context, conn database.Connection, version, body string) error {
	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, body); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	insert := conn.Driver().Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`)
	if _, err := tx.Exec(ctx, insert, version, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
