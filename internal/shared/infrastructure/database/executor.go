package database

import (
	"context"
	"database/sql"
)

// Row is a single result row (pgx.Row or *sql.Row).
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result cursor (pgx.Rows or *sql.Rows).
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Result reports the outcome of an Exec.
type Result interface {
	RowsAffected() (int64, error)
}

// Executor runs queries against a connection or an open transaction.
// Queries use '?' placeholders; callers rebind with Driver.Rebind.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Transaction wraps Executor with Commit/Rollback capabilities.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Connection is a pooled database handle that can open transactions.
type Connection interface {
	Executor
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
	Ping(ctx context.Context) error
	Driver() Driver
}

type sqlResult struct {
	result sql.Result
}

func (r sqlResult) RowsAffected() (int64, error) {
	return r.result.RowsAffected()
}

// WrapSQLResult adapts a sql.Result.
func WrapSQLResult(r sql.Result) Result {
	return sqlResult{result: r}
}

// WrapSQLRows adapts *sql.Rows. It already satisfies Rows; the wrapper keeps
// callers from depending on database/sql directly.
func WrapSQLRows(r *sql.Rows) Rows {
	return r
}
