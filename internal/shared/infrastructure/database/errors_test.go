package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	sqlite3 "modernc.org/sqlite/lib"
)

type codedError struct{ code int }

func (e codedError) Error() string { return fmt.Sprintf("sqlite error %d", e.code) }
func (e codedError) Code() int     { return e.code }

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(sql.ErrNoRows))
	assert.True(t, IsNoRows(pgx.ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("find booking: %w", ErrNoRows)))
	assert.False(t, IsNoRows(nil))
	assert.False(t, IsNoRows(errors.New("boom")))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(codedError{code: sqlite3.SQLITE_CONSTRAINT_UNIQUE}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", codedError{code: sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY})))
	assert.False(t, IsUniqueViolation(codedError{code: sqlite3.SQLITE_BUSY}))
	assert.False(t, IsUniqueViolation(nil))
}

func TestClassifyWriteError(t *testing.T) {
	raw := &pgconn.PgError{Code: "23505"}
	err := ClassifyWriteError(raw)
	assert.ErrorIs(t, err, ErrConstraintViolation)

	other := errors.New("connection reset")
	assert.Equal(t, other, ClassifyWriteError(other))
	assert.NoError(t, ClassifyWriteError(nil))
}
