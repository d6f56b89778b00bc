package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timestampLayout is the fixed-width UTC layout used for SQLite TEXT columns.
// Fixed width keeps lexical order equal to chronological order, which the
// range queries and the unique index on appointment_at rely on.
const timestampLayout = "2006-01-02T15:04:05Z"

// TimeArg encodes t as a query argument for the driver.
func (d Driver) TimeArg(t time.Time) any {
	t = t.UTC().Truncate(time.Second)
	if d == DriverSQLite {
		return t.Format(timestampLayout)
	}
	return t
}

// Timestamp scans a timestamp column from either driver.
// PostgreSQL delivers time.Time; SQLite TEXT columns deliver string or []byte.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time, ts.Valid = time.Time{}, false
		return nil
	case time.Time:
		ts.Time, ts.Valid = v.UTC(), true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp source %T", src)
	}
}

// Ptr returns the time, or nil for NULL.
func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

// Value implements driver.Valuer using the SQLite layout.
func (ts Timestamp) Value() (driver.Value, error) {
	if !ts.Valid {
		return nil, nil
	}
	return ts.Time.UTC().Format(timestampLayout), nil
}

func (ts *Timestamp) parse(s string) error {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
	}
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	ts.Time, ts.Valid = t.UTC(), true
	return nil
}
