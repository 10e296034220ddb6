// Package sqlite implements the credential store ports on SQLite.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB provides dual reader/writer database connections with WAL mode enabled.
// The writer connection is limited to a single connection to avoid "database is locked" errors.
// The reader connection pool allows up to 4 concurrent readers.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
	path   string
}

// NewDB creates a new dual-connection SQLite database with WAL mode, busy timeout,
// synchronous NORMAL and foreign keys enabled.
func NewDB(dbPath string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if err := writer.Ping(); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("ping writer: %w", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	if err := reader.Ping(); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		return nil, fmt.Errorf("ping reader: %w", err)
	}

	return &DB{
		Writer: writer,
		Reader: reader,
		path:   dbPath,
	}, nil
}

// Path returns the database file the connections were opened on.
func (db *DB) Path() string {
	return db.path
}

// Close closes both reader and writer connections. Returns the first error encountered.
func (db *DB) Close() error {
	var firstErr error

	if err := db.Reader.Close(); err != nil {
		firstErr = fmt.Errorf("close reader: %w", err)
	}

	if err := db.Writer.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close writer: %w", err)
	}

	return firstErr
}

// parseTime accepts the timestamp layouts SQLite and the driver produce.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		sqliteTimeFormat,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
