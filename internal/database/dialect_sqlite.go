package database

import (
	"strings"
)

// SQLiteDialect implements Dialect for SQLite databases.
type SQLiteDialect struct{}

// DriverName returns "sqlite" for the modernc.org/sqlite driver.
func (d *SQLiteDialect) DriverName() string {
	return "sqlite"
}

// Placeholder returns "?" for all positions.
func (d *SQLiteDialect) Placeholder(position int) string {
	return "?"
}

// InitStatements returns SQLite PRAGMA statements for optimal operation.
func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

// IsDuplicateKeyError reports a SQLite UNIQUE constraint violation.
func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// AutoIncrementPK returns the SQLite auto-increment primary key column.
func (d *SQLiteDialect) AutoIncrementPK() string {
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// TextCI returns case-insensitive text via COLLATE NOCASE.
func (d *SQLiteDialect) TextCI() string {
	return "TEXT COLLATE NOCASE"
}
