package database

import (
	"fmt"
	"strings"
)

// PostgresDialect implements Dialect for PostgreSQL databases.
type PostgresDialect struct{}

// DriverName returns "postgres" for the lib/pq driver.
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// Placeholder returns "$N" for the given position.
func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

// InitStatements returns PostgreSQL initialization statements.
func (d *PostgresDialect) InitStatements() []string {
	return []string{
		// citext backs case-insensitive player name lookups
		"CREATE EXTENSION IF NOT EXISTS citext",
	}
}

// IsDuplicateKeyError reports a PostgreSQL unique violation.
func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// PostgreSQL error code 23505 is unique_violation
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "23505") ||
		strings.Contains(errStr, "unique constraint")
}

// AutoIncrementPK returns the PostgreSQL auto-increment primary key column.
func (d *PostgresDialect) AutoIncrementPK() string {
	return "BIGSERIAL PRIMARY KEY"
}

// TextCI returns the CITEXT type for case-insensitive text.
func (d *PostgresDialect) TextCI() string {
	return "CITEXT"
}
