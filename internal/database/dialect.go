package database

// Dialect abstracts SQL syntax differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	// SQLite: "sqlite", PostgreSQL: "postgres"
	DriverName() string

	// Placeholder returns the parameter placeholder for the given
	// position (1-indexed). SQLite: "?", PostgreSQL: "$1", "$2", ...
	Placeholder(position int) string

	// InitStatements returns database-specific initialization statements.
	// SQLite: PRAGMA statements, PostgreSQL: extension creation
	InitStatements() []string

	// IsDuplicateKeyError reports a unique constraint violation.
	IsDuplicateKeyError(err error) bool

	// AutoIncrementPK returns the column definition for an
	// auto-incrementing integer primary key.
	AutoIncrementPK() string

	// TextCI returns the column type for case-insensitive text.
	// SQLite: "TEXT COLLATE NOCASE", PostgreSQL: "CITEXT"
	TextCI() string
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect creates a new Dialect for the given type.
func NewDialect(dialectType DialectType) Dialect {
	switch dialectType {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}
