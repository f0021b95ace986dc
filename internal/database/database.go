// Package database is the persistence gateway: synchronous get/set access by
// primary key, with upsert and append-log semantics, for every durable game
// record. It holds players, pending trades, parties and invites, the world
// clock and state map, world events, reputation events, and the action log.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the SQL connection and provides persistence operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Database, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return OpenWithDialect(NewDialect(DialectSQLite), path)
}

// OpenPostgres connects to a PostgreSQL database with the given DSN.
func OpenPostgres(dsn string) (*Database, error) {
	return OpenWithDialect(NewDialect(DialectPostgres), dsn)
}

// OpenWithDialect opens a connection using a specific dialect.
func OpenWithDialect(dialect Dialect, dataSource string) (*Database, error) {
	db, err := sql.Open(dialect.DriverName(), dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	d := &Database{
		db:      db,
		dialect: dialect,
		qb:      NewQueryBuilder(dialect),
	}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// DB returns the underlying sql.DB for advanced operations.
func (d *Database) DB() *sql.DB {
	return d.db
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS players (
			player_id TEXT PRIMARY KEY,
			name %s UNIQUE NOT NULL,
			location TEXT NOT NULL,
			level INTEGER NOT NULL DEFAULT 1,
			xp INTEGER NOT NULL DEFAULT 0,
			hp INTEGER NOT NULL DEFAULT 10,
			max_hp INTEGER NOT NULL DEFAULT 10,
			inventory TEXT NOT NULL DEFAULT '{}',
			active_quests TEXT NOT NULL DEFAULT '{}',
			completed_quests TEXT NOT NULL DEFAULT '{}',
			archived_quests TEXT NOT NULL DEFAULT '{}',
			last_defeated_at INTEGER NOT NULL DEFAULT 0,
			last_attack_target TEXT NOT NULL DEFAULT '',
			last_attack_at INTEGER NOT NULL DEFAULT 0
		)`, d.dialect.TextCI()),

		`CREATE TABLE IF NOT EXISTS pending_trades (
			trade_id TEXT PRIMARY KEY,
			from_player_id TEXT NOT NULL,
			to_player_id TEXT NOT NULL,
			offered_items TEXT NOT NULL DEFAULT '{}',
			requested_items TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS parties (
			party_id TEXT PRIMARY KEY,
			leader_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS party_members (
			party_id TEXT NOT NULL REFERENCES parties(party_id) ON DELETE CASCADE,
			player_id TEXT NOT NULL UNIQUE,
			PRIMARY KEY (party_id, player_id)
		)`,

		`CREATE TABLE IF NOT EXISTS party_invites (
			invite_id TEXT PRIMARY KEY,
			party_id TEXT NOT NULL,
			from_player_id TEXT NOT NULL,
			to_player_id TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS world_clock (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			turn INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS world_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL DEFAULT '',
			updated_turn INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS world_events (
			id %s,
			ts INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			location_id TEXT NOT NULL DEFAULT '',
			data_json TEXT NOT NULL DEFAULT '{}'
		)`, d.dialect.AutoIncrementPK()),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS reputation_events (
			id %s,
			ts INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			faction_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			value INTEGER NOT NULL
		)`, d.dialect.AutoIncrementPK()),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS action_log (
			id %s,
			ts INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			action TEXT NOT NULL,
			args_json TEXT NOT NULL,
			result_json TEXT NOT NULL
		)`, d.dialect.AutoIncrementPK()),

		`CREATE INDEX IF NOT EXISTS idx_trades_from ON pending_trades(from_player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_to ON pending_trades(to_player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_invites_to ON party_invites(to_player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rep_events ON reputation_events(player_id, faction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_action_log_player ON action_log(player_id)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}

	// Seed the world clock singleton row
	seed := d.qb.Build(`INSERT INTO world_clock (id, turn) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`)
	if _, err := d.db.Exec(seed); err != nil {
		return fmt.Errorf("failed to seed world clock: %w", err)
	}

	return nil
}
