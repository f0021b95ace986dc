package database

import (
	"database/sql"
	"fmt"
	"time"
)

// LogReputationEvent appends a signed reputation change for a
// (player, faction) pair. Reputation is never stored directly; it is the sum
// of these events.
func (d *Database) LogReputationEvent(playerID, factionID, eventType string, value int) error {
	query := d.qb.Build(`INSERT INTO reputation_events
		(ts, player_id, faction_id, event_type, value)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := d.db.Exec(query, time.Now().UnixMilli(), playerID, factionID, eventType, value)
	if err != nil {
		return fmt.Errorf("failed to log reputation event: %w", err)
	}
	return nil
}

// Reputation returns the derived reputation for a (player, faction) pair.
func (d *Database) Reputation(playerID, factionID string) (int, error) {
	query := d.qb.Build(`SELECT COALESCE(SUM(value), 0) FROM reputation_events
		WHERE player_id = ? AND faction_id = ?`)

	var total int
	err := d.db.QueryRow(query, playerID, factionID).Scan(&total)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to sum reputation: %w", err)
	}
	return total, nil
}
