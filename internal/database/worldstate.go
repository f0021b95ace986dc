package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// WorldTurn returns the current world turn counter.
func (d *Database) WorldTurn() (int64, error) {
	var turn int64
	err := d.db.QueryRow(`SELECT turn FROM world_clock WHERE id = 1`).Scan(&turn)
	if err != nil {
		return 0, fmt.Errorf("failed to read world turn: %w", err)
	}
	return turn, nil
}

// AdvanceWorldTurn increments the world turn counter by one and returns the
// new value. The increment runs as a single UPDATE so concurrent actions
// never lose a tick, though the divisible-by-N rule trigger is still
// evaluated per request.
func (d *Database) AdvanceWorldTurn() (int64, error) {
	if _, err := d.db.Exec(`UPDATE world_clock SET turn = turn + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("failed to advance world turn: %w", err)
	}
	return d.WorldTurn()
}

// WorldState returns the value for a world-state key, or "" if unset.
func (d *Database) WorldState(key string) (string, error) {
	query := d.qb.Build(`SELECT value FROM world_state WHERE key = ?`)

	var value string
	err := d.db.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read world state %q: %w", key, err)
	}
	return value, nil
}

// SetWorldState upserts a world-state key, recording the turn and time of
// the update. Setting an empty value clears the key.
func (d *Database) SetWorldState(key, value string) error {
	turn, err := d.WorldTurn()
	if err != nil {
		return err
	}

	if value == "" {
		query := d.qb.Build(`DELETE FROM world_state WHERE key = ?`)
		if _, err := d.db.Exec(query, key); err != nil {
			return fmt.Errorf("failed to clear world state %q: %w", key, err)
		}
		return nil
	}

	query := d.qb.Build(`INSERT INTO world_state (key, value, updated_turn, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_turn = excluded.updated_turn,
			updated_at = excluded.updated_at`)
	_, err = d.db.Exec(query, key, value, turn, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set world state %q: %w", key, err)
	}
	return nil
}

// WorldEvent is one entry in the append-only world event log.
type WorldEvent struct {
	ID         int64
	TS         int64
	EventType  string
	LocationID string
	Data       map[string]any
}

// LogWorldEvent appends an entry to the world event log.
func (d *Database) LogWorldEvent(eventType, locationID string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode world event data: %w", err)
	}

	query := d.qb.Build(`INSERT INTO world_events (ts, event_type, location_id, data_json)
		VALUES (?, ?, ?, ?)`)
	_, err = d.db.Exec(query, time.Now().UnixMilli(), eventType, locationID, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to log world event: %w", err)
	}
	return nil
}

// RecentWorldEvents returns up to limit events, newest first.
func (d *Database) RecentWorldEvents(limit int) ([]*WorldEvent, error) {
	query := d.qb.Build(`SELECT id, ts, event_type, location_id, data_json
		FROM world_events ORDER BY id DESC LIMIT ?`)

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query world events: %w", err)
	}
	defer rows.Close()

	var events []*WorldEvent
	for rows.Next() {
		var ev WorldEvent
		var dataJSON string
		if err := rows.Scan(&ev.ID, &ev.TS, &ev.EventType, &ev.LocationID, &dataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan world event: %w", err)
		}
		if err := json.Unmarshal([]byte(dataJSON), &ev.Data); err != nil {
			return nil, fmt.Errorf("failed to decode world event data: %w", err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}
