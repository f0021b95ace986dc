package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hollowpine/greybarrow/internal/player"
)

// GetPlayer returns a player by ID, or nil if not found.
func (d *Database) GetPlayer(playerID string) (*player.Player, error) {
	query := d.qb.Build(`SELECT player_id, name, location, level, xp, hp, max_hp,
		inventory, active_quests, completed_quests, archived_quests,
		last_defeated_at, last_attack_target, last_attack_at
		FROM players WHERE player_id = ?`)
	return d.scanPlayer(d.db.QueryRow(query, playerID))
}

// GetPlayerByName returns a player by display name (case-insensitive), or
// nil if not found.
func (d *Database) GetPlayerByName(name string) (*player.Player, error) {
	query := d.qb.Build(`SELECT player_id, name, location, level, xp, hp, max_hp,
		inventory, active_quests, completed_quests, archived_quests,
		last_defeated_at, last_attack_target, last_attack_at
		FROM players WHERE name = ?`)
	return d.scanPlayer(d.db.QueryRow(query, name))
}

// GetPlayersAtLocation returns every player currently at a location.
func (d *Database) GetPlayersAtLocation(locationID string) ([]*player.Player, error) {
	query := d.qb.Build(`SELECT player_id, name, location, level, xp, hp, max_hp,
		inventory, active_quests, completed_quests, archived_quests,
		last_defeated_at, last_attack_target, last_attack_at
		FROM players WHERE location = ? ORDER BY name`)

	rows, err := d.db.Query(query, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players at location: %w", err)
	}
	defer rows.Close()

	var players []*player.Player
	for rows.Next() {
		p, err := d.scanPlayerRow(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// UpsertPlayer inserts or fully replaces a player record.
func (d *Database) UpsertPlayer(p *player.Player) error {
	inventory, err := json.Marshal(p.Inventory)
	if err != nil {
		return fmt.Errorf("failed to encode inventory: %w", err)
	}
	active, err := json.Marshal(p.ActiveQuests)
	if err != nil {
		return fmt.Errorf("failed to encode active quests: %w", err)
	}
	completed, err := json.Marshal(p.CompletedQuests)
	if err != nil {
		return fmt.Errorf("failed to encode completed quests: %w", err)
	}
	archived, err := json.Marshal(p.ArchivedQuests)
	if err != nil {
		return fmt.Errorf("failed to encode archived quests: %w", err)
	}

	query := d.qb.Build(`INSERT INTO players
		(player_id, name, location, level, xp, hp, max_hp,
		 inventory, active_quests, completed_quests, archived_quests,
		 last_defeated_at, last_attack_target, last_attack_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			name = excluded.name,
			location = excluded.location,
			level = excluded.level,
			xp = excluded.xp,
			hp = excluded.hp,
			max_hp = excluded.max_hp,
			inventory = excluded.inventory,
			active_quests = excluded.active_quests,
			completed_quests = excluded.completed_quests,
			archived_quests = excluded.archived_quests,
			last_defeated_at = excluded.last_defeated_at,
			last_attack_target = excluded.last_attack_target,
			last_attack_at = excluded.last_attack_at`)

	_, err = d.db.Exec(query,
		p.ID, p.Name, p.Location, p.Level, p.XP, p.HP, p.MaxHP,
		string(inventory), string(active), string(completed), string(archived),
		p.LastDefeatedAt, p.LastAttackTarget, p.LastAttackAt)
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
	}
	return nil
}

// IsDuplicateName reports whether err came from the unique player name
// constraint.
func (d *Database) IsDuplicateName(err error) bool {
	return d.dialect.IsDuplicateKeyError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (d *Database) scanPlayer(row *sql.Row) (*player.Player, error) {
	p, err := d.scanPlayerRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (d *Database) scanPlayerRow(row rowScanner) (*player.Player, error) {
	var p player.Player
	var inventory, active, completed, archived string

	err := row.Scan(&p.ID, &p.Name, &p.Location, &p.Level, &p.XP, &p.HP, &p.MaxHP,
		&inventory, &active, &completed, &archived,
		&p.LastDefeatedAt, &p.LastAttackTarget, &p.LastAttackAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}

	if err := json.Unmarshal([]byte(inventory), &p.Inventory); err != nil {
		return nil, fmt.Errorf("failed to decode inventory for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(active), &p.ActiveQuests); err != nil {
		return nil, fmt.Errorf("failed to decode active quests for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(completed), &p.CompletedQuests); err != nil {
		return nil, fmt.Errorf("failed to decode completed quests for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(archived), &p.ArchivedQuests); err != nil {
		return nil, fmt.Errorf("failed to decode archived quests for %s: %w", p.ID, err)
	}

	p.EnsureMaps()
	return &p, nil
}
