package database

import (
	"database/sql"
	"fmt"
)

// Party is a group of players with a single leader. The leader is always a
// member; a party with zero members is deleted.
type Party struct {
	PartyID   string
	LeaderID  string
	Name      string
	Members   []string
	CreatedAt int64
}

// PartyInvite is a pending invitation into a party.
type PartyInvite struct {
	InviteID     string
	PartyID      string
	FromPlayerID string
	ToPlayerID   string
	CreatedAt    int64
}

// CreateParty persists a new party with the leader as its sole member.
func (d *Database) CreateParty(partyID, leaderID, name string, createdAt int64) error {
	query := d.qb.Build(`INSERT INTO parties (party_id, leader_id, name, created_at)
		VALUES (?, ?, ?, ?)`)
	if _, err := d.db.Exec(query, partyID, leaderID, name, createdAt); err != nil {
		return fmt.Errorf("failed to create party: %w", err)
	}
	return d.AddPartyMember(partyID, leaderID)
}

// GetParty returns a party with its member list, or nil if not found.
func (d *Database) GetParty(partyID string) (*Party, error) {
	query := d.qb.Build(`SELECT party_id, leader_id, name, created_at
		FROM parties WHERE party_id = ?`)

	var p Party
	err := d.db.QueryRow(query, partyID).Scan(&p.PartyID, &p.LeaderID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan party: %w", err)
	}

	members, err := d.partyMembers(partyID)
	if err != nil {
		return nil, err
	}
	p.Members = members
	return &p, nil
}

// GetPlayerParty returns the party a player belongs to, or nil.
func (d *Database) GetPlayerParty(playerID string) (*Party, error) {
	query := d.qb.Build(`SELECT party_id FROM party_members WHERE player_id = ?`)

	var partyID string
	err := d.db.QueryRow(query, playerID).Scan(&partyID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up player party: %w", err)
	}
	return d.GetParty(partyID)
}

// AddPartyMember adds a player to a party. The UNIQUE constraint on
// player_id enforces at most one party per player.
func (d *Database) AddPartyMember(partyID, playerID string) error {
	query := d.qb.Build(`INSERT INTO party_members (party_id, player_id) VALUES (?, ?)`)
	if _, err := d.db.Exec(query, partyID, playerID); err != nil {
		return fmt.Errorf("failed to add party member: %w", err)
	}
	return nil
}

// RemovePartyMember removes a player from a party.
func (d *Database) RemovePartyMember(partyID, playerID string) error {
	query := d.qb.Build(`DELETE FROM party_members WHERE party_id = ? AND player_id = ?`)
	if _, err := d.db.Exec(query, partyID, playerID); err != nil {
		return fmt.Errorf("failed to remove party member: %w", err)
	}
	return nil
}

// DeleteParty removes a party, its membership rows, and its pending invites.
func (d *Database) DeleteParty(partyID string) error {
	stmts := []string{
		`DELETE FROM party_invites WHERE party_id = ?`,
		`DELETE FROM party_members WHERE party_id = ?`,
		`DELETE FROM parties WHERE party_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.Exec(d.qb.Build(stmt), partyID); err != nil {
			return fmt.Errorf("failed to delete party: %w", err)
		}
	}
	return nil
}

// CreatePartyInvite persists a new invitation.
func (d *Database) CreatePartyInvite(inv *PartyInvite) error {
	query := d.qb.Build(`INSERT INTO party_invites
		(invite_id, party_id, from_player_id, to_player_id, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := d.db.Exec(query, inv.InviteID, inv.PartyID, inv.FromPlayerID,
		inv.ToPlayerID, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create party invite: %w", err)
	}
	return nil
}

// GetPartyInvite returns an invitation by ID, or nil if not found.
func (d *Database) GetPartyInvite(inviteID string) (*PartyInvite, error) {
	query := d.qb.Build(`SELECT invite_id, party_id, from_player_id, to_player_id, created_at
		FROM party_invites WHERE invite_id = ?`)

	var inv PartyInvite
	err := d.db.QueryRow(query, inviteID).Scan(&inv.InviteID, &inv.PartyID,
		&inv.FromPlayerID, &inv.ToPlayerID, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan party invite: %w", err)
	}
	return &inv, nil
}

// DeletePartyInvite removes an invitation.
func (d *Database) DeletePartyInvite(inviteID string) error {
	query := d.qb.Build(`DELETE FROM party_invites WHERE invite_id = ?`)
	if _, err := d.db.Exec(query, inviteID); err != nil {
		return fmt.Errorf("failed to delete party invite: %w", err)
	}
	return nil
}

// GetPlayerPartyInvites returns the pending invitations addressed to a player.
func (d *Database) GetPlayerPartyInvites(playerID string) ([]*PartyInvite, error) {
	query := d.qb.Build(`SELECT invite_id, party_id, from_player_id, to_player_id, created_at
		FROM party_invites WHERE to_player_id = ? ORDER BY created_at`)

	rows, err := d.db.Query(query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query party invites: %w", err)
	}
	defer rows.Close()

	var invites []*PartyInvite
	for rows.Next() {
		var inv PartyInvite
		if err := rows.Scan(&inv.InviteID, &inv.PartyID, &inv.FromPlayerID,
			&inv.ToPlayerID, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan party invite: %w", err)
		}
		invites = append(invites, &inv)
	}
	return invites, rows.Err()
}

func (d *Database) partyMembers(partyID string) ([]string, error) {
	query := d.qb.Build(`SELECT player_id FROM party_members WHERE party_id = ?`)

	rows, err := d.db.Query(query, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query party members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan party member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
