package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// PendingTrade is an unescrowed trade offer awaiting acceptance or
// cancellation. Records are created and deleted, never mutated.
type PendingTrade struct {
	TradeID        string
	FromPlayerID   string
	ToPlayerID     string
	OfferedItems   map[string]int
	RequestedItems map[string]int
	CreatedAt      int64
}

// CreatePendingTrade persists a new trade offer.
func (d *Database) CreatePendingTrade(t *PendingTrade) error {
	offered, err := json.Marshal(t.OfferedItems)
	if err != nil {
		return fmt.Errorf("failed to encode offered items: %w", err)
	}
	requested, err := json.Marshal(t.RequestedItems)
	if err != nil {
		return fmt.Errorf("failed to encode requested items: %w", err)
	}

	query := d.qb.Build(`INSERT INTO pending_trades
		(trade_id, from_player_id, to_player_id, offered_items, requested_items, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err = d.db.Exec(query, t.TradeID, t.FromPlayerID, t.ToPlayerID,
		string(offered), string(requested), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pending trade: %w", err)
	}
	return nil
}

// GetPendingTrade returns a trade by ID, or nil if not found.
func (d *Database) GetPendingTrade(tradeID string) (*PendingTrade, error) {
	query := d.qb.Build(`SELECT trade_id, from_player_id, to_player_id,
		offered_items, requested_items, created_at
		FROM pending_trades WHERE trade_id = ?`)

	t, err := scanTrade(d.db.QueryRow(query, tradeID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// DeletePendingTrade removes a trade record.
func (d *Database) DeletePendingTrade(tradeID string) error {
	query := d.qb.Build(`DELETE FROM pending_trades WHERE trade_id = ?`)
	if _, err := d.db.Exec(query, tradeID); err != nil {
		return fmt.Errorf("failed to delete pending trade: %w", err)
	}
	return nil
}

// GetTradesFrom returns the pending trades a player has offered.
func (d *Database) GetTradesFrom(playerID string) ([]*PendingTrade, error) {
	return d.queryTrades(`SELECT trade_id, from_player_id, to_player_id,
		offered_items, requested_items, created_at
		FROM pending_trades WHERE from_player_id = ? ORDER BY created_at`, playerID)
}

// GetTradesTo returns the pending trades offered to a player.
func (d *Database) GetTradesTo(playerID string) ([]*PendingTrade, error) {
	return d.queryTrades(`SELECT trade_id, from_player_id, to_player_id,
		offered_items, requested_items, created_at
		FROM pending_trades WHERE to_player_id = ? ORDER BY created_at`, playerID)
}

func (d *Database) queryTrades(query, playerID string) ([]*PendingTrade, error) {
	rows, err := d.db.Query(d.qb.Build(query), playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending trades: %w", err)
	}
	defer rows.Close()

	var trades []*PendingTrade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func scanTrade(row rowScanner) (*PendingTrade, error) {
	var t PendingTrade
	var offered, requested string

	err := row.Scan(&t.TradeID, &t.FromPlayerID, &t.ToPlayerID,
		&offered, &requested, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan trade: %w", err)
	}

	if err := json.Unmarshal([]byte(offered), &t.OfferedItems); err != nil {
		return nil, fmt.Errorf("failed to decode offered items: %w", err)
	}
	if err := json.Unmarshal([]byte(requested), &t.RequestedItems); err != nil {
		return nil, fmt.Errorf("failed to decode requested items: %w", err)
	}
	if t.OfferedItems == nil {
		t.OfferedItems = map[string]int{}
	}
	if t.RequestedItems == nil {
		t.RequestedItems = map[string]int{}
	}
	return &t, nil
}
