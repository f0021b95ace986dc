// Package player defines the player aggregate: identity, vitals, inventory,
// the three quest maps, and PvP metadata. Handlers read a player from the
// persistence gateway, transform it, and write it back; nothing else mutates
// a player record.
package player

import (
	"github.com/hollowpine/greybarrow/internal/quest"
)

// Player is a single player's durable state.
type Player struct {
	ID       string `json:"player_id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	HP       int    `json:"hp"`
	MaxHP    int    `json:"max_hp"`

	// Inventory maps item ID to a positive count. Zero-count entries are
	// removed, never retained.
	Inventory map[string]int `json:"inventory"`

	// A quest ID appears in at most one of these three maps.
	ActiveQuests    map[string]*quest.Instance `json:"active_quests"`
	CompletedQuests map[string]*quest.Instance `json:"completed_quests"`
	ArchivedQuests  map[string]*quest.Instance `json:"archived_quests"`

	// PvP metadata, unix milliseconds. Zero means never.
	LastDefeatedAt   int64  `json:"last_defeated_at,omitempty"`
	LastAttackTarget string `json:"last_attack_target,omitempty"`
	LastAttackAt     int64  `json:"last_attack_at,omitempty"`
}

// New creates a fresh level-1 player at the given location.
func New(id, name, location string) *Player {
	return &Player{
		ID:              id,
		Name:            name,
		Location:        location,
		Level:           1,
		XP:              0,
		HP:              10,
		MaxHP:           10,
		Inventory:       make(map[string]int),
		ActiveQuests:    make(map[string]*quest.Instance),
		CompletedQuests: make(map[string]*quest.Instance),
		ArchivedQuests:  make(map[string]*quest.Instance),
	}
}

// EnsureMaps initializes nil maps after deserialization.
func (p *Player) EnsureMaps() {
	if p.Inventory == nil {
		p.Inventory = make(map[string]int)
	}
	if p.ActiveQuests == nil {
		p.ActiveQuests = make(map[string]*quest.Instance)
	}
	if p.CompletedQuests == nil {
		p.CompletedQuests = make(map[string]*quest.Instance)
	}
	if p.ArchivedQuests == nil {
		p.ArchivedQuests = make(map[string]*quest.Instance)
	}
}

// AddItem credits qty of an item to the inventory.
func (p *Player) AddItem(itemID string, qty int) {
	if qty <= 0 {
		return
	}
	p.Inventory[itemID] += qty
}

// RemoveItem debits qty of an item, deleting the entry when it hits zero.
// Returns false (and changes nothing) if the player holds fewer than qty.
func (p *Player) RemoveItem(itemID string, qty int) bool {
	if qty <= 0 {
		return true
	}
	have := p.Inventory[itemID]
	if have < qty {
		return false
	}
	if have == qty {
		delete(p.Inventory, itemID)
	} else {
		p.Inventory[itemID] = have - qty
	}
	return true
}

// ItemCount returns how many of an item the player holds.
func (p *Player) ItemCount(itemID string) int {
	return p.Inventory[itemID]
}

// HasItems reports whether the player holds at least the given quantities.
func (p *Player) HasItems(items map[string]int) bool {
	for itemID, qty := range items {
		if p.Inventory[itemID] < qty {
			return false
		}
	}
	return true
}

// HasQuest reports whether a quest ID is present in any of the three maps.
func (p *Player) HasQuest(questID string) bool {
	if _, ok := p.ActiveQuests[questID]; ok {
		return true
	}
	if _, ok := p.CompletedQuests[questID]; ok {
		return true
	}
	_, ok := p.ArchivedQuests[questID]
	return ok
}

// CompleteQuest moves an active quest into the completed map.
func (p *Player) CompleteQuest(questID string, completedAt int64) {
	q, ok := p.ActiveQuests[questID]
	if !ok {
		return
	}
	q.MarkCompleted(completedAt)
	delete(p.ActiveQuests, questID)
	p.CompletedQuests[questID] = q
}

// ArchiveQuest moves a completed quest into the archived map as turned in.
func (p *Player) ArchiveQuest(questID string, turnedInAt int64) {
	q, ok := p.CompletedQuests[questID]
	if !ok {
		return
	}
	q.MarkTurnedIn(turnedInAt)
	delete(p.CompletedQuests, questID)
	p.ArchivedQuests[questID] = q
}
