// Package entity tracks the non-player actors (monsters and NPCs) present at
// each location. The registry is the single mutable owner of that table and
// serializes access internally, so two requests fighting the same monster
// resolve their damage one at a time.
package entity

import (
	"strings"
	"sync"
)

// Type discriminates entity kinds.
type Type string

const (
	TypeMonster Type = "monster"
	TypeNPC     Type = "npc"
)

// Role classifies what an NPC does.
type Role string

const (
	RoleShop       Role = "shop"
	RoleQuestGiver Role = "quest_giver"
)

// ShopEntry is a single item listing in an NPC's shop.
type ShopEntry struct {
	Price int `yaml:"price"`
}

// Entity is a monster or NPC at a location.
type Entity struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Type Type   `yaml:"type"`

	// Monster fields
	HP       int            `yaml:"hp"`
	Attack   int            `yaml:"attack"`
	XPReward int            `yaml:"xp_reward"`
	Loot     map[string]int `yaml:"loot"`

	// NPC fields
	Role   Role                 `yaml:"role"`
	Wares  map[string]ShopEntry `yaml:"wares"`
	Quests []string             `yaml:"quests"`
}

// IsMonster reports whether the entity is a monster.
func (e *Entity) IsMonster() bool {
	return e.Type == TypeMonster
}

// Matches reports whether needle matches the entity by display name or ID,
// case-insensitively.
func (e *Entity) Matches(needle string) bool {
	needle = strings.ToLower(needle)
	return strings.ToLower(e.Name) == needle || strings.ToLower(e.ID) == needle
}

// Registry holds the per-location entity table.
type Registry struct {
	mu       sync.RWMutex
	entities map[string][]*Entity // location ID -> entities present
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string][]*Entity)}
}

// Spawn adds an entity at a location.
func (r *Registry) Spawn(locationID string, e *Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[locationID] = append(r.entities[locationID], e)
}

// SpawnAll adds several entities at a location.
func (r *Registry) SpawnAll(locationID string, es []*Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[locationID] = append(r.entities[locationID], es...)
}

// Remove deletes an entity by ID from a location.
func (r *Registry) Remove(locationID, entityID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entities[locationID][:0]
	for _, e := range r.entities[locationID] {
		if e.ID != entityID {
			kept = append(kept, e)
		}
	}
	r.entities[locationID] = kept
}

// At returns a snapshot of the entities at a location.
func (r *Registry) At(locationID string) []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	es := r.entities[locationID]
	out := make([]*Entity, len(es))
	copy(out, es)
	return out
}

// FindAt returns the first entity at a location matching needle by name or
// ID, case-insensitively.
func (r *Registry) FindAt(locationID, needle string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entities[locationID] {
		if e.Matches(needle) {
			return e, true
		}
	}
	return nil, false
}

// FindNPCWithRole returns the first NPC at a location with the given role.
func (r *Registry) FindNPCWithRole(locationID string, role Role) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entities[locationID] {
		if e.Type == TypeNPC && e.Role == role {
			return e, true
		}
	}
	return nil, false
}

// MonsterCountAt returns how many monsters remain at a location.
func (r *Registry) MonsterCountAt(locationID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, e := range r.entities[locationID] {
		if e.IsMonster() {
			count++
		}
	}
	return count
}

// MonstersNamedAt returns how many monsters at a location match name,
// case-insensitively against name or ID substring.
func (r *Registry) MonstersNamedAt(locationID, name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(name)
	count := 0
	for _, e := range r.entities[locationID] {
		if !e.IsMonster() {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), needle) ||
			strings.Contains(strings.ToLower(e.ID), needle) {
			count++
		}
	}
	return count
}

// DamageMonster applies damage to a monster under the registry lock.
// When the monster's HP reaches zero it is removed from the location.
// Returns the defeated flag and whether the monster was found.
func (r *Registry) DamageMonster(locationID, entityID string, damage int) (defeated, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entities[locationID] {
		if e.ID != entityID || !e.IsMonster() {
			continue
		}
		e.HP -= damage
		if e.HP <= 0 {
			r.entities[locationID] = append(r.entities[locationID][:i], r.entities[locationID][i+1:]...)
			return true, true
		}
		return false, true
	}
	return false, false
}
