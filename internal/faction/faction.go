// Package faction defines the faction catalog and the reputation maths.
// Reputation itself is derived state: the signed sum of logged reputation
// events for a (player, faction) pair.
package faction

// Faction is a static faction definition.
type Faction struct {
	ID                 string   `yaml:"-"`
	Name               string   `yaml:"name"`
	Alignment          string   `yaml:"alignment"`
	InfluenceLocations []string `yaml:"influence_locations"`
	NPCMembers         []string `yaml:"npc_members"`
	Description        string   `yaml:"description"`
}

// HasInfluenceAt reports whether the faction holds influence at a location.
func (f *Faction) HasInfluenceAt(locationID string) bool {
	for _, loc := range f.InfluenceLocations {
		if loc == locationID {
			return true
		}
	}
	return false
}

// HasMember reports whether an NPC belongs to the faction.
func (f *Faction) HasMember(npcID string) bool {
	for _, id := range f.NPCMembers {
		if id == npcID {
			return true
		}
	}
	return false
}

// Catalog holds all factions in a stable order.
type Catalog struct {
	factions map[string]*Faction
	order    []string
}

// NewCatalog creates an empty faction catalog.
func NewCatalog() *Catalog {
	return &Catalog{factions: make(map[string]*Faction)}
}

// Add registers a faction under its ID.
func (c *Catalog) Add(f *Faction) {
	if _, exists := c.factions[f.ID]; !exists {
		c.order = append(c.order, f.ID)
	}
	c.factions[f.ID] = f
}

// Get returns a faction by ID.
func (c *Catalog) Get(id string) (*Faction, bool) {
	f, ok := c.factions[id]
	return f, ok
}

// All returns every faction in load order.
func (c *Catalog) All() []*Faction {
	out := make([]*Faction, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.factions[id])
	}
	return out
}

// AtLocation returns the factions with influence at a location.
func (c *Catalog) AtLocation(locationID string) []*Faction {
	var out []*Faction
	for _, f := range c.All() {
		if f.HasInfluenceAt(locationID) {
			out = append(out, f)
		}
	}
	return out
}

// ForNPC returns the faction an NPC belongs to, if any.
func (c *Catalog) ForNPC(npcID string) (*Faction, bool) {
	for _, f := range c.All() {
		if f.HasMember(npcID) {
			return f, true
		}
	}
	return nil, false
}

// Count returns the number of factions in the catalog.
func (c *Catalog) Count() int {
	return len(c.factions)
}

// Reputation thresholds.
const (
	ReputationHostile    = -100
	ReputationUnfriendly = -50
	ReputationNeutral    = 0
	ReputationFriendly   = 50
	ReputationHonored    = 100
)

// Tier returns the reputation tier name for a reputation value.
func Tier(reputation int) string {
	switch {
	case reputation >= ReputationHonored:
		return "Honored"
	case reputation >= ReputationFriendly:
		return "Friendly"
	case reputation >= ReputationNeutral:
		return "Neutral"
	case reputation >= ReputationUnfriendly:
		return "Unfriendly"
	default:
		return "Hostile"
	}
}

// PriceModifier returns the shop price multiplier for a reputation value.
func PriceModifier(reputation int) float64 {
	switch {
	case reputation >= ReputationHonored:
		return 0.8
	case reputation >= ReputationFriendly:
		return 0.9
	case reputation >= ReputationNeutral:
		return 1.0
	case reputation >= ReputationUnfriendly:
		return 1.2
	default:
		return 1.5
	}
}

// IsHostile reports whether a faction treats the player as hostile.
func IsHostile(reputation int) bool {
	return reputation < ReputationUnfriendly
}

// eventValues maps reputation event types to their signed values.
var eventValues = map[string]int{
	"quest_completed":       10,
	"helped_member":         5,
	"trade_completed":       2,
	"defended_location":     15,
	"attacked_member":       -20,
	"killed_member":         -50,
	"theft":                 -30,
	"quest_failed":          -5,
	"attacked_in_territory": -10,
}

// EventValue returns the reputation change for an event type (0 if unknown).
func EventValue(eventType string) int {
	return eventValues[eventType]
}
