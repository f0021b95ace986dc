package quest

import "sync"

// WorldQuery is the view of live world conditions that availability
// predicates are evaluated against.
type WorldQuery interface {
	// MonstersNamedAt returns how many monsters matching name remain at a
	// location.
	MonstersNamedAt(locationID, name string) int

	// WorldState returns the world-state value for a key ("" if unset).
	WorldState(key string) (string, error)
}

// Registry holds all loaded quest templates.
type Registry struct {
	mu          sync.RWMutex
	quests      map[string]*Template
	questsByNPC map[string][]*Template
}

// NewRegistry creates a new registry.
func NewRegistry() *Registry {
	return &Registry{
		quests:      make(map[string]*Template),
		questsByNPC: make(map[string][]*Template),
	}
}

// LoadFromConfig populates the registry from a QuestsConfig.
func (r *Registry) LoadFromConfig(config *QuestsConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.quests = make(map[string]*Template)
	r.questsByNPC = make(map[string][]*Template)

	for _, id := range config.orderedIDs() {
		def := config.Quests[id]
		t := templateFromDefinition(id, &def)
		r.quests[id] = t
		if t.GiverNPC != "" {
			r.questsByNPC[t.GiverNPC] = append(r.questsByNPC[t.GiverNPC], t)
		}
	}
}

// Get returns a template by quest ID.
func (r *Registry) Get(id string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.quests[id]
	return t, ok
}

// ForNPC returns the templates an NPC gives, in load order.
func (r *Registry) ForNPC(npcID string) []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quests := r.questsByNPC[npcID]
	out := make([]*Template, len(quests))
	copy(out, quests)
	return out
}

// Count returns the number of registered templates.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.quests)
}

// Available evaluates a template's availability conditions against live
// world state. A template with no conditions is always available; otherwise
// it is available while any condition passes.
func (r *Registry) Available(t *Template, wq WorldQuery) (bool, error) {
	if len(t.Availability) == 0 {
		return true, nil
	}
	for _, cond := range t.Availability {
		ok, err := evaluateCondition(cond, wq)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func evaluateCondition(cond Condition, wq WorldQuery) (bool, error) {
	switch cond.Kind {
	case CondEntityPresent:
		return wq.MonstersNamedAt(cond.Location, cond.Target) > 0, nil
	case CondWorldStateUnset:
		value, err := wq.WorldState(cond.Key)
		if err != nil {
			return false, err
		}
		return value == "", nil
	default:
		// Unknown condition kinds never pass
		return false, nil
	}
}
