package rules

import (
	"fmt"
	"strconv"

	"github.com/hollowpine/greybarrow/internal/entity"
	"github.com/hollowpine/greybarrow/internal/logger"
)

// Engine evaluates the rule list in registration order. Every triggered rule
// is applied; a failing rule stops the sweep and reports which rule broke.
type Engine struct {
	env   *Env
	rules []Rule
}

// NewEngine builds an engine with the canonical rule set. respawns supplies
// the monster templates the respawn rule repopulates the forest with,
// normally the forest entries of the spawn catalog.
func NewEngine(store Store, entities *entity.Registry, respawns []entity.Entity) *Engine {
	rats := make([]entity.Entity, 0, len(respawns))
	for _, e := range respawns {
		if e.Type == entity.TypeMonster {
			rats = append(rats, e)
		}
	}
	return &Engine{
		env: &Env{Store: store, Entities: entities},
		rules: []Rule{
			forestInfestationRule{},
			forestClearedRule{},
			ratRespawnRule{spawns: rats},
			townSecurityRule{},
		},
	}
}

// Register appends a rule after the canonical set.
func (e *Engine) Register(r Rule) {
	e.rules = append(e.rules, r)
}

// Rules returns the registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate runs one sweep and returns the IDs of the rules that fired.
func (e *Engine) Evaluate() ([]string, error) {
	var fired []string
	for _, r := range e.rules {
		ok, err := r.Triggered(e.env)
		if err != nil {
			return fired, fmt.Errorf("rule %s: check condition: %w", r.ID(), err)
		}
		if !ok {
			continue
		}
		if err := r.Apply(e.env); err != nil {
			return fired, fmt.Errorf("rule %s: apply: %w", r.ID(), err)
		}
		logger.Debugf("World rule fired: %s", r.ID())
		fired = append(fired, r.ID())
	}
	return fired, nil
}

// TrackMonsterSurvival advances the monster survival counter for a location
// a player just entered: incremented while any rat remains in the forest,
// reset to zero once none do. Other locations are not tracked yet.
func (e *Engine) TrackMonsterSurvival(locationID string) error {
	if locationID != forestLocation {
		return nil
	}
	if e.env.Entities.MonstersNamedAt(forestLocation, ratName) == 0 {
		return e.env.Store.SetWorldState(KeyForestRatTurns, "0")
	}
	state, err := e.env.Store.WorldState(KeyForestRatTurns)
	if err != nil {
		return err
	}
	turns := 0
	if state != "" {
		turns, err = strconv.Atoi(state)
		if err != nil {
			return err
		}
	}
	return e.env.Store.SetWorldState(KeyForestRatTurns, strconv.Itoa(turns+1))
}
