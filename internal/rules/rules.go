// Package rules implements the world evolution engine: a fixed, ordered list
// of condition/effect rules evaluated whenever the world turn counter crosses
// a rule interval. Rules read world state, the turn counter, and entity
// counts; they write world state, spawn or despawn entities, and append world
// events. They never touch player records.
package rules

import (
	"strconv"

	"github.com/hollowpine/greybarrow/internal/entity"
)

// World-state keys owned by the forest rules.
const (
	KeyForestRatTurns    = "forest_rat_turns"
	KeyForestInfested    = "forest_infested"
	KeyForestClearedTurn = "forest_cleared_turn"
	KeyTownSecurityLevel = "town_security_level"
)

const (
	// InfestationThreshold is how many tracked turns rats must survive
	// before the forest becomes infested.
	InfestationThreshold = 10

	// RespawnTurns is how many turns after a clearing rats return.
	RespawnTurns = 20

	forestLocation = "forest"
	townLocation   = "town_square"
	ratName        = "rat"
)

// Store is the slice of the persistence gateway that rules may touch.
type Store interface {
	WorldTurn() (int64, error)
	WorldState(key string) (string, error)
	SetWorldState(key, value string) error
	LogWorldEvent(eventType, locationID string, data map[string]any) error
}

// Env is the world view rules evaluate against.
type Env struct {
	Store    Store
	Entities *entity.Registry
}

// Rule is a single evolution rule. Each rule is a concrete type, so its
// condition and effect can be tested in isolation, and the engine dispatches
// them uniformly in registration order.
type Rule interface {
	ID() string
	Name() string
	Description() string

	// Triggered reports whether the rule's condition currently holds.
	Triggered(env *Env) (bool, error)

	// Apply performs the rule's effect. Called only when Triggered.
	Apply(env *Env) error
}

// forestInfestationRule marks the forest infested once rats have survived
// long enough.
type forestInfestationRule struct{}

func (forestInfestationRule) ID() string   { return "forest_infestation" }
func (forestInfestationRule) Name() string { return "Forest Infestation" }
func (forestInfestationRule) Description() string {
	return "Forest becomes infested if rats survive too long"
}

func (forestInfestationRule) Triggered(env *Env) (bool, error) {
	state, err := env.Store.WorldState(KeyForestRatTurns)
	if err != nil {
		return false, err
	}
	if state == "" {
		return false, nil
	}
	ratTurns, err := strconv.Atoi(state)
	if err != nil {
		return false, err
	}
	return ratTurns >= InfestationThreshold, nil
}

func (forestInfestationRule) Apply(env *Env) error {
	if err := env.Store.SetWorldState(KeyForestInfested, "true"); err != nil {
		return err
	}
	return env.Store.LogWorldEvent("world_evolution", forestLocation, map[string]any{
		"change":      "forest_infested",
		"description": "The forest became more dangerous as rats multiplied.",
	})
}

// forestClearedRule records when the last rat falls. The clearing turn is
// written once per clear so the rule doesn't re-fire while the forest stays
// empty.
type forestClearedRule struct{}

func (forestClearedRule) ID() string   { return "forest_cleared" }
func (forestClearedRule) Name() string { return "Forest Cleared" }
func (forestClearedRule) Description() string {
	return "Forest clears when all rats are defeated"
}

func (forestClearedRule) Triggered(env *Env) (bool, error) {
	if env.Entities.MonstersNamedAt(forestLocation, ratName) > 0 {
		return false, nil
	}
	clearedTurn, err := env.Store.WorldState(KeyForestClearedTurn)
	if err != nil {
		return false, err
	}
	return clearedTurn == "", nil
}

func (forestClearedRule) Apply(env *Env) error {
	if err := env.Store.SetWorldState(KeyForestInfested, "false"); err != nil {
		return err
	}
	if err := env.Store.SetWorldState(KeyForestRatTurns, "0"); err != nil {
		return err
	}
	turn, err := env.Store.WorldTurn()
	if err != nil {
		return err
	}
	if err := env.Store.SetWorldState(KeyForestClearedTurn, strconv.FormatInt(turn, 10)); err != nil {
		return err
	}
	return env.Store.LogWorldEvent("world_evolution", forestLocation, map[string]any{
		"change":      "forest_cleared",
		"description": "The forest is now safer after the rats were cleared.",
	})
}

// ratRespawnRule repopulates the forest a fixed number of turns after a
// clearing.
type ratRespawnRule struct {
	spawns []entity.Entity
}

func (ratRespawnRule) ID() string   { return "rat_respawn" }
func (ratRespawnRule) Name() string { return "Rat Respawn" }
func (ratRespawnRule) Description() string {
	return "Rats respawn after the forest has been clear long enough"
}

func (ratRespawnRule) Triggered(env *Env) (bool, error) {
	if env.Entities.MonstersNamedAt(forestLocation, ratName) > 0 {
		return false, nil
	}
	clearedState, err := env.Store.WorldState(KeyForestClearedTurn)
	if err != nil {
		return false, err
	}
	if clearedState == "" {
		return false, nil
	}
	clearedTurn, err := strconv.ParseInt(clearedState, 10, 64)
	if err != nil {
		return false, err
	}
	turn, err := env.Store.WorldTurn()
	if err != nil {
		return false, err
	}
	return turn-clearedTurn >= RespawnTurns, nil
}

func (r ratRespawnRule) Apply(env *Env) error {
	for i := range r.spawns {
		e := r.spawns[i]
		env.Entities.Spawn(forestLocation, &e)
	}
	if err := env.Store.SetWorldState(KeyForestClearedTurn, ""); err != nil {
		return err
	}
	if err := env.Store.SetWorldState(KeyForestRatTurns, "0"); err != nil {
		return err
	}
	return env.Store.LogWorldEvent("world_evolution", forestLocation, map[string]any{
		"change":      "rats_respawned",
		"description": "Rats have returned to the forest.",
	})
}

// townSecurityRule is a placeholder for PvP-density detection. Its condition
// never holds yet.
type townSecurityRule struct{}

func (townSecurityRule) ID() string   { return "town_security" }
func (townSecurityRule) Name() string { return "Town Security" }
func (townSecurityRule) Description() string {
	return "Guards appear if too much PvP happens in town"
}

func (townSecurityRule) Triggered(env *Env) (bool, error) {
	// TODO: read PvP density from the action log once attack results
	// carry a location column.
	return false, nil
}

func (townSecurityRule) Apply(env *Env) error {
	if err := env.Store.SetWorldState(KeyTownSecurityLevel, "high"); err != nil {
		return err
	}
	return env.Store.LogWorldEvent("world_evolution", townLocation, map[string]any{
		"change":      "guards_deployed",
		"description": "Town guards have been deployed due to recent violence.",
	})
}
