package game

import (
	"fmt"

	"github.com/hollowpine/greybarrow/internal/faction"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
)

// handleStats reports vitals.
func (e *Engine) handleStats(p *player.Player) *Response {
	return &Response{
		OK: true,
		Messages: []string{
			p.Name,
			fmt.Sprintf("HP: %d/%d", p.HP, p.MaxHP),
			fmt.Sprintf("Level: %d", p.Level),
			fmt.Sprintf("XP: %d", p.XP),
		},
		State: e.buildState(p),
	}
}

// handleReputation reports the player's standing with every faction,
// derived from the reputation event log.
func (e *Engine) handleReputation(p *player.Player) *Response {
	factions := e.factions.All()
	sceneDirty := false

	if len(factions) == 0 {
		state := e.buildState(p)
		state.SceneDirty = &sceneDirty
		return &Response{
			OK:       true,
			Messages: []string{"No factions have been established yet."},
			State:    state,
		}
	}

	messages := []string{"Your reputation:"}
	reputation := make(map[string]ReputationView, len(factions))
	for _, f := range factions {
		value, err := e.db.Reputation(p.ID, f.ID)
		if err != nil {
			logger.Errorf("Failed to compute reputation for %s with %s: %v", p.ID, f.ID, err)
			return fail("Internal error.")
		}
		tier := faction.Tier(value)
		reputation[f.ID] = ReputationView{Name: f.Name, Value: value, Tier: tier}
		messages = append(messages, fmt.Sprintf("  %s: %s (%d)", f.Name, tier, value))
	}

	state := e.buildState(p)
	state.Reputation = reputation
	state.SceneDirty = &sceneDirty
	return &Response{OK: true, Messages: messages, State: state}
}
