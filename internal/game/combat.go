package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hollowpine/greybarrow/internal/entity"
	"github.com/hollowpine/greybarrow/internal/faction"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
)

// handleAttack resolves a named target at the player's location: monsters
// first (PvE), then other players (PvP).
func (e *Engine) handleAttack(p *player.Player, targetName string) *Response {
	if ent, ok := e.entities.FindAt(p.Location, targetName); ok && ent.IsMonster() {
		return e.attackMonster(p, ent)
	}

	target, err := e.findPlayerAt(p.Location, targetName)
	if err != nil {
		return fail("Internal error.")
	}
	if target == nil {
		return fail("There is no one here by that name.")
	}
	return e.attackPlayer(p, target)
}

// attackMonster applies flat player damage; a surviving monster retaliates.
// Defeat removes the monster, advances matching kill objectives, and grants
// XP and loot.
func (e *Engine) attackMonster(p *player.Player, monster *entity.Entity) *Response {
	damage := e.cfg.Combat.PlayerDamage
	messages := []string{fmt.Sprintf("You attack the %s for %d damage.", monster.Name, damage)}

	defeated, found := e.entities.DamageMonster(p.Location, monster.ID, damage)
	if !found {
		// Someone else finished it between the lookup and the strike.
		return fail("There is no one here by that name.")
	}

	if defeated {
		messages = append(messages, fmt.Sprintf("The %s is defeated.", monster.Name))
		messages = append(messages, e.grantMonsterRewards(p, monster)...)
		messages = append(messages, e.recordQuestKills(p, monster.Name)...)
		if err := e.rules.TrackMonsterSurvival(p.Location); err != nil {
			logger.Errorf("Failed to track monster survival at %s: %v", p.Location, err)
		}
	} else {
		retaliation := e.cfg.Combat.MonsterRetaliation
		p.HP -= retaliation
		messages = append(messages, fmt.Sprintf("The %s hits you for %d damage.", monster.Name, retaliation))
	}

	if err := e.db.UpsertPlayer(p); err != nil {
		logger.Errorf("Failed to save player %s: %v", p.ID, err)
		return fail("Internal error.")
	}

	return &Response{OK: true, Messages: messages, State: e.buildState(p)}
}

// grantMonsterRewards credits the defeated monster's XP and loot table.
func (e *Engine) grantMonsterRewards(p *player.Player, monster *entity.Entity) []string {
	var messages []string
	if monster.XPReward > 0 {
		p.XP += monster.XPReward
		messages = append(messages, fmt.Sprintf("You gain %d XP.", monster.XPReward))
	}
	lootIDs := make([]string, 0, len(monster.Loot))
	for itemID := range monster.Loot {
		lootIDs = append(lootIDs, itemID)
	}
	sort.Strings(lootIDs)
	for _, itemID := range lootIDs {
		qty := monster.Loot[itemID]
		p.AddItem(itemID, qty)
		messages = append(messages, fmt.Sprintf("You loot: %dx %s", qty, e.items.DisplayName(itemID)))
	}
	return messages
}

// recordQuestKills advances kill objectives on every active quest and
// auto-completes quests whose objectives are all satisfied.
func (e *Engine) recordQuestKills(p *player.Player, monsterName string) []string {
	var messages []string
	var completed []string
	for questID, q := range p.ActiveQuests {
		if !q.RecordKill(monsterName) {
			continue
		}
		messages = append(messages, q.ProgressText()...)
		if q.AllObjectivesSatisfied() {
			completed = append(completed, questID)
		}
	}
	sort.Strings(completed)
	for _, questID := range completed {
		name := p.ActiveQuests[questID].Name
		p.CompleteQuest(questID, e.nowMillis())
		messages = append(messages, fmt.Sprintf("Quest complete: %s. Return to turn it in.", name))
	}
	return messages
}

// attackPlayer is the PvP branch: respawn protection and per-target cooldown
// gate the attack, defeat respawns the target at the configured location.
func (e *Engine) attackPlayer(attacker *player.Player, target *player.Player) *Response {
	if target.ID == attacker.ID {
		return fail("You can't attack yourself.")
	}

	now := e.nowMillis()

	if target.LastDefeatedAt > 0 {
		protection := int64(e.cfg.Combat.RespawnProtectionSeconds) * 1000
		elapsed := now - target.LastDefeatedAt
		if elapsed < protection {
			remaining := (protection - elapsed + 999) / 1000
			return fail(fmt.Sprintf("%s is protected after defeat. Try again in %ds.", target.Name, remaining))
		}
	}

	if attacker.LastAttackAt > 0 && strings.EqualFold(attacker.LastAttackTarget, target.Name) {
		cooldown := int64(e.cfg.Combat.AttackCooldownSeconds) * 1000
		elapsed := now - attacker.LastAttackAt
		if elapsed < cooldown {
			remaining := (cooldown - elapsed + 999) / 1000
			return fail(fmt.Sprintf("You are still recovering from your last attack on %s. Try again in %ds.", target.Name, remaining))
		}
	}

	damage := e.cfg.Combat.PlayerDamage
	messages := []string{fmt.Sprintf("You attack %s for %d damage.", target.Name, damage)}
	target.HP -= damage

	attacker.LastAttackTarget = target.Name
	attacker.LastAttackAt = now

	if target.HP <= 0 {
		messages = append(messages, fmt.Sprintf("%s is defeated!", target.Name))
		target.HP = target.MaxHP
		target.Location = e.cfg.Combat.RespawnLocation
		target.LastDefeatedAt = now
		if loc, err := e.world.Location(target.Location); err == nil {
			messages = append(messages, fmt.Sprintf("%s is sent back to the %s.", target.Name, loc.Name))
		}
	}

	e.logTerritoryAttack(attacker)

	if err := e.db.UpsertPlayer(target); err != nil {
		logger.Errorf("Failed to save player %s: %v", target.ID, err)
		return fail("Internal error.")
	}
	if err := e.db.UpsertPlayer(attacker); err != nil {
		logger.Errorf("Failed to save player %s: %v", attacker.ID, err)
		return fail("Internal error.")
	}

	return &Response{OK: true, Messages: messages, State: e.buildState(attacker)}
}

// logTerritoryAttack records the reputation hit with every faction holding
// influence where the attack happened.
func (e *Engine) logTerritoryAttack(attacker *player.Player) {
	value := faction.EventValue("attacked_in_territory")
	for _, f := range e.factions.AtLocation(attacker.Location) {
		if err := e.db.LogReputationEvent(attacker.ID, f.ID, "attacked_in_territory", value); err != nil {
			logger.Errorf("Failed to record reputation event for %s: %v", attacker.ID, err)
		}
	}
}

// findPlayerAt loads the player with the given display name at a location,
// or nil when absent.
func (e *Engine) findPlayerAt(locationID, name string) (*player.Player, error) {
	players, err := e.db.GetPlayersAtLocation(locationID)
	if err != nil {
		logger.Errorf("Failed to list players at %s: %v", locationID, err)
		return nil, err
	}
	for _, p := range players {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return nil, nil
}
