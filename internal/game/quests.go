package game

import (
	"fmt"

	"github.com/hollowpine/greybarrow/internal/faction"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
	"github.com/hollowpine/greybarrow/internal/quest"
)

// handleAcceptQuest takes on a quest from its template. Repeatable quests
// already archived are cleared and re-accepted fresh. If the player is in a
// party, the quest is shared with every eligible member.
func (e *Engine) handleAcceptQuest(p *player.Player, questID string) *Response {
	template, ok := e.quests.Get(questID)
	if !ok {
		return fail("Unknown quest.")
	}

	if err := grantQuest(p, template, e.nowMillis()); err != nil {
		return fail(err.Error())
	}
	if err := e.db.UpsertPlayer(p); err != nil {
		logger.Errorf("Failed to save player %s: %v", p.ID, err)
		return fail("Internal error.")
	}

	messages := []string{fmt.Sprintf("Quest accepted: %s", template.Name)}
	messages = append(messages, e.shareQuestWithParty(p, template)...)

	return &Response{OK: true, Messages: messages, State: e.buildState(p)}
}

// grantQuest adds a fresh instance of a template to a player's active map,
// enforcing the quest-map eligibility rules.
func grantQuest(p *player.Player, template *quest.Template, acceptedAt int64) error {
	if _, ok := p.ActiveQuests[template.ID]; ok {
		return fmt.Errorf("You already have that quest.")
	}
	if _, ok := p.CompletedQuests[template.ID]; ok {
		return fmt.Errorf("You already have that quest.")
	}
	if _, ok := p.ArchivedQuests[template.ID]; ok {
		if !template.Repeatable {
			return fmt.Errorf("That quest cannot be repeated.")
		}
		delete(p.ArchivedQuests, template.ID)
	}

	p.ActiveQuests[template.ID] = quest.NewInstance(template, acceptedAt)
	return nil
}

// shareQuestWithParty grants the quest to every other party member who is
// eligible for it, each with independent progress.
func (e *Engine) shareQuestWithParty(p *player.Player, template *quest.Template) []string {
	party, err := e.db.GetPlayerParty(p.ID)
	if err != nil {
		logger.Errorf("Failed to load party for %s: %v", p.ID, err)
		return nil
	}
	if party == nil {
		return nil
	}

	var messages []string
	for _, memberID := range party.Members {
		if memberID == p.ID {
			continue
		}
		member, err := e.db.GetPlayer(memberID)
		if err != nil || member == nil {
			continue
		}
		if grantQuest(member, template, e.nowMillis()) != nil {
			continue
		}
		if err := e.db.UpsertPlayer(member); err != nil {
			logger.Errorf("Failed to save party member %s: %v", memberID, err)
			continue
		}
		messages = append(messages, fmt.Sprintf("%s also accepted the quest.", member.Name))
	}
	return messages
}

// handleTurnInQuest hands a completed quest back for its rewards and
// archives it. The error distinguishes not-yet-completed, already-turned-in,
// and never-held.
func (e *Engine) handleTurnInQuest(p *player.Player, questID string) *Response {
	q, ok := p.CompletedQuests[questID]
	if !ok {
		if _, active := p.ActiveQuests[questID]; active {
			return fail("That quest is not yet completed.")
		}
		if _, archived := p.ArchivedQuests[questID]; archived {
			return fail("That quest is already turned in.")
		}
		return fail("You don't have that quest.")
	}
	if q.Status != quest.StatusCompleted {
		return fail("That quest is not yet completed.")
	}

	messages := []string{fmt.Sprintf("Quest turned in: %s", q.Name)}
	for _, itemID := range sortedKeys(q.Rewards) {
		qty := q.Rewards[itemID]
		p.AddItem(itemID, qty)
		messages = append(messages, fmt.Sprintf("Received: %dx %s", qty, itemID))
	}
	p.ArchiveQuest(questID, e.nowMillis())

	if template, ok := e.quests.Get(questID); ok {
		if f, hasFaction := e.factions.ForNPC(template.GiverNPC); hasFaction {
			e.logReputationEvent(p, f.ID, "quest_completed")
		}
	}

	if err := e.db.UpsertPlayer(p); err != nil {
		logger.Errorf("Failed to save player %s: %v", p.ID, err)
		return fail("Internal error.")
	}

	return &Response{OK: true, Messages: messages, State: e.buildState(p)}
}

// logReputationEvent appends a reputation event of the named type for a
// faction.
func (e *Engine) logReputationEvent(p *player.Player, factionID, eventType string) {
	value := faction.EventValue(eventType)
	if err := e.db.LogReputationEvent(p.ID, factionID, eventType, value); err != nil {
		logger.Errorf("Failed to record reputation event for %s: %v", p.ID, err)
	}
}
