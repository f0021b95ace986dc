package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hollowpine/greybarrow/internal/entity"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
	"github.com/hollowpine/greybarrow/internal/quest"
)

// handleTalk addresses an NPC at the player's location. Quest givers turn in
// finished quests, report progress, or offer new work; shopkeepers list their
// wares; everyone else just says hello.
func (e *Engine) handleTalk(p *player.Player, target string) *Response {
	npc, ok := e.entities.FindAt(p.Location, target)
	if !ok || npc.Type != entity.TypeNPC {
		return fail("There is no one like that to talk to.")
	}

	messages := []string{fmt.Sprintf("%s says:", npc.Name)}

	switch npc.Role {
	case entity.RoleQuestGiver:
		lines, err := e.questGiverDialogue(p, npc)
		if err != nil {
			return fail("Internal error.")
		}
		messages = append(messages, lines...)
	case entity.RoleShop:
		messages = append(messages, e.shopDialogue(npc)...)
	default:
		messages = append(messages, "\"Hello there.\"")
	}

	return &Response{OK: true, Messages: messages, State: e.buildState(p)}
}

// questGiverDialogue runs the quest-giver conversation: auto-turn-in of this
// NPC's completed quests first, then progress on active ones, then the first
// available offer.
func (e *Engine) questGiverDialogue(p *player.Player, npc *entity.Entity) ([]string, error) {
	var lines []string

	turnedIn, err := e.autoTurnIn(p, npc)
	if err != nil {
		return nil, err
	}
	lines = append(lines, turnedIn...)

	inProgress := false
	for _, questID := range sortedKeys(p.ActiveQuests) {
		q := p.ActiveQuests[questID]
		if !npcGivesQuest(npc, questID) {
			continue
		}
		inProgress = true
		lines = append(lines, fmt.Sprintf("\"How goes it with %s?\"", q.Name))
		lines = append(lines, q.ProgressText()...)
	}
	if inProgress {
		return lines, nil
	}

	offer, err := e.offerDialogue(p, npc)
	if err != nil {
		return nil, err
	}
	return append(lines, offer...), nil
}

// autoTurnIn completes the handshake for every quest of this NPC sitting in
// the player's completed map: rewards granted, quest archived.
func (e *Engine) autoTurnIn(p *player.Player, npc *entity.Entity) ([]string, error) {
	var lines []string
	for _, questID := range sortedKeys(p.CompletedQuests) {
		q := p.CompletedQuests[questID]
		if !npcGivesQuest(npc, questID) || q.Status != quest.StatusCompleted {
			continue
		}

		lines = append(lines, fmt.Sprintf("\"You have done well. %s is complete.\"", q.Name))
		for _, itemID := range sortedKeys(q.Rewards) {
			qty := q.Rewards[itemID]
			p.AddItem(itemID, qty)
			lines = append(lines, fmt.Sprintf("Received: %dx %s", qty, itemID))
		}
		p.ArchiveQuest(questID, e.nowMillis())
		e.logQuestReputation(p, npc)

		if err := e.db.UpsertPlayer(p); err != nil {
			logger.Errorf("Failed to save player %s: %v", p.ID, err)
			return nil, err
		}
	}
	return lines, nil
}

// offerDialogue finds the first offerable quest from this NPC, skipping
// quests the player holds (unless archived and repeatable) and quests whose
// availability conditions fail.
func (e *Engine) offerDialogue(p *player.Player, npc *entity.Entity) ([]string, error) {
	var unavailable string

	for _, t := range e.quests.ForNPC(npc.ID) {
		if _, ok := p.ActiveQuests[t.ID]; ok {
			continue
		}
		if _, ok := p.CompletedQuests[t.ID]; ok {
			continue
		}
		if _, ok := p.ArchivedQuests[t.ID]; ok && !t.Repeatable {
			continue
		}

		available, err := e.quests.Available(t, e)
		if err != nil {
			return nil, err
		}
		if !available {
			if t.UnavailableText != "" {
				unavailable = t.UnavailableText
			}
			continue
		}

		return []string{
			fmt.Sprintf("\"%s\"", t.Description),
			fmt.Sprintf("You may `accept %s`.", t.ID),
		}, nil
	}

	if unavailable != "" {
		return []string{fmt.Sprintf("\"%s\"", unavailable)}, nil
	}
	return []string{"\"You have done all I asked. Thank you.\""}, nil
}

// shopDialogue lists a shopkeeper's wares with their base prices.
func (e *Engine) shopDialogue(npc *entity.Entity) []string {
	if len(npc.Wares) == 0 {
		return []string{"\"Sorry, I have nothing for sale right now.\""}
	}

	itemIDs := make([]string, 0, len(npc.Wares))
	for itemID := range npc.Wares {
		itemIDs = append(itemIDs, itemID)
	}
	sort.Strings(itemIDs)

	listings := make([]string, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		listings = append(listings, fmt.Sprintf("%s (%d coins)", e.items.DisplayName(itemID), npc.Wares[itemID].Price))
	}
	return []string{
		fmt.Sprintf("\"Take a look at my wares: %s.\"", strings.Join(listings, ", ")),
		"You can `buy <item>`.",
	}
}

// logQuestReputation credits the quest_completed event with the giver's
// faction, if the NPC belongs to one.
func (e *Engine) logQuestReputation(p *player.Player, npc *entity.Entity) {
	if f, ok := e.factions.ForNPC(npc.ID); ok {
		e.logReputationEvent(p, f.ID, "quest_completed")
	}
}

func npcGivesQuest(npc *entity.Entity, questID string) bool {
	for _, id := range npc.Quests {
		if id == questID {
			return true
		}
	}
	return false
}

// sortedKeys returns map keys in stable order so dialogue and rewards read
// the same way every time.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
