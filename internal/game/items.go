package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
)

// handleUse consumes one of a held consumable, healing up to max HP. The
// item is matched against inventory by catalog name or ID.
func (e *Engine) handleUse(p *player.Player, itemName string) *Response {
	needle := strings.ToLower(strings.ReplaceAll(itemName, "_", " "))

	for itemID, qty := range p.Inventory {
		if qty <= 0 {
			continue
		}
		it, ok := e.items.Get(itemID)
		if !ok {
			continue
		}
		if strings.ToLower(it.Name) != needle && !strings.EqualFold(itemID, itemName) {
			continue
		}
		if !it.IsConsumable() || it.Heal <= 0 {
			continue
		}

		p.HP = min(p.MaxHP, p.HP+it.Heal)
		p.RemoveItem(itemID, 1)
		if err := e.db.UpsertPlayer(p); err != nil {
			logger.Errorf("Failed to save player %s: %v", p.ID, err)
			return fail("Internal error.")
		}
		return &Response{
			OK:       true,
			Messages: []string{fmt.Sprintf("You use %s. (+%d HP)", it.Name, it.Heal)},
			State:    e.buildState(p),
		}
	}

	return fail("You don't have that item.")
}

// handleInventory lists what the player is carrying.
func (e *Engine) handleInventory(p *player.Player) *Response {
	if len(p.Inventory) == 0 {
		return &Response{OK: true, Messages: []string{"Your inventory is empty."}, State: e.buildState(p)}
	}

	itemIDs := make([]string, 0, len(p.Inventory))
	for itemID := range p.Inventory {
		itemIDs = append(itemIDs, itemID)
	}
	sort.Strings(itemIDs)

	lines := []string{"You are carrying:"}
	for _, itemID := range itemIDs {
		lines = append(lines, fmt.Sprintf("- %s x%d", e.items.DisplayName(itemID), p.Inventory[itemID]))
	}
	return &Response{OK: true, Messages: lines, State: e.buildState(p)}
}
