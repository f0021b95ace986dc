package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/hollowpine/greybarrow/internal/entity"
	"github.com/hollowpine/greybarrow/internal/faction"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
)

const currencyItem = "coin"

// handleBuy buys one of an item from the shop NPC at the player's location.
// The listed price is adjusted by the player's standing with the shopkeeper's
// faction.
func (e *Engine) handleBuy(p *player.Player, itemName string) *Response {
	shop, ok := e.entities.FindNPCWithRole(p.Location, entity.RoleShop)
	if !ok {
		return fail("There is no shop here.")
	}

	modifier, hostile, err := e.shopStanding(p, shop)
	if err != nil {
		return fail("Internal error.")
	}
	if hostile {
		return fail(fmt.Sprintf("%s refuses to deal with you.", shop.Name))
	}

	itemID, entry, ok := e.findWare(shop, itemName)
	if !ok {
		return fail("That item is not for sale.")
	}

	price := int(math.Round(float64(entry.Price) * modifier))

	coins := p.ItemCount(currencyItem)
	if coins < price {
		return fail("You can't afford that.")
	}

	p.RemoveItem(currencyItem, price)
	p.AddItem(itemID, 1)
	if err := e.db.UpsertPlayer(p); err != nil {
		logger.Errorf("Failed to save player %s: %v", p.ID, err)
		return fail("Internal error.")
	}

	return &Response{
		OK:       true,
		Messages: []string{fmt.Sprintf("You buy a %s for %d coins.", e.items.DisplayName(itemID), price)},
		State:    e.buildState(p),
	}
}

// findWare matches a shop listing by item ID or catalog display name.
func (e *Engine) findWare(shop *entity.Entity, itemName string) (string, entity.ShopEntry, bool) {
	for itemID, entry := range shop.Wares {
		if strings.EqualFold(itemID, itemName) {
			return itemID, entry, true
		}
		if it, ok := e.items.Get(itemID); ok && strings.EqualFold(it.Name, itemName) {
			return itemID, entry, true
		}
	}
	return "", entity.ShopEntry{}, false
}

// shopStanding resolves the player's standing with the shopkeeper's faction:
// the price modifier for their reputation tier, and whether the faction
// refuses to trade with them outright. NPCs without a faction sell at face
// value to anyone.
func (e *Engine) shopStanding(p *player.Player, shop *entity.Entity) (float64, bool, error) {
	f, ok := e.factions.ForNPC(shop.ID)
	if !ok {
		return 1.0, false, nil
	}
	value, err := e.db.Reputation(p.ID, f.ID)
	if err != nil {
		logger.Errorf("Failed to compute reputation for %s with %s: %v", p.ID, f.ID, err)
		return 0, false, err
	}
	return faction.PriceModifier(value), faction.IsHostile(value), nil
}
