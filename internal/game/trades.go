package game

import (
	"fmt"
	"strings"

	"github.com/hollowpine/greybarrow/internal/database"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
)

// handleOfferTrade creates an unescrowed pending trade with another player at
// the same location. The offered items are checked now but not reserved;
// accept-time re-validation is what actually guards the exchange.
func (e *Engine) handleOfferTrade(p *player.Player, args OfferTradeArgs) *Response {
	offerItems := pruneZeroQuantities(args.OfferItems)
	requestItems := pruneZeroQuantities(args.RequestItems)

	if len(offerItems) == 0 && len(requestItems) == 0 {
		return fail("Trade must include offered or requested items.")
	}

	target, err := e.findPlayerAt(p.Location, args.ToPlayer)
	if err != nil {
		return fail("Internal error.")
	}
	if target == nil {
		return fail(fmt.Sprintf("Player '%s' is not here.", args.ToPlayer))
	}
	if target.ID == p.ID {
		return fail("You can't trade with yourself.")
	}

	for _, itemID := range sortedKeys(offerItems) {
		if qty := offerItems[itemID]; p.ItemCount(itemID) < qty {
			return fail(fmt.Sprintf("You don't have %d %s to offer.", qty, itemID))
		}
	}

	tradeID := strings.ReplaceAll(e.newID(), "-", "")[:16]
	trade := &database.PendingTrade{
		TradeID:        tradeID,
		FromPlayerID:   p.ID,
		ToPlayerID:     target.ID,
		OfferedItems:   offerItems,
		RequestedItems: requestItems,
		CreatedAt:      e.nowMillis(),
	}
	if err := e.db.CreatePendingTrade(trade); err != nil {
		logger.Errorf("Failed to create trade %s: %v", tradeID, err)
		return fail("Internal error.")
	}

	messages := []string{
		fmt.Sprintf("Trade offer created (ID: %s)", tradeID),
		fmt.Sprintf("You offer: %s", describeItems(offerItems)),
		fmt.Sprintf("You request: %s", describeItems(requestItems)),
		fmt.Sprintf("%s can accept with: accept_trade %s", target.Name, tradeID),
	}

	state := e.buildState(p)
	state.TradeID = tradeID
	return &Response{OK: true, Messages: messages, State: state}
}

// handleAcceptTrade re-validates both sides and performs the four-way
// exchange. A trade whose sender can no longer cover it is deleted.
func (e *Engine) handleAcceptTrade(p *player.Player, tradeID string) *Response {
	trade, err := e.db.GetPendingTrade(tradeID)
	if err != nil {
		logger.Errorf("Failed to load trade %s: %v", tradeID, err)
		return fail("Internal error.")
	}
	if trade == nil {
		return fail(fmt.Sprintf("Trade '%s' not found.", tradeID))
	}
	if trade.ToPlayerID != p.ID {
		return fail("This trade is not for you.")
	}

	sender, err := e.db.GetPlayer(trade.FromPlayerID)
	if err != nil {
		logger.Errorf("Failed to load trade sender %s: %v", trade.FromPlayerID, err)
		return fail("Internal error.")
	}
	if sender == nil {
		e.deleteTrade(tradeID)
		return fail("The offering player no longer exists.")
	}

	// Nothing is escrowed, so both inventories are re-checked now.
	for _, itemID := range sortedKeys(trade.OfferedItems) {
		if qty := trade.OfferedItems[itemID]; sender.ItemCount(itemID) < qty {
			e.deleteTrade(tradeID)
			return fail(fmt.Sprintf("%s no longer has %d %s.", sender.Name, qty, itemID))
		}
	}
	for _, itemID := range sortedKeys(trade.RequestedItems) {
		if qty := trade.RequestedItems[itemID]; p.ItemCount(itemID) < qty {
			return fail(fmt.Sprintf("You don't have %d %s to complete this trade.", qty, itemID))
		}
	}

	for itemID, qty := range trade.OfferedItems {
		sender.RemoveItem(itemID, qty)
		p.AddItem(itemID, qty)
	}
	for itemID, qty := range trade.RequestedItems {
		p.RemoveItem(itemID, qty)
		sender.AddItem(itemID, qty)
	}

	if err := e.db.UpsertPlayer(sender); err != nil {
		logger.Errorf("Failed to save player %s: %v", sender.ID, err)
		return fail("Internal error.")
	}
	if err := e.db.UpsertPlayer(p); err != nil {
		logger.Errorf("Failed to save player %s: %v", p.ID, err)
		return fail("Internal error.")
	}
	e.deleteTrade(tradeID)

	e.logTradeReputation(p, p.Location)
	e.logTradeReputation(sender, p.Location)

	messages := []string{
		fmt.Sprintf("Trade completed with %s!", sender.Name),
		fmt.Sprintf("You received: %s", describeItems(trade.OfferedItems)),
		fmt.Sprintf("You gave: %s", describeItems(trade.RequestedItems)),
	}
	return &Response{OK: true, Messages: messages, State: e.buildState(p)}
}

// handleCancelTrade withdraws a pending trade. Only the sender may cancel.
func (e *Engine) handleCancelTrade(p *player.Player, tradeID string) *Response {
	trade, err := e.db.GetPendingTrade(tradeID)
	if err != nil {
		logger.Errorf("Failed to load trade %s: %v", tradeID, err)
		return fail("Internal error.")
	}
	if trade == nil {
		return fail(fmt.Sprintf("Trade '%s' not found.", tradeID))
	}
	if trade.FromPlayerID != p.ID {
		return fail("You can only cancel trades you've offered.")
	}

	e.deleteTrade(tradeID)
	return &Response{
		OK:       true,
		Messages: []string{fmt.Sprintf("Trade '%s' has been cancelled.", tradeID)},
		State:    e.buildState(p),
	}
}

// handleListTrades lists pending trades in both directions, marking received
// trades the player cannot currently cover.
func (e *Engine) handleListTrades(p *player.Player) *Response {
	state := e.buildState(p)

	if len(state.PendingTradeOffers) == 0 && len(state.PendingTradeOffersSent) == 0 {
		return &Response{OK: true, Messages: []string{"You have no pending trades."}, State: state}
	}

	var messages []string
	if len(state.PendingTradeOffersSent) > 0 {
		messages = append(messages, "=== Trades You've Offered ===")
		for _, t := range state.PendingTradeOffersSent {
			messages = append(messages, fmt.Sprintf("  [%s] To %s: %s for %s",
				t.TradeID, t.ToPlayerName, describeItems(t.OfferedItems), describeItems(t.RequestedItems)))
		}
	}
	if len(state.PendingTradeOffers) > 0 {
		messages = append(messages, "=== Trades Offered to You ===")
		for _, t := range state.PendingTradeOffers {
			status := ""
			if !t.CanAccept {
				status = " [Cannot accept - missing items]"
			}
			messages = append(messages, fmt.Sprintf("  [%s] From %s: %s for %s%s",
				t.TradeID, t.FromPlayerName, describeItems(t.OfferedItems), describeItems(t.RequestedItems), status))
		}
	}

	return &Response{OK: true, Messages: messages, State: state}
}

func (e *Engine) deleteTrade(tradeID string) {
	if err := e.db.DeletePendingTrade(tradeID); err != nil {
		logger.Errorf("Failed to delete trade %s: %v", tradeID, err)
	}
}

// logTradeReputation credits trade_completed with every faction holding
// influence at locationID. The trade completes where the accepter stands,
// so both parties are credited against that location's factions.
func (e *Engine) logTradeReputation(p *player.Player, locationID string) {
	for _, f := range e.factions.AtLocation(locationID) {
		e.logReputationEvent(p, f.ID, "trade_completed")
	}
}

// pruneZeroQuantities drops non-positive entries from an item map.
func pruneZeroQuantities(items map[string]int) map[string]int {
	out := make(map[string]int, len(items))
	for itemID, qty := range items {
		if qty > 0 {
			out[itemID] = qty
		}
	}
	return out
}

// describeItems renders an item map as "2x coin, 1x healing_herb", or
// "nothing" when empty.
func describeItems(items map[string]int) string {
	if len(items) == 0 {
		return "nothing"
	}
	parts := make([]string, 0, len(items))
	for _, itemID := range sortedKeys(items) {
		parts = append(parts, fmt.Sprintf("%dx %s", items[itemID], itemID))
	}
	return strings.Join(parts, ", ")
}
