package game

import (
	"github.com/hollowpine/greybarrow/internal/entity"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
	"github.com/hollowpine/greybarrow/internal/world"
)

// buildState assembles the full snapshot every mutating action returns:
// player record, location view with entities (self excluded), adjacent scene
// prefetch blocks, pending trades both ways, and party data.
func (e *Engine) buildState(p *player.Player) *State {
	state := &State{Player: p}

	loc, err := e.world.Location(p.Location)
	if err != nil {
		logger.Errorf("Player %s is at unknown location %s: %v", p.ID, p.Location, err)
		return state
	}

	state.Location = locationView(loc)
	state.Entities = e.entitiesAt(p.Location, p.ID)
	state.AdjacentScenes = e.adjacentScenes(loc)
	state.PendingTradeOffers = e.incomingTradeViews(p)
	state.PendingTradeOffersSent = e.outgoingTradeViews(p)
	state.Party = e.partyView(p.ID)
	state.PartyInvites = e.partyInviteViews(p.ID)
	return state
}

func locationView(loc *world.Location) *LocationView {
	exits := make([]ExitView, len(loc.Exits))
	for i, ex := range loc.Exits {
		exits[i] = ExitView{To: ex.To, Label: ex.Label}
	}
	return &LocationView{
		ID:          loc.ID,
		Name:        loc.Name,
		Description: loc.Description,
		Exits:       exits,
	}
}

// entitiesAt merges the location's world entities with the players there,
// excluding the viewer. Pass an empty excludeID for the unfiltered view.
func (e *Engine) entitiesAt(locationID, excludeID string) []EntityView {
	views := []EntityView{}
	for _, ent := range e.entities.At(locationID) {
		views = append(views, entityView(ent))
	}

	players, err := e.db.GetPlayersAtLocation(locationID)
	if err != nil {
		logger.Errorf("Failed to list players at %s: %v", locationID, err)
		return views
	}
	for _, p := range players {
		if p.ID == excludeID {
			continue
		}
		hp := p.HP
		views = append(views, EntityView{
			Type:  "player",
			ID:    p.ID,
			Name:  p.Name,
			HP:    &hp,
			Level: p.Level,
		})
	}
	return views
}

func entityView(ent *entity.Entity) EntityView {
	view := EntityView{
		Type: string(ent.Type),
		ID:   ent.ID,
		Name: ent.Name,
	}
	switch ent.Type {
	case entity.TypeMonster:
		hp := ent.HP
		view.HP = &hp
	case entity.TypeNPC:
		view.Role = string(ent.Role)
		if len(ent.Wares) > 0 {
			prices := make(map[string]int, len(ent.Wares))
			for itemID, entry := range ent.Wares {
				prices[itemID] = entry.Price
			}
			view.Inventory = prices
		}
		if len(ent.Quests) > 0 {
			view.Quests = append([]string(nil), ent.Quests...)
		}
	}
	return view
}

// adjacentScenes builds prefetch blocks for every exit of a location. These
// are not player-specific, so nobody is filtered out.
func (e *Engine) adjacentScenes(loc *world.Location) []SceneView {
	scenes := make([]SceneView, 0, len(loc.Exits))
	for _, ex := range loc.Exits {
		next, err := e.world.Location(ex.To)
		if err != nil {
			logger.Errorf("Exit %s of %s leads to unknown location: %v", ex.Label, loc.ID, err)
			continue
		}
		scenes = append(scenes, SceneView{
			Location: *locationView(next),
			Entities: e.entitiesAt(next.ID, ""),
		})
	}
	return scenes
}

func (e *Engine) incomingTradeViews(p *player.Player) []TradeOfferView {
	trades, err := e.db.GetTradesTo(p.ID)
	if err != nil {
		logger.Errorf("Failed to list trades for %s: %v", p.ID, err)
		return nil
	}
	views := make([]TradeOfferView, 0, len(trades))
	for _, t := range trades {
		senderName := "Unknown"
		if sender, err := e.db.GetPlayer(t.FromPlayerID); err == nil && sender != nil {
			senderName = sender.Name
		}
		views = append(views, TradeOfferView{
			TradeID:        t.TradeID,
			FromPlayerName: senderName,
			FromPlayerID:   t.FromPlayerID,
			OfferedItems:   t.OfferedItems,
			RequestedItems: t.RequestedItems,
			CanAccept:      p.HasItems(t.RequestedItems),
			CreatedAt:      t.CreatedAt,
		})
	}
	return views
}

func (e *Engine) outgoingTradeViews(p *player.Player) []SentTradeOfferView {
	trades, err := e.db.GetTradesFrom(p.ID)
	if err != nil {
		logger.Errorf("Failed to list trades from %s: %v", p.ID, err)
		return nil
	}
	views := make([]SentTradeOfferView, 0, len(trades))
	for _, t := range trades {
		recipientName := "Unknown"
		canBeAccepted := false
		if recipient, err := e.db.GetPlayer(t.ToPlayerID); err == nil && recipient != nil {
			recipientName = recipient.Name
			canBeAccepted = recipient.HasItems(t.RequestedItems)
		}
		views = append(views, SentTradeOfferView{
			TradeID:        t.TradeID,
			ToPlayerName:   recipientName,
			ToPlayerID:     t.ToPlayerID,
			OfferedItems:   t.OfferedItems,
			RequestedItems: t.RequestedItems,
			CanBeAccepted:  canBeAccepted,
			CreatedAt:      t.CreatedAt,
		})
	}
	return views
}

func (e *Engine) partyView(playerID string) *PartyView {
	party, err := e.db.GetPlayerParty(playerID)
	if err != nil {
		logger.Errorf("Failed to load party for %s: %v", playerID, err)
		return nil
	}
	if party == nil {
		return nil
	}

	members := make([]PartyMemberView, 0, len(party.Members))
	for _, memberID := range party.Members {
		member, err := e.db.GetPlayer(memberID)
		if err != nil || member == nil {
			continue
		}
		members = append(members, PartyMemberView{
			PlayerID: memberID,
			Name:     member.Name,
			IsLeader: memberID == party.LeaderID,
		})
	}
	return &PartyView{
		PartyID:  party.PartyID,
		Name:     party.Name,
		LeaderID: party.LeaderID,
		Members:  members,
	}
}

func (e *Engine) partyInviteViews(playerID string) []PartyInviteView {
	invites, err := e.db.GetPlayerPartyInvites(playerID)
	if err != nil {
		logger.Errorf("Failed to load party invites for %s: %v", playerID, err)
		return nil
	}
	views := make([]PartyInviteView, 0, len(invites))
	for _, inv := range invites {
		senderName := "Unknown"
		if sender, err := e.db.GetPlayer(inv.FromPlayerID); err == nil && sender != nil {
			senderName = sender.Name
		}
		views = append(views, PartyInviteView{
			InviteID:       inv.InviteID,
			PartyID:        inv.PartyID,
			FromPlayerID:   inv.FromPlayerID,
			FromPlayerName: senderName,
			CreatedAt:      inv.CreatedAt,
		})
	}
	return views
}
