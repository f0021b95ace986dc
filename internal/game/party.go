package game

import (
	"fmt"
	"strings"

	"github.com/hollowpine/greybarrow/internal/database"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
)

// handlePartyInvite invites a co-located player into the inviter's party,
// creating the party first if the inviter has none. Only leaders invite.
func (e *Engine) handlePartyInvite(p *player.Player, targetName string) *Response {
	target, err := e.findPlayerAt(p.Location, targetName)
	if err != nil {
		return fail("Internal error.")
	}
	if target == nil {
		return fail(fmt.Sprintf("There is no player named '%s' here.", targetName))
	}
	if target.ID == p.ID {
		return fail("You cannot invite yourself.")
	}

	targetParty, err := e.db.GetPlayerParty(target.ID)
	if err != nil {
		logger.Errorf("Failed to load party for %s: %v", target.ID, err)
		return fail("Internal error.")
	}
	if targetParty != nil {
		return fail(fmt.Sprintf("%s is already in a party.", target.Name))
	}

	party, err := e.db.GetPlayerParty(p.ID)
	if err != nil {
		logger.Errorf("Failed to load party for %s: %v", p.ID, err)
		return fail("Internal error.")
	}
	if party == nil {
		partyID := e.newID()
		if err := e.db.CreateParty(partyID, p.ID, fmt.Sprintf("%s's Party", p.Name), e.nowMillis()); err != nil {
			logger.Errorf("Failed to create party for %s: %v", p.ID, err)
			return fail("Internal error.")
		}
		party, err = e.db.GetParty(partyID)
		if err != nil || party == nil {
			return fail("Internal error.")
		}
	} else if party.LeaderID != p.ID {
		return fail("Only the party leader can invite new members.")
	}

	invite := &database.PartyInvite{
		InviteID:     e.newID(),
		PartyID:      party.PartyID,
		FromPlayerID: p.ID,
		ToPlayerID:   target.ID,
		CreatedAt:    e.nowMillis(),
	}
	if err := e.db.CreatePartyInvite(invite); err != nil {
		logger.Errorf("Failed to create party invite: %v", err)
		return fail("Internal error.")
	}

	return &Response{
		OK: true,
		Messages: []string{
			fmt.Sprintf("You invite %s to join your party.", target.Name),
			fmt.Sprintf("They can accept with: accept_party_invite %s", invite.InviteID),
		},
		State: e.buildState(p),
	}
}

// handleAcceptPartyInvite joins the party an invite points at. Stale invites
// to vanished parties are deleted on discovery.
func (e *Engine) handleAcceptPartyInvite(p *player.Player, inviteID string) *Response {
	current, err := e.db.GetPlayerParty(p.ID)
	if err != nil {
		logger.Errorf("Failed to load party for %s: %v", p.ID, err)
		return fail("Internal error.")
	}
	if current != nil {
		return fail("You are already in a party. Leave your current party first.")
	}

	invite, err := e.db.GetPartyInvite(inviteID)
	if err != nil {
		logger.Errorf("Failed to load party invite %s: %v", inviteID, err)
		return fail("Internal error.")
	}
	if invite == nil {
		return fail("Invalid or expired invitation.")
	}
	if invite.ToPlayerID != p.ID {
		return fail("This invitation is not for you.")
	}

	party, err := e.db.GetParty(invite.PartyID)
	if err != nil {
		logger.Errorf("Failed to load party %s: %v", invite.PartyID, err)
		return fail("Internal error.")
	}
	if party == nil {
		if err := e.db.DeletePartyInvite(inviteID); err != nil {
			logger.Errorf("Failed to delete stale invite %s: %v", inviteID, err)
		}
		return fail("That party no longer exists.")
	}

	if err := e.db.AddPartyMember(party.PartyID, p.ID); err != nil {
		logger.Errorf("Failed to add %s to party %s: %v", p.ID, party.PartyID, err)
		return fail("Internal error.")
	}
	if err := e.db.DeletePartyInvite(inviteID); err != nil {
		logger.Errorf("Failed to delete invite %s: %v", inviteID, err)
	}

	names, err := e.partyMemberNames(party.PartyID)
	if err != nil {
		return fail("Internal error.")
	}

	return &Response{
		OK: true,
		Messages: []string{
			"You joined the party!",
			fmt.Sprintf("Party members: %s", strings.Join(names, ", ")),
		},
		State: e.buildState(p),
	}
}

// handleLeaveParty leaves the player's party. A leaving leader disbands it,
// invites included.
func (e *Engine) handleLeaveParty(p *player.Player) *Response {
	party, err := e.db.GetPlayerParty(p.ID)
	if err != nil {
		logger.Errorf("Failed to load party for %s: %v", p.ID, err)
		return fail("Internal error.")
	}
	if party == nil {
		return fail("You are not in a party.")
	}

	if err := e.db.RemovePartyMember(party.PartyID, p.ID); err != nil {
		logger.Errorf("Failed to remove %s from party %s: %v", p.ID, party.PartyID, err)
		return fail("Internal error.")
	}

	if party.LeaderID == p.ID {
		if err := e.db.DeleteParty(party.PartyID); err != nil {
			logger.Errorf("Failed to disband party %s: %v", party.PartyID, err)
			return fail("Internal error.")
		}
		return &Response{
			OK: true,
			Messages: []string{
				"You left the party.",
				"As the leader, the party has been disbanded.",
			},
			State: e.buildState(p),
		}
	}

	// Safety net: a party never survives with zero members.
	remaining, err := e.db.GetParty(party.PartyID)
	if err == nil && remaining != nil && len(remaining.Members) == 0 {
		if err := e.db.DeleteParty(party.PartyID); err != nil {
			logger.Errorf("Failed to delete empty party %s: %v", party.PartyID, err)
		}
	}

	return &Response{OK: true, Messages: []string{"You left the party."}, State: e.buildState(p)}
}

// handlePartyStatus lists the party's members with the leader marked.
func (e *Engine) handlePartyStatus(p *player.Player) *Response {
	party, err := e.db.GetPlayerParty(p.ID)
	if err != nil {
		logger.Errorf("Failed to load party for %s: %v", p.ID, err)
		return fail("Internal error.")
	}
	if party == nil {
		return &Response{OK: true, Messages: []string{"You are not in a party."}, State: e.buildState(p)}
	}

	var names []string
	for _, memberID := range party.Members {
		member, err := e.db.GetPlayer(memberID)
		if err != nil || member == nil {
			continue
		}
		name := member.Name
		if memberID == party.LeaderID {
			name += " (Leader)"
		}
		names = append(names, name)
	}

	return &Response{
		OK: true,
		Messages: []string{
			fmt.Sprintf("Party: %s", party.Name),
			fmt.Sprintf("Members: %s", strings.Join(names, ", ")),
		},
		State: e.buildState(p),
	}
}

func (e *Engine) partyMemberNames(partyID string) ([]string, error) {
	party, err := e.db.GetParty(partyID)
	if err != nil || party == nil {
		return nil, fmt.Errorf("load party %s: %w", partyID, err)
	}
	var names []string
	for _, memberID := range party.Members {
		member, err := e.db.GetPlayer(memberID)
		if err != nil || member == nil {
			continue
		}
		names = append(names, member.Name)
	}
	return names, nil
}
