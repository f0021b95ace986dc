package game

import (
	"strings"
	"testing"
)

// inviteToParty invites the target and returns the invite ID pulled from the
// response message.
func inviteToParty(t *testing.T, e *Engine, from, targetName string) string {
	t.Helper()
	resp := apply(e, from, ActionPartyInvite, PartyInviteArgs{TargetPlayer: targetName})
	if !resp.OK {
		t.Fatalf("party invite: %s", resp.Error)
	}
	const prefix = "They can accept with: accept_party_invite "
	for _, m := range resp.Messages {
		if strings.HasPrefix(m, prefix) {
			return strings.TrimPrefix(m, prefix)
		}
	}
	t.Fatalf("no invite id in messages: %v", resp.Messages)
	return ""
}

func TestPartyInviteValidation(t *testing.T) {
	e := newTestEngine(t)
	arlen := createPlayer(t, e, "Arlen")

	resp := apply(e, arlen, ActionPartyInvite, PartyInviteArgs{TargetPlayer: "Ghost"})
	if resp.OK || resp.Error != "There is no player named 'Ghost' here." {
		t.Errorf("absent target: ok=%v error=%q", resp.OK, resp.Error)
	}

	resp = apply(e, arlen, ActionPartyInvite, PartyInviteArgs{TargetPlayer: "Arlen"})
	if resp.OK || resp.Error != "You cannot invite yourself." {
		t.Errorf("self invite: ok=%v error=%q", resp.OK, resp.Error)
	}
}

func TestPartyInviteAcceptAndStatus(t *testing.T) {
	e := newTestEngine(t)
	arlen := createPlayer(t, e, "Arlen")
	beryl := createPlayer(t, e, "Beryl")

	inviteID := inviteToParty(t, e, arlen, "Beryl")

	resp := apply(e, beryl, ActionAcceptPartyInvite, PartyInviteIDArgs{InviteID: inviteID})
	if !resp.OK {
		t.Fatalf("accept invite: %s", resp.Error)
	}
	if resp.Messages[0] != "You joined the party!" {
		t.Errorf("message = %q", resp.Messages[0])
	}
	if !strings.Contains(resp.Messages[1], "Arlen") || !strings.Contains(resp.Messages[1], "Beryl") {
		t.Errorf("member list = %q", resp.Messages[1])
	}

	// Status shows the leader mark and party name.
	resp = apply(e, beryl, ActionPartyStatus, nil)
	if got, want := resp.Messages[0], "Party: Arlen's Party"; got != want {
		t.Errorf("party name = %q, want %q", got, want)
	}
	if !strings.Contains(resp.Messages[1], "Arlen (Leader)") {
		t.Errorf("leader mark missing: %q", resp.Messages[1])
	}

	// An invite is single-use.
	resp = apply(e, beryl, ActionAcceptPartyInvite, PartyInviteIDArgs{InviteID: inviteID})
	if resp.OK || resp.Error != "You are already in a party. Leave your current party first." {
		t.Errorf("re-accept: ok=%v error=%q", resp.OK, resp.Error)
	}
}

func TestPartyInviteOnlyLeaderInvites(t *testing.T) {
	e := newTestEngine(t)
	arlen := createPlayer(t, e, "Arlen")
	beryl := createPlayer(t, e, "Beryl")
	createPlayer(t, e, "Cole")

	inviteID := inviteToParty(t, e, arlen, "Beryl")
	if resp := apply(e, beryl, ActionAcceptPartyInvite, PartyInviteIDArgs{InviteID: inviteID}); !resp.OK {
		t.Fatalf("accept invite: %s", resp.Error)
	}

	resp := apply(e, beryl, ActionPartyInvite, PartyInviteArgs{TargetPlayer: "Cole"})
	if resp.OK || resp.Error != "Only the party leader can invite new members." {
		t.Errorf("member invite: ok=%v error=%q", resp.OK, resp.Error)
	}

	// Players already in a party cannot be invited again.
	resp = apply(e, arlen, ActionPartyInvite, PartyInviteArgs{TargetPlayer: "Beryl"})
	if resp.OK || resp.Error != "Beryl is already in a party." {
		t.Errorf("double invite: ok=%v error=%q", resp.OK, resp.Error)
	}
}

func TestAcceptPartyInviteValidation(t *testing.T) {
	e := newTestEngine(t)
	arlen := createPlayer(t, e, "Arlen")
	createPlayer(t, e, "Beryl")
	cole := createPlayer(t, e, "Cole")

	resp := apply(e, cole, ActionAcceptPartyInvite, PartyInviteIDArgs{InviteID: "nope"})
	if resp.OK || resp.Error != "Invalid or expired invitation." {
		t.Errorf("bad invite: ok=%v error=%q", resp.OK, resp.Error)
	}

	inviteID := inviteToParty(t, e, arlen, "Beryl")
	resp = apply(e, cole, ActionAcceptPartyInvite, PartyInviteIDArgs{InviteID: inviteID})
	if resp.OK || resp.Error != "This invitation is not for you." {
		t.Errorf("wrong addressee: ok=%v error=%q", resp.OK, resp.Error)
	}
}

func TestAcceptInviteToDisbandedParty(t *testing.T) {
	e := newTestEngine(t)
	arlen := createPlayer(t, e, "Arlen")
	beryl := createPlayer(t, e, "Beryl")

	inviteID := inviteToParty(t, e, arlen, "Beryl")

	// The leader leaves, which disbands the party and sweeps its invites.
	if resp := apply(e, arlen, ActionLeaveParty, nil); !resp.OK {
		t.Fatalf("leave: %s", resp.Error)
	}

	invite, err := e.db.GetPartyInvite(inviteID)
	if err != nil {
		t.Fatalf("load invite: %v", err)
	}
	if invite != nil {
		t.Error("invite survived disband")
	}

	resp := apply(e, beryl, ActionAcceptPartyInvite, PartyInviteIDArgs{InviteID: inviteID})
	if resp.OK || resp.Error != "Invalid or expired invitation." {
		t.Errorf("stale invite: ok=%v error=%q", resp.OK, resp.Error)
	}
}

func TestLeaveParty(t *testing.T) {
	e := newTestEngine(t)
	arlen := createPlayer(t, e, "Arlen")
	beryl := createPlayer(t, e, "Beryl")

	resp := apply(e, arlen, ActionLeaveParty, nil)
	if resp.OK || resp.Error != "You are not in a party." {
		t.Errorf("no party: ok=%v error=%q", resp.OK, resp.Error)
	}

	inviteID := inviteToParty(t, e, arlen, "Beryl")
	if resp := apply(e, beryl, ActionAcceptPartyInvite, PartyInviteIDArgs{InviteID: inviteID}); !resp.OK {
		t.Fatalf("accept: %s", resp.Error)
	}

	// A member leaving does not disband.
	resp = apply(e, beryl, ActionLeaveParty, nil)
	if !resp.OK || resp.Messages[0] != "You left the party." {
		t.Errorf("member leave: ok=%v messages=%v", resp.OK, resp.Messages)
	}
	party, err := e.db.GetPlayerParty(arlen)
	if err != nil || party == nil {
		t.Fatalf("leader's party gone: %v", err)
	}

	// The leader leaving disbands it.
	resp = apply(e, arlen, ActionLeaveParty, nil)
	if !resp.OK {
		t.Fatalf("leader leave: %s", resp.Error)
	}
	if got, want := resp.Messages[1], "As the leader, the party has been disbanded."; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	party, err = e.db.GetPlayerParty(arlen)
	if err != nil {
		t.Fatalf("load party: %v", err)
	}
	if party != nil {
		t.Error("party survived disband")
	}
}

func TestPartyQuestSharing(t *testing.T) {
	e := newTestEngine(t)
	arlen := createPlayer(t, e, "Arlen")
	beryl := createPlayer(t, e, "Beryl")

	inviteID := inviteToParty(t, e, arlen, "Beryl")
	if resp := apply(e, beryl, ActionAcceptPartyInvite, PartyInviteIDArgs{InviteID: inviteID}); !resp.OK {
		t.Fatalf("accept invite: %s", resp.Error)
	}

	resp := apply(e, arlen, ActionAcceptQuest, QuestArgs{QuestID: "rat_problem"})
	if !resp.OK {
		t.Fatalf("accept quest: %s", resp.Error)
	}
	if !strings.Contains(strings.Join(resp.Messages, "\n"), "Beryl also accepted the quest.") {
		t.Errorf("sharing message missing: %v", resp.Messages)
	}

	// Each member holds an independent instance.
	member, err := e.db.GetPlayer(beryl)
	if err != nil || member == nil {
		t.Fatalf("load member: %v", err)
	}
	q, ok := member.ActiveQuests["rat_problem"]
	if !ok {
		t.Fatal("member did not receive quest")
	}
	if q.Objectives[0].Progress != 0 {
		t.Errorf("member progress = %d, want 0", q.Objectives[0].Progress)
	}
}

func TestPartyInviteRequiresSameLocation(t *testing.T) {
	e := newTestEngine(t)
	arlen := createPlayer(t, e, "Arlen")
	berylID := createPlayer(t, e, "Beryl")
	mustSetLocation(t, e, berylID, "tavern")

	resp := apply(e, arlen, ActionPartyInvite, PartyInviteArgs{TargetPlayer: "Beryl"})
	if resp.OK || resp.Error != "There is no player named 'Beryl' here." {
		t.Errorf("remote invite: ok=%v error=%q", resp.OK, resp.Error)
	}
}
