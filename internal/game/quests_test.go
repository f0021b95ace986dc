package game

import (
	"strings"
	"testing"
)

// giveItems grants inventory directly through the gateway.
func giveItems(t *testing.T, e *Engine, playerID string, items map[string]int) {
	t.Helper()
	p, err := e.db.GetPlayer(playerID)
	if err != nil || p == nil {
		t.Fatalf("load player: %v", err)
	}
	for id, qty := range items {
		p.AddItem(id, qty)
	}
	if err := e.db.UpsertPlayer(p); err != nil {
		t.Fatalf("save player: %v", err)
	}
}

// completeRatProblem accepts the quest and kills both rats.
func completeRatProblem(t *testing.T, e *Engine, pid string) {
	t.Helper()
	if resp := apply(e, pid, ActionAcceptQuest, QuestArgs{QuestID: "rat_problem"}); !resp.OK {
		t.Fatalf("accept quest: %s", resp.Error)
	}
	mustSetLocation(t, e, pid, "forest")
	for _, id := range []string{"rat_1", "rat_1", "rat_2", "rat_2"} {
		if resp := apply(e, pid, ActionAttack, AttackArgs{Target: id}); !resp.OK {
			t.Fatalf("attack %s: %s", id, resp.Error)
		}
	}
}

func TestAcceptQuest(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	resp := apply(e, pid, ActionAcceptQuest, QuestArgs{QuestID: "rat_problem"})
	if !resp.OK {
		t.Fatalf("accept: %s", resp.Error)
	}
	if got, want := resp.Messages[0], "Quest accepted: A Rat Problem"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if _, ok := resp.State.Player.ActiveQuests["rat_problem"]; !ok {
		t.Error("quest not active")
	}

	// Accepting again fails.
	resp = apply(e, pid, ActionAcceptQuest, QuestArgs{QuestID: "rat_problem"})
	if resp.OK || resp.Error != "You already have that quest." {
		t.Errorf("double accept: ok=%v error=%q", resp.OK, resp.Error)
	}

	resp = apply(e, pid, ActionAcceptQuest, QuestArgs{QuestID: "dragon_slayer"})
	if resp.OK || resp.Error != "Unknown quest." {
		t.Errorf("unknown quest: ok=%v error=%q", resp.OK, resp.Error)
	}
}

func TestTurnInQuest(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	// Not held at all.
	resp := apply(e, pid, ActionTurnInQuest, QuestArgs{QuestID: "rat_problem"})
	if resp.OK || resp.Error != "You don't have that quest." {
		t.Errorf("never held: ok=%v error=%q", resp.OK, resp.Error)
	}

	if resp := apply(e, pid, ActionAcceptQuest, QuestArgs{QuestID: "rat_problem"}); !resp.OK {
		t.Fatalf("accept: %s", resp.Error)
	}

	// Active but unfinished.
	resp = apply(e, pid, ActionTurnInQuest, QuestArgs{QuestID: "rat_problem"})
	if resp.OK || resp.Error != "That quest is not yet completed." {
		t.Errorf("unfinished: ok=%v error=%q", resp.OK, resp.Error)
	}

	mustSetLocation(t, e, pid, "forest")
	for _, id := range []string{"rat_1", "rat_1", "rat_2", "rat_2"} {
		if resp := apply(e, pid, ActionAttack, AttackArgs{Target: id}); !resp.OK {
			t.Fatalf("attack %s: %s", id, resp.Error)
		}
	}

	resp = apply(e, pid, ActionTurnInQuest, QuestArgs{QuestID: "rat_problem"})
	if !resp.OK {
		t.Fatalf("turn in: %s", resp.Error)
	}
	joined := strings.Join(resp.Messages, "\n")
	if !strings.Contains(joined, "Quest turned in: A Rat Problem") {
		t.Errorf("missing turn-in message: %v", resp.Messages)
	}
	if !strings.Contains(joined, "Received: 5x coin") || !strings.Contains(joined, "Received: 1x healing_herb") {
		t.Errorf("missing reward messages: %v", resp.Messages)
	}

	p := resp.State.Player
	// Rewards stack on top of the rat loot (1 coin, 1 herb from each rat).
	if p.Inventory["coin"] != 7 {
		t.Errorf("coins = %d, want 7", p.Inventory["coin"])
	}
	if _, ok := p.ArchivedQuests["rat_problem"]; !ok {
		t.Error("quest not archived")
	}

	// Double turn-in.
	resp = apply(e, pid, ActionTurnInQuest, QuestArgs{QuestID: "rat_problem"})
	if resp.OK || resp.Error != "That quest is already turned in." {
		t.Errorf("double turn-in: ok=%v error=%q", resp.OK, resp.Error)
	}

	// Turning in credits the giver's faction.
	value, err := e.db.Reputation(pid, "merchants_guild")
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if value != 10 {
		t.Errorf("merchants_guild reputation = %d, want 10", value)
	}
}

func TestRepeatableQuestReaccept(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	completeRatProblem(t, e, pid)
	if resp := apply(e, pid, ActionTurnInQuest, QuestArgs{QuestID: "rat_problem"}); !resp.OK {
		t.Fatalf("turn in: %s", resp.Error)
	}

	resp := apply(e, pid, ActionAcceptQuest, QuestArgs{QuestID: "rat_problem"})
	if !resp.OK {
		t.Fatalf("re-accept: %s", resp.Error)
	}
	q := resp.State.Player.ActiveQuests["rat_problem"]
	if q == nil {
		t.Fatal("quest not active after re-accept")
	}
	for _, obj := range q.Objectives {
		if obj.Progress != 0 {
			t.Errorf("objective progress = %d, want 0", obj.Progress)
		}
	}
	if _, ok := resp.State.Player.ArchivedQuests["rat_problem"]; ok {
		t.Error("archived instance not cleared on re-accept")
	}
}

func TestTalkQuestGiverOffersQuest(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")
	mustSetLocation(t, e, pid, "tavern")

	resp := apply(e, pid, ActionTalk, TalkArgs{Target: "innkeeper"})
	if !resp.OK {
		t.Fatalf("talk: %s", resp.Error)
	}
	joined := strings.Join(resp.Messages, "\n")
	if !strings.Contains(joined, "Innkeeper says:") {
		t.Errorf("missing speaker line: %v", resp.Messages)
	}
	if !strings.Contains(joined, "The forest has been overrun by rats. Deal with them.") {
		t.Errorf("missing quest pitch: %v", resp.Messages)
	}
	if !strings.Contains(joined, "You may `accept rat_problem`.") {
		t.Errorf("missing accept hint: %v", resp.Messages)
	}
}

func TestTalkQuestGiverReportsProgress(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")
	mustSetLocation(t, e, pid, "tavern")

	if resp := apply(e, pid, ActionAcceptQuest, QuestArgs{QuestID: "rat_problem"}); !resp.OK {
		t.Fatalf("accept: %s", resp.Error)
	}

	resp := apply(e, pid, ActionTalk, TalkArgs{Target: "innkeeper"})
	if !resp.OK {
		t.Fatalf("talk: %s", resp.Error)
	}
	joined := strings.Join(resp.Messages, "\n")
	if !strings.Contains(joined, `"How goes it with A Rat Problem?"`) {
		t.Errorf("missing progress prompt: %v", resp.Messages)
	}
	if !strings.Contains(joined, "kill Rat: 0/2") {
		t.Errorf("missing objective line: %v", resp.Messages)
	}
}

func TestTalkQuestGiverAutoTurnsIn(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")
	mustSetLocation(t, e, pid, "tavern")

	completeRatProblem(t, e, pid)
	mustSetLocation(t, e, pid, "tavern")

	resp := apply(e, pid, ActionTalk, TalkArgs{Target: "innkeeper"})
	if !resp.OK {
		t.Fatalf("talk: %s", resp.Error)
	}
	joined := strings.Join(resp.Messages, "\n")
	if !strings.Contains(joined, `"You have done well. A Rat Problem is complete."`) {
		t.Errorf("missing completion line: %v", resp.Messages)
	}
	if !strings.Contains(joined, "Received: 5x coin") {
		t.Errorf("missing reward line: %v", resp.Messages)
	}
	if _, ok := resp.State.Player.ArchivedQuests["rat_problem"]; !ok {
		t.Error("quest not archived by talk turn-in")
	}
}

func TestTalkQuestGiverUnavailableQuest(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")
	mustSetLocation(t, e, pid, "tavern")

	// With the forest cleared there are no rats and the cleared marker is
	// set, so both availability conditions fail.
	e.entities.Remove("forest", "rat_1")
	e.entities.Remove("forest", "rat_2")
	if err := e.db.SetWorldState("forest_cleared_turn", "12"); err != nil {
		t.Fatalf("set state: %v", err)
	}

	resp := apply(e, pid, ActionTalk, TalkArgs{Target: "innkeeper"})
	if !resp.OK {
		t.Fatalf("talk: %s", resp.Error)
	}
	joined := strings.Join(resp.Messages, "\n")
	if !strings.Contains(joined, "The forest is quiet for now. Come back later.") {
		t.Errorf("missing unavailable text: %v", resp.Messages)
	}
}

func TestTalkNobodyThere(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	resp := apply(e, pid, ActionTalk, TalkArgs{Target: "innkeeper"})
	if resp.OK || resp.Error != "There is no one like that to talk to." {
		t.Errorf("ok=%v error=%q", resp.OK, resp.Error)
	}
}

func TestTalkShopListsWares(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")
	mustSetLocation(t, e, pid, "market")

	resp := apply(e, pid, ActionTalk, TalkArgs{Target: "merchant"})
	if !resp.OK {
		t.Fatalf("talk: %s", resp.Error)
	}
	joined := strings.Join(resp.Messages, "\n")
	if !strings.Contains(joined, `"Take a look at my wares: Healing Herb (5 coins)."`) {
		t.Errorf("missing wares list: %v", resp.Messages)
	}
	if !strings.Contains(joined, "You can `buy <item>`.") {
		t.Errorf("missing buy hint: %v", resp.Messages)
	}
}

func TestBuy(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	// No shop in the square.
	resp := apply(e, pid, ActionBuy, BuyArgs{Item: "healing herb"})
	if resp.OK || resp.Error != "There is no shop here." {
		t.Errorf("no shop: ok=%v error=%q", resp.OK, resp.Error)
	}

	mustSetLocation(t, e, pid, "market")

	resp = apply(e, pid, ActionBuy, BuyArgs{Item: "sword"})
	if resp.OK || resp.Error != "That item is not for sale." {
		t.Errorf("not for sale: ok=%v error=%q", resp.OK, resp.Error)
	}

	resp = apply(e, pid, ActionBuy, BuyArgs{Item: "healing herb"})
	if resp.OK || resp.Error != "You can't afford that." {
		t.Errorf("broke: ok=%v error=%q", resp.OK, resp.Error)
	}

	giveItems(t, e, pid, map[string]int{"coin": 6})
	resp = apply(e, pid, ActionBuy, BuyArgs{Item: "healing herb"})
	if !resp.OK {
		t.Fatalf("buy: %s", resp.Error)
	}
	if got, want := resp.Messages[0], "You buy a Healing Herb for 5 coins."; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	p := resp.State.Player
	if p.Inventory["coin"] != 1 || p.Inventory["healing_herb"] != 1 {
		t.Errorf("inventory = %v", p.Inventory)
	}
}

func TestBuyAppliesReputationDiscount(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")
	mustSetLocation(t, e, pid, "market")

	// Friendly standing with the merchants guild: 50 <= value < 100 means a
	// 0.9 price modifier, so the 5-coin herb costs 5 * 0.9 rounded = 5... use
	// Honored (>= 100) for a visible discount: 5 * 0.8 = 4.
	if err := e.db.LogReputationEvent(pid, "merchants_guild", "quest_completed", 100); err != nil {
		t.Fatalf("log reputation: %v", err)
	}
	giveItems(t, e, pid, map[string]int{"coin": 4})

	resp := apply(e, pid, ActionBuy, BuyArgs{Item: "healing_herb"})
	if !resp.OK {
		t.Fatalf("buy: %s", resp.Error)
	}
	if got, want := resp.Messages[0], "You buy a Healing Herb for 4 coins."; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestBuyRefusedWhenHostile(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")
	mustSetLocation(t, e, pid, "market")

	// Below -50 the merchants guild won't trade at all, regardless of coin.
	if err := e.db.LogReputationEvent(pid, "merchants_guild", "attacked_in_territory", -60); err != nil {
		t.Fatalf("log reputation: %v", err)
	}
	giveItems(t, e, pid, map[string]int{"coin": 10})

	resp := apply(e, pid, ActionBuy, BuyArgs{Item: "healing_herb"})
	if resp.OK || resp.Error != "Merchant refuses to deal with you." {
		t.Errorf("hostile buy: ok=%v error=%q", resp.OK, resp.Error)
	}
	if got := inventoryOf(t, e, pid)["coin"]; got != 10 {
		t.Errorf("coins = %d, want 10 (no sale)", got)
	}
}

func TestUseHealsAndConsumes(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")
	giveItems(t, e, pid, map[string]int{"healing_herb": 2})

	// Take some damage first.
	mustSetLocation(t, e, pid, "forest")
	apply(e, pid, ActionAttack, AttackArgs{Target: "rat_1"})

	resp := apply(e, pid, ActionUse, UseArgs{Item: "healing_herb"})
	if !resp.OK {
		t.Fatalf("use: %s", resp.Error)
	}
	if got, want := resp.Messages[0], "You use Healing Herb. (+3 HP)"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	p := resp.State.Player
	if p.HP != 10 {
		t.Errorf("hp = %d, want 10 (8 + 3 capped at max)", p.HP)
	}
	if p.Inventory["healing_herb"] != 1 {
		t.Errorf("herbs left = %d, want 1", p.Inventory["healing_herb"])
	}
}

func TestUseMissingItem(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	resp := apply(e, pid, ActionUse, UseArgs{Item: "healing_herb"})
	if resp.OK || resp.Error != "You don't have that item." {
		t.Errorf("ok=%v error=%q", resp.OK, resp.Error)
	}

	// Currency is not consumable.
	giveItems(t, e, pid, map[string]int{"coin": 5})
	resp = apply(e, pid, ActionUse, UseArgs{Item: "coin"})
	if resp.OK || resp.Error != "You don't have that item." {
		t.Errorf("coin use: ok=%v error=%q", resp.OK, resp.Error)
	}
}

func TestInventoryListing(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	resp := apply(e, pid, ActionInventory, nil)
	if !resp.OK || resp.Messages[0] != "Your inventory is empty." {
		t.Errorf("empty inventory: %v", resp.Messages)
	}

	giveItems(t, e, pid, map[string]int{"coin": 3, "healing_herb": 1})
	resp = apply(e, pid, ActionInventory, nil)
	want := []string{"You are carrying:", "- Coin x3", "- Healing Herb x1"}
	if len(resp.Messages) != len(want) {
		t.Fatalf("messages = %v, want %v", resp.Messages, want)
	}
	for i := range want {
		if resp.Messages[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, resp.Messages[i], want[i])
		}
	}
}

func TestReputationReport(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	if err := e.db.LogReputationEvent(pid, "town_guard", "attacked_in_territory", -10); err != nil {
		t.Fatalf("log reputation: %v", err)
	}

	resp := apply(e, pid, ActionReputation, nil)
	if !resp.OK {
		t.Fatalf("reputation: %s", resp.Error)
	}
	if resp.Messages[0] != "Your reputation:" {
		t.Errorf("header = %q", resp.Messages[0])
	}
	joined := strings.Join(resp.Messages, "\n")
	if !strings.Contains(joined, "  Town Guard: Unfriendly (-10)") {
		t.Errorf("missing town guard line: %v", resp.Messages)
	}
	if !strings.Contains(joined, "  Merchants Guild: Neutral (0)") {
		t.Errorf("missing merchants line: %v", resp.Messages)
	}
	if resp.State.SceneDirty == nil || *resp.State.SceneDirty {
		t.Error("scene_dirty not false")
	}
	if got := resp.State.Reputation["town_guard"].Value; got != -10 {
		t.Errorf("state reputation = %d, want -10", got)
	}
}

func TestStats(t *testing.T) {
	e := newTestEngine(t)
	pid := createPlayer(t, e, "Arlen")

	resp := apply(e, pid, ActionStats, nil)
	want := []string{"Arlen", "HP: 10/10", "Level: 1", "XP: 0"}
	for i := range want {
		if resp.Messages[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, resp.Messages[i], want[i])
		}
	}
}
