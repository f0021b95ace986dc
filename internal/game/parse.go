package game

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports unusable player input with a message suitable for
// showing directly to the player.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return e.Message
}

func parseError(format string, args ...any) error {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// ParseCommand converts free text into an action request. Tokenizes on
// whitespace; the first token picks the verb, case-insensitively. Verbs are
// matched in a fixed order and no two aliases overlap.
func ParseCommand(text string) (*Request, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, parseError("Empty command.")
	}
	verb := strings.ToLower(tokens[0])
	rest := tokens[1:]

	switch verb {
	case "look", "l":
		return &Request{Action: ActionLook}, nil

	case "stats", "hp", "me", "status":
		return &Request{Action: ActionStats}, nil

	case "go", "move", "walk":
		if len(rest) == 0 {
			return nil, parseError("Go where?")
		}
		return &Request{Action: ActionMove, Args: mustArgs(MoveArgs{To: strings.Join(rest, " ")})}, nil

	case "inventory", "inv", "i":
		return &Request{Action: ActionInventory}, nil

	case "use", "eat", "drink":
		if len(rest) == 0 {
			return nil, parseError("Use what?")
		}
		item := strings.ToLower(strings.Join(rest, "_"))
		return &Request{Action: ActionUse, Args: mustArgs(UseArgs{Item: item})}, nil

	case "create", "new":
		if len(rest) == 0 {
			return nil, parseError("Create who?")
		}
		return &Request{Action: ActionCreatePlayer, Args: mustArgs(CreatePlayerArgs{Name: strings.Join(rest, " ")})}, nil

	case "attack", "hit", "kill":
		if len(rest) == 0 {
			return nil, parseError("Attack what?")
		}
		return &Request{Action: ActionAttack, Args: mustArgs(AttackArgs{Target: strings.Join(rest, " ")})}, nil

	case "talk":
		if len(rest) == 0 {
			return nil, parseError("Talk to whom?")
		}
		return &Request{Action: ActionTalk, Args: mustArgs(TalkArgs{Target: strings.Join(rest, " ")})}, nil

	case "buy":
		if len(rest) == 0 {
			return nil, parseError("Buy what?")
		}
		return &Request{Action: ActionBuy, Args: mustArgs(BuyArgs{Item: strings.Join(rest, " ")})}, nil

	case "accept":
		if len(rest) == 0 {
			return nil, parseError("Accept what?")
		}
		return &Request{Action: ActionAcceptQuest, Args: mustArgs(QuestArgs{QuestID: rest[0]})}, nil

	case "turn_in":
		if len(rest) == 0 {
			return nil, parseError("Turn in what?")
		}
		return &Request{Action: ActionTurnInQuest, Args: mustArgs(QuestArgs{QuestID: rest[0]})}, nil

	case "offer":
		return parseOffer(rest)

	case "accept_trade":
		if len(rest) == 0 {
			return nil, parseError("Accept which trade?")
		}
		return &Request{Action: ActionAcceptTrade, Args: mustArgs(TradeArgs{TradeID: rest[0]})}, nil

	case "cancel_trade":
		if len(rest) == 0 {
			return nil, parseError("Cancel which trade?")
		}
		return &Request{Action: ActionCancelTrade, Args: mustArgs(TradeArgs{TradeID: rest[0]})}, nil

	case "trades", "list_trades":
		return &Request{Action: ActionListTrades}, nil

	case "party":
		return parseParty(rest)

	case "accept_party_invite":
		if len(rest) == 0 {
			return nil, parseError("Accept which invite?")
		}
		return &Request{Action: ActionAcceptPartyInvite, Args: mustArgs(PartyInviteIDArgs{InviteID: rest[0]})}, nil

	case "reputation", "rep", "factions":
		return &Request{Action: ActionReputation}, nil
	}

	return nil, parseError("Unknown command: %s", strings.TrimSpace(text))
}

// parseOffer handles "offer <player> <item:qty>... for <item:qty>...". The
// "for" keyword splits offered items from requested items; either side may be
// empty, which the trade handler rejects.
func parseOffer(rest []string) (*Request, error) {
	if len(rest) == 0 {
		return nil, parseError("Offer a trade to whom?")
	}
	toPlayer := rest[0]

	offerItems := make(map[string]int)
	requestItems := make(map[string]int)
	target := offerItems
	for _, token := range rest[1:] {
		if strings.ToLower(token) == "for" {
			target = requestItems
			continue
		}
		itemID, qty, err := parseItemQty(token)
		if err != nil {
			return nil, err
		}
		target[itemID] += qty
	}

	return &Request{Action: ActionOfferTrade, Args: mustArgs(OfferTradeArgs{
		ToPlayer:     toPlayer,
		OfferItems:   offerItems,
		RequestItems: requestItems,
	})}, nil
}

// parseItemQty splits "coin:3" into ("coin", 3). A bare item name means
// quantity one.
func parseItemQty(token string) (string, int, error) {
	itemID, qtyText, found := strings.Cut(token, ":")
	if itemID == "" {
		return "", 0, parseError("Invalid trade item: %s", token)
	}
	if !found {
		return itemID, 1, nil
	}
	qty, err := strconv.Atoi(qtyText)
	if err != nil || qty <= 0 {
		return "", 0, parseError("Invalid quantity in: %s", token)
	}
	return itemID, qty, nil
}

// parseParty handles the "party" subcommands: invite, leave, and status.
func parseParty(rest []string) (*Request, error) {
	if len(rest) == 0 {
		return &Request{Action: ActionPartyStatus}, nil
	}
	switch strings.ToLower(rest[0]) {
	case "invite":
		if len(rest) < 2 {
			return nil, parseError("Invite whom?")
		}
		return &Request{Action: ActionPartyInvite, Args: mustArgs(PartyInviteArgs{TargetPlayer: strings.Join(rest[1:], " ")})}, nil
	case "leave":
		return &Request{Action: ActionLeaveParty}, nil
	case "status":
		return &Request{Action: ActionPartyStatus}, nil
	}
	return nil, parseError("Unknown party command: %s", rest[0])
}
