package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Canonical action verbs. Every request carries exactly one of these plus the
// matching argument shape.
const (
	ActionCreatePlayer      = "create_player"
	ActionLook              = "look"
	ActionMove              = "move"
	ActionAttack            = "attack"
	ActionStats             = "stats"
	ActionInventory         = "inventory"
	ActionUse               = "use"
	ActionTalk              = "talk"
	ActionBuy               = "buy"
	ActionAcceptQuest       = "accept_quest"
	ActionTurnInQuest       = "turn_in_quest"
	ActionOfferTrade        = "offer_trade"
	ActionAcceptTrade       = "accept_trade"
	ActionCancelTrade       = "cancel_trade"
	ActionListTrades        = "list_trades"
	ActionPartyInvite       = "party_invite"
	ActionAcceptPartyInvite = "accept_party_invite"
	ActionLeaveParty        = "leave_party"
	ActionPartyStatus       = "party_status"
	ActionReputation        = "reputation"
)

// passiveActions never advance the world turn counter.
var passiveActions = map[string]bool{
	ActionLook:        true,
	ActionStats:       true,
	ActionInventory:   true,
	ActionPartyStatus: true,
	ActionReputation:  true,
	ActionListTrades:  true,
}

// Request is the transport-level action envelope: a verb tag plus its raw
// argument object. Handlers decode Args into their typed shape.
type Request struct {
	Action string          `json:"action"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Argument shapes, one per verb that takes arguments.

type CreatePlayerArgs struct {
	Name string `json:"name"`
}

type MoveArgs struct {
	To string `json:"to"`
}

type AttackArgs struct {
	Target string `json:"target"`
}

type UseArgs struct {
	Item string `json:"item"`
}

type TalkArgs struct {
	Target string `json:"target"`
}

type BuyArgs struct {
	Item string `json:"item"`
}

type QuestArgs struct {
	QuestID string `json:"quest_id"`
}

type OfferTradeArgs struct {
	ToPlayer     string         `json:"to_player"`
	OfferItems   map[string]int `json:"offer_items"`
	RequestItems map[string]int `json:"request_items"`
}

type TradeArgs struct {
	TradeID string `json:"trade_id"`
}

type PartyInviteArgs struct {
	TargetPlayer string `json:"target_player"`
}

type PartyInviteIDArgs struct {
	InviteID string `json:"invite_id"`
}

// DecodeRequest parses an untrusted payload into a Request. The envelope is
// closed: unknown top-level fields are rejected.
func DecodeRequest(payload []byte) (*Request, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var req Request
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	if req.Action == "" {
		return nil, fmt.Errorf("decode request: missing action")
	}
	return &req, nil
}

// decodeArgs unmarshals a request's argument object into the verb's typed
// shape, rejecting unknown fields.
func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// mustArgs marshals a typed argument shape back into a raw message. Used by
// the parser, which builds requests from validated text.
func mustArgs(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
