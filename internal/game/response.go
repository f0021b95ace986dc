package game

import (
	"github.com/hollowpine/greybarrow/internal/player"
)

// Response is the uniform envelope every action returns.
type Response struct {
	OK       bool     `json:"ok"`
	Messages []string `json:"messages,omitempty"`
	State    *State   `json:"state,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// fail builds a failure envelope with a human-readable error.
func fail(message string) *Response {
	return &Response{OK: false, Error: message}
}

// State is the canonical snapshot of the world from the acting player's
// perspective.
type State struct {
	Player         *player.Player `json:"player"`
	Location       *LocationView  `json:"location,omitempty"`
	Entities       []EntityView   `json:"entities,omitempty"`
	AdjacentScenes []SceneView    `json:"adjacent_scenes,omitempty"`

	PendingTradeOffers     []TradeOfferView     `json:"pending_trade_offers,omitempty"`
	PendingTradeOffersSent []SentTradeOfferView `json:"pending_trade_offers_sent,omitempty"`

	Party        *PartyView        `json:"party,omitempty"`
	PartyInvites []PartyInviteView `json:"party_invites,omitempty"`

	Reputation map[string]ReputationView `json:"reputation,omitempty"`
	TradeID    string                    `json:"trade_id,omitempty"`
	SceneDirty *bool                     `json:"scene_dirty,omitempty"`
}

// LocationView is the serialized form of a location.
type LocationView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Exits       []ExitView `json:"exits"`
}

type ExitView struct {
	To    string `json:"to"`
	Label string `json:"label"`
}

// EntityView serializes an entity per its type: monsters carry hp, NPCs carry
// role plus wares or quests, players carry hp and level.
type EntityView struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	HP    *int   `json:"hp,omitempty"`
	Level int    `json:"level,omitempty"`

	Role      string         `json:"role,omitempty"`
	Inventory map[string]int `json:"inventory,omitempty"`
	Quests    []string       `json:"quests,omitempty"`
}

// SceneView is a prefetch block for a location adjacent to the player's.
type SceneView struct {
	Location LocationView `json:"location"`
	Entities []EntityView `json:"entities"`
}

// TradeOfferView annotates an incoming trade with whether the player can
// currently accept it.
type TradeOfferView struct {
	TradeID        string         `json:"trade_id"`
	FromPlayerName string         `json:"from_player_name"`
	FromPlayerID   string         `json:"from_player_id"`
	OfferedItems   map[string]int `json:"offered_items"`
	RequestedItems map[string]int `json:"requested_items"`
	CanAccept      bool           `json:"can_accept"`
	CreatedAt      int64          `json:"created_at"`
}

// SentTradeOfferView annotates an outgoing trade with whether the recipient
// could currently accept it.
type SentTradeOfferView struct {
	TradeID        string         `json:"trade_id"`
	ToPlayerName   string         `json:"to_player_name"`
	ToPlayerID     string         `json:"to_player_id"`
	OfferedItems   map[string]int `json:"offered_items"`
	RequestedItems map[string]int `json:"requested_items"`
	CanBeAccepted  bool           `json:"can_be_accepted"`
	CreatedAt      int64          `json:"created_at"`
}

// PartyView is the player's party with member details.
type PartyView struct {
	PartyID  string            `json:"party_id"`
	Name     string            `json:"name"`
	LeaderID string            `json:"leader_id"`
	Members  []PartyMemberView `json:"members"`
}

type PartyMemberView struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	IsLeader bool   `json:"is_leader"`
}

// PartyInviteView is a pending invitation with sender details.
type PartyInviteView struct {
	InviteID       string `json:"invite_id"`
	PartyID        string `json:"party_id"`
	FromPlayerID   string `json:"from_player_id"`
	FromPlayerName string `json:"from_player_name"`
	CreatedAt      int64  `json:"created_at"`
}

// ReputationView is the player's standing with one faction.
type ReputationView struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Tier  string `json:"tier"`
}
