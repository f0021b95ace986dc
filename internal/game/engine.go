// Package game implements the action-dispatch core: the command parser, the
// request/response envelope, the per-verb handlers, and the state snapshot
// builder. The transport hands every inbound action to Engine.Apply and
// returns whatever envelope comes back.
package game

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hollowpine/greybarrow/internal/config"
	"github.com/hollowpine/greybarrow/internal/database"
	"github.com/hollowpine/greybarrow/internal/entity"
	"github.com/hollowpine/greybarrow/internal/faction"
	"github.com/hollowpine/greybarrow/internal/item"
	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
	"github.com/hollowpine/greybarrow/internal/quest"
	"github.com/hollowpine/greybarrow/internal/rules"
	"github.com/hollowpine/greybarrow/internal/world"
)

// Engine wires the handlers to the world: static catalogs, the live entity
// registry, the persistence gateway, and the world evolution engine.
type Engine struct {
	cfg      *config.ServerConfig
	db       *database.Database
	world    *world.Catalog
	items    *item.Catalog
	factions *faction.Catalog
	quests   *quest.Registry
	entities *entity.Registry
	rules    *rules.Engine

	// now and newID are replaceable in tests.
	now   func() time.Time
	newID func() string
}

// NewEngine assembles the dispatch core.
func NewEngine(
	cfg *config.ServerConfig,
	db *database.Database,
	worldCatalog *world.Catalog,
	items *item.Catalog,
	factions *faction.Catalog,
	quests *quest.Registry,
	entities *entity.Registry,
	ruleEngine *rules.Engine,
) *Engine {
	return &Engine{
		cfg:      cfg,
		db:       db,
		world:    worldCatalog,
		items:    items,
		factions: factions,
		quests:   quests,
		entities: entities,
		rules:    ruleEngine,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// MonstersNamedAt implements quest.WorldQuery over the entity registry.
func (e *Engine) MonstersNamedAt(locationID, name string) int {
	return e.entities.MonstersNamedAt(locationID, name)
}

// WorldState implements quest.WorldQuery over the persistence gateway.
func (e *Engine) WorldState(key string) (string, error) {
	return e.db.WorldState(key)
}

// Apply validates and dispatches one raw action payload for the given player.
func (e *Engine) Apply(playerID string, payload []byte) *Response {
	req, err := DecodeRequest(payload)
	if err != nil {
		return fail("Invalid action payload.")
	}
	return e.ApplyRequest(playerID, req)
}

// ApplyCommand parses free text from a player and dispatches the result.
func (e *Engine) ApplyCommand(playerID, text string) *Response {
	req, err := ParseCommand(text)
	if err != nil {
		return fail(err.Error())
	}
	return e.ApplyRequest(playerID, req)
}

// ApplyRequest resolves the acting player, routes to the verb's handler,
// advances the world turn on non-passive success, and records the action.
func (e *Engine) ApplyRequest(playerID string, req *Request) *Response {
	// create_player is the only action without a resolved player.
	if req.Action == ActionCreatePlayer {
		var args CreatePlayerArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		resp := e.handleCreatePlayer(args)
		if resp.OK && resp.State != nil && resp.State.Player != nil {
			pid := resp.State.Player.ID
			e.afterAction(pid, req, resp)
		}
		return resp
	}

	if playerID == "" {
		return fail("Missing player_id (x-player-id header).")
	}
	p, err := e.db.GetPlayer(playerID)
	if err != nil {
		logger.Errorf("Failed to load player %s: %v", playerID, err)
		return fail("Internal error.")
	}
	if p == nil {
		return fail("Unknown player_id.")
	}

	resp := e.dispatch(p, req)
	e.afterAction(p.ID, req, resp)
	return resp
}

// dispatch is the exhaustive verb switch. A schema-valid but unrecognized
// verb falls through to the unhandled-action error.
func (e *Engine) dispatch(p *player.Player, req *Request) *Response {
	switch req.Action {
	case ActionLook:
		return e.handleLook(p)
	case ActionMove:
		var args MoveArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleMove(p, args.To)
	case ActionAttack:
		var args AttackArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleAttack(p, args.Target)
	case ActionStats:
		return e.handleStats(p)
	case ActionInventory:
		return e.handleInventory(p)
	case ActionUse:
		var args UseArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleUse(p, args.Item)
	case ActionTalk:
		var args TalkArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleTalk(p, args.Target)
	case ActionBuy:
		var args BuyArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleBuy(p, args.Item)
	case ActionAcceptQuest:
		var args QuestArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleAcceptQuest(p, args.QuestID)
	case ActionTurnInQuest:
		var args QuestArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleTurnInQuest(p, args.QuestID)
	case ActionOfferTrade:
		var args OfferTradeArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleOfferTrade(p, args)
	case ActionAcceptTrade:
		var args TradeArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleAcceptTrade(p, args.TradeID)
	case ActionCancelTrade:
		var args TradeArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleCancelTrade(p, args.TradeID)
	case ActionListTrades:
		return e.handleListTrades(p)
	case ActionPartyInvite:
		var args PartyInviteArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handlePartyInvite(p, args.TargetPlayer)
	case ActionAcceptPartyInvite:
		var args PartyInviteIDArgs
		if err := decodeArgs(req.Args, &args); err != nil {
			return fail("Invalid action payload.")
		}
		return e.handleAcceptPartyInvite(p, args.InviteID)
	case ActionLeaveParty:
		return e.handleLeaveParty(p)
	case ActionPartyStatus:
		return e.handlePartyStatus(p)
	case ActionReputation:
		return e.handleReputation(p)
	}
	return fail("Unhandled action.")
}

// afterAction advances the turn counter for non-passive successes, runs the
// world rules on interval turns, and records the action. Logging failures are
// surfaced in the log only; they never affect the response.
func (e *Engine) afterAction(playerID string, req *Request, resp *Response) {
	if resp.OK && !passiveActions[req.Action] {
		turn, err := e.db.AdvanceWorldTurn()
		if err != nil {
			logger.Errorf("Failed to advance world turn: %v", err)
		} else if e.cfg.World.RuleInterval > 0 && turn%e.cfg.World.RuleInterval == 0 {
			e.runWorldRules()
		}
	}

	var args any
	if len(req.Args) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(req.Args, &decoded); err == nil {
			args = decoded
		}
	}
	if err := e.db.LogAction(playerID, req.Action, args, resp); err != nil {
		logger.Errorf("Failed to record action %s for %s: %v", req.Action, playerID, err)
	}
}

// runWorldRules evaluates the evolution rules, converting any failure or
// panic into a world_rule_error event so the triggering action still
// succeeds.
func (e *Engine) runWorldRules() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("World rule evaluation panicked: %v", r)
			e.logRuleError("rule evaluation panicked")
		}
	}()

	if _, err := e.rules.Evaluate(); err != nil {
		logger.Errorf("World rule evaluation failed: %v", err)
		e.logRuleError(err.Error())
	}
}

func (e *Engine) logRuleError(detail string) {
	if err := e.db.LogWorldEvent("world_rule_error", "", map[string]any{"error": detail}); err != nil {
		logger.Errorf("Failed to record world rule error: %v", err)
	}
}

// nowMillis is the engine's clock in unix milliseconds.
func (e *Engine) nowMillis() int64 {
	return e.now().UnixMilli()
}
