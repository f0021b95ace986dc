package game

import (
	"fmt"

	"github.com/hollowpine/greybarrow/internal/logger"
	"github.com/hollowpine/greybarrow/internal/player"
	"github.com/hollowpine/greybarrow/internal/rules"
)

// handleCreatePlayer creates a new level-1 player at the starting location.
// Names are unique case-insensitively.
func (e *Engine) handleCreatePlayer(args CreatePlayerArgs) *Response {
	if args.Name == "" {
		return fail("Create who?")
	}

	existing, err := e.db.GetPlayerByName(args.Name)
	if err != nil {
		logger.Errorf("Failed to check player name %q: %v", args.Name, err)
		return fail("Internal error.")
	}
	if existing != nil {
		return fail(fmt.Sprintf("The name %q is already taken.", args.Name))
	}

	p := player.New(e.newID(), args.Name, e.cfg.World.StartingLocation)
	if err := e.db.UpsertPlayer(p); err != nil {
		if e.db.IsDuplicateName(err) {
			return fail(fmt.Sprintf("The name %q is already taken.", args.Name))
		}
		logger.Errorf("Failed to create player %q: %v", args.Name, err)
		return fail("Internal error.")
	}

	loc, err := e.world.Location(p.Location)
	if err != nil {
		logger.Errorf("Starting location %s missing: %v", p.Location, err)
		return fail("Internal error.")
	}

	logger.Infof("Created player %s (%s)", p.Name, p.ID)
	return &Response{
		OK: true,
		Messages: []string{
			fmt.Sprintf("Welcome, %s.", p.Name),
			fmt.Sprintf("You arrive at %s.", loc.Name),
		},
		State: e.buildState(p),
	}
}

// handleMove matches the destination against the current location's exits by
// label or target ID, relocates the player, and reports the new scene.
func (e *Engine) handleMove(p *player.Player, to string) *Response {
	from, err := e.world.Location(p.Location)
	if err != nil {
		logger.Errorf("Player %s is at unknown location %s: %v", p.ID, p.Location, err)
		return fail("Internal error.")
	}

	exit, ok := from.FindExit(to)
	if !ok {
		return fail(fmt.Sprintf("No exit matching %q. Exits: %s", to, from.ExitLabels()))
	}

	p.Location = exit.To
	if err := e.db.UpsertPlayer(p); err != nil {
		logger.Errorf("Failed to save player %s: %v", p.ID, err)
		return fail("Internal error.")
	}

	dest, err := e.world.Location(p.Location)
	if err != nil {
		return fail("Internal error.")
	}

	// Entering a location feeds the monster-survival counter that the
	// infestation rule reads.
	if err := e.rules.TrackMonsterSurvival(p.Location); err != nil {
		logger.Errorf("Failed to track monster survival at %s: %v", p.Location, err)
	}

	return &Response{
		OK: true,
		Messages: []string{
			fmt.Sprintf("You travel to %s.", dest.Name),
			dest.Description,
		},
		State: e.buildState(p),
	}
}

// handleLook describes the current scene without changing anything.
func (e *Engine) handleLook(p *player.Player) *Response {
	loc, err := e.world.Location(p.Location)
	if err != nil {
		logger.Errorf("Player %s is at unknown location %s: %v", p.ID, p.Location, err)
		return fail("Internal error.")
	}

	messages := []string{
		fmt.Sprintf("You are at %s.", loc.Name),
		loc.Description,
	}
	if flavor := e.locationFlavor(loc.ID); flavor != "" {
		messages = append(messages, flavor)
	}
	messages = append(messages, fmt.Sprintf("Exits: %s", loc.ExitLabels()))

	return &Response{
		OK:       true,
		Messages: messages,
		State:    e.buildState(p),
	}
}

// locationFlavor returns a world-state-driven description line, if any.
func (e *Engine) locationFlavor(locationID string) string {
	if locationID != "forest" {
		return ""
	}
	infested, err := e.db.WorldState(rules.KeyForestInfested)
	if err != nil {
		logger.Errorf("Failed to read forest state: %v", err)
		return ""
	}
	if infested == "true" {
		return "The undergrowth seethes with rats. An infestation has taken hold."
	}
	return ""
}
