// Package quest defines quest templates, per-player quest instances, and the
// registry that indexes templates by the NPC who gives them.
package quest

import (
	"fmt"
	"strings"
)

// ObjectiveKind defines the type of objective.
type ObjectiveKind string

const (
	ObjectiveKill    ObjectiveKind = "kill"    // Defeat named entities
	ObjectiveCollect ObjectiveKind = "collect" // Gather items
)

// Status represents the lifecycle state of a quest instance. Transitions are
// one-directional: offered -> accepted -> completed -> turned_in. A turned-in
// repeatable quest may be re-accepted as a fresh instance.
type Status string

const (
	StatusOffered   Status = "offered"
	StatusAccepted  Status = "accepted"
	StatusCompleted Status = "completed"
	StatusTurnedIn  Status = "turned_in"
)

// Objective is a single goal within a quest template.
type Objective struct {
	Kind     ObjectiveKind `yaml:"kind" json:"kind"`
	Target   string        `yaml:"target" json:"target"`
	Required int           `yaml:"required" json:"required"`
}

// ConditionKind discriminates availability condition variants.
type ConditionKind string

const (
	// CondEntityPresent passes while matching monsters remain at a location.
	CondEntityPresent ConditionKind = "entity_present"

	// CondWorldStateUnset passes while a world-state key is empty.
	CondWorldStateUnset ConditionKind = "world_state_unset"
)

// Condition is one availability predicate, expressed as data so each rule can
// be inspected and tested rather than hidden in a closure.
type Condition struct {
	Kind     ConditionKind `yaml:"kind"`
	Location string        `yaml:"location"`
	Target   string        `yaml:"target"`
	Key      string        `yaml:"key"`
}

// Template is a static, read-only quest definition.
type Template struct {
	ID          string         `yaml:"-"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Objectives  []Objective    `yaml:"objectives"`
	Rewards     map[string]int `yaml:"rewards"`
	GiverNPC    string         `yaml:"giver_npc"`
	Repeatable  bool           `yaml:"repeatable"`

	// Availability gates offering the quest on world conditions. Empty
	// means always available; otherwise the quest is offered while ANY
	// condition passes.
	Availability []Condition `yaml:"availability"`

	// UnavailableText explains a closed quest to the player.
	UnavailableText string `yaml:"unavailable_text"`
}

// ObjectiveProgress is an objective plus the player's current count.
type ObjectiveProgress struct {
	Kind     ObjectiveKind `json:"kind"`
	Target   string        `json:"target"`
	Required int           `json:"required"`
	Progress int           `json:"progress"`
}

// Satisfied reports whether the objective has been met.
func (o *ObjectiveProgress) Satisfied() bool {
	return o.Progress >= o.Required
}

// Instance is a player's copy of a quest, with independent progress.
type Instance struct {
	QuestID     string              `json:"quest_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Objectives  []ObjectiveProgress `json:"objectives"`
	Rewards     map[string]int      `json:"rewards"`
	Status      Status              `json:"status"`
	AcceptedAt  int64               `json:"accepted_at,omitempty"`
	CompletedAt int64               `json:"completed_at,omitempty"`
	TurnedInAt  int64               `json:"turned_in_at,omitempty"`
}

// NewInstance copies a template into a fresh accepted instance.
func NewInstance(t *Template, acceptedAt int64) *Instance {
	objectives := make([]ObjectiveProgress, len(t.Objectives))
	for i, obj := range t.Objectives {
		objectives[i] = ObjectiveProgress{
			Kind:     obj.Kind,
			Target:   obj.Target,
			Required: obj.Required,
		}
	}

	rewards := make(map[string]int, len(t.Rewards))
	for id, qty := range t.Rewards {
		rewards[id] = qty
	}

	return &Instance{
		QuestID:     t.ID,
		Name:        t.Name,
		Description: t.Description,
		Objectives:  objectives,
		Rewards:     rewards,
		Status:      StatusAccepted,
		AcceptedAt:  acceptedAt,
	}
}

// RecordKill increments every kill objective matching the defeated entity's
// name, case-insensitively, capped at the required count. Returns whether any
// objective advanced.
func (q *Instance) RecordKill(entityName string) bool {
	if q.Status != StatusAccepted {
		return false
	}
	needle := strings.ToLower(entityName)
	updated := false
	for i := range q.Objectives {
		obj := &q.Objectives[i]
		if obj.Kind != ObjectiveKill {
			continue
		}
		if strings.ToLower(obj.Target) != needle {
			continue
		}
		if obj.Progress < obj.Required {
			obj.Progress++
			updated = true
		}
	}
	return updated
}

// AllObjectivesSatisfied reports whether every objective is met.
func (q *Instance) AllObjectivesSatisfied() bool {
	for i := range q.Objectives {
		if !q.Objectives[i].Satisfied() {
			return false
		}
	}
	return true
}

// MarkCompleted transitions an accepted instance to completed.
func (q *Instance) MarkCompleted(completedAt int64) {
	if q.Status != StatusAccepted {
		return
	}
	q.Status = StatusCompleted
	q.CompletedAt = completedAt
}

// MarkTurnedIn transitions a completed instance to turned in.
func (q *Instance) MarkTurnedIn(turnedInAt int64) {
	if q.Status != StatusCompleted {
		return
	}
	q.Status = StatusTurnedIn
	q.TurnedInAt = turnedInAt
}

// ProgressText summarizes objective progress for the player,
// e.g. "kill Rat: 1/2".
func (q *Instance) ProgressText() []string {
	lines := make([]string, 0, len(q.Objectives))
	for i := range q.Objectives {
		obj := &q.Objectives[i]
		lines = append(lines, fmt.Sprintf("%s %s: %d/%d", obj.Kind, obj.Target, obj.Progress, obj.Required))
	}
	return lines
}
