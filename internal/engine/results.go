package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-story/internal/action"
	"github.com/pixil98/go-story/internal/storage"
)

// WorldEvent is one occurrence of an event definition, created by an
// emit_event action and handed to propagation.
type WorldEvent struct {
	Id        string             `json:"id"`
	DefId     storage.Identifier `json:"def_id"`
	Origin    storage.Identifier `json:"origin"`
	Scope     action.Scope       `json:"scope"`
	Round     int                `json:"round"`
	EmittedAt time.Time          `json:"emitted_at"`
}

// NewWorldEvent builds an occurrence for an externally sourced event, such
// as one injected over the command channel.
func NewWorldEvent(defId, origin storage.Identifier, scope action.Scope, round int) WorldEvent {
	return WorldEvent{
		Id:        uuid.NewString(),
		DefId:     defId,
		Origin:    origin,
		Scope:     scope,
		Round:     round,
		EmittedAt: time.Now(),
	}
}

func newWorldEvent(em action.EmittedEvent, round int) WorldEvent {
	return WorldEvent{
		Id:        uuid.NewString(),
		DefId:     storage.Identifier(em.Event),
		Origin:    em.Origin,
		Scope:     em.Scope,
		Round:     round,
		EmittedAt: time.Now(),
	}
}

// TickContext names what triggered an evaluation pass.
type TickContext struct {
	// Round is the game time for this tick. Zero means "advance by one".
	Round int
	// Scope optionally confines evaluation to behaviors and events under the
	// given node.
	Scope storage.Identifier
}

// Transition records one event status change.
type Transition struct {
	Event string `json:"event"`
	From  Status `json:"from"`
	To    Status `json:"to"`
}

// TickResult reports everything an evaluation pass did. In-session errors are
// absorbed into ActionFailures rather than surfaced as Go errors: a single
// malformed rule must not abort a game turn.
type TickResult struct {
	FiredBehaviors   []string         `json:"fired_behaviors,omitempty"`
	EventTransitions []Transition     `json:"event_transitions,omitempty"`
	CascadedEvents   []string         `json:"cascaded_events,omitempty"`
	DeferredEvents   []string         `json:"deferred_events,omitempty"`
	Hints            []string         `json:"hints,omitempty"`
	ActionFailures   []action.Failure `json:"action_failures,omitempty"`
}

func (r *TickResult) merge(ar *action.Result) {
	r.Hints = append(r.Hints, ar.Hints...)
	r.ActionFailures = append(r.ActionFailures, ar.Failures...)
}
