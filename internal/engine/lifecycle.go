package engine

import (
	"github.com/pixil98/go-story/internal/content"
	"github.com/pixil98/go-story/internal/storage"
)

// Status is an event instance's lifecycle state.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusAvailable Status = "available"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCooldown  Status = "cooldown"
)

// legalTransitions is the six-state lifecycle machine. The cooldown loop only
// applies to repeatable events; non-repeatable events treat completed/failed
// as terminal because no code path moves them to cooldown.
var legalTransitions = map[Status][]Status{
	StatusLocked:    {StatusAvailable},
	StatusAvailable: {StatusActive},
	StatusActive:    {StatusCompleted, StatusFailed},
	StatusCompleted: {StatusCooldown},
	StatusFailed:    {StatusCooldown},
	StatusCooldown:  {StatusAvailable},
}

// CanTransition reports whether from -> to is a single legal edge of the
// lifecycle machine.
func CanTransition(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusLocked, StatusAvailable, StatusActive,
		StatusCompleted, StatusFailed, StatusCooldown:
		return true
	}
	return false
}

// EventInstance is the runtime state of one event definition within a
// session: the union of the definition's rule set and its history so far.
type EventInstance struct {
	Id     storage.Identifier
	Def    *content.Event
	Status Status

	// CompletedRound is the round the event last completed (or failed), used
	// for cooldown arithmetic and time_elapsed conditions.
	CompletedRound int
	completedOnce  bool
}

// initialStatus computes where a definition starts its lifecycle: locked when
// it has trigger conditions to satisfy (or is explicitly authored locked),
// otherwise immediately available.
func initialStatus(def *content.Event) Status {
	if def.Locked || def.Trigger != nil {
		return StatusLocked
	}
	return StatusAvailable
}
