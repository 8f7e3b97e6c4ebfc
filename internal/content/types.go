package content

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/action"
	"github.com/pixil98/go-story/internal/condition"
	"github.com/pixil98/go-story/internal/storage"
)

// Chapter is a top-level narrative division of the world.
type Chapter struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

func (c *Chapter) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Area is a region of the world belonging to a chapter.
type Area struct {
	Name        string                            `json:"name" yaml:"name"`
	Chapter     storage.SmartIdentifier[*Chapter] `json:"chapter" yaml:"chapter"`
	Description string                            `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  map[string]any                    `json:"properties,omitempty" yaml:"properties,omitempty"`
}

func (a *Area) Validate() error {
	el := errors.NewErrorList()

	if a.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	el.Add(a.Chapter.Validate())

	return el.Err()
}

// Adjacency is a travel connection from one location to another. Weight, when
// set, scales event propagation across the connection.
type Adjacency struct {
	To     string  `json:"to" yaml:"to"`
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Location is a visitable place inside an area.
type Location struct {
	Name        string                         `json:"name" yaml:"name"`
	Area        storage.SmartIdentifier[*Area] `json:"area" yaml:"area"`
	Description string                         `json:"description,omitempty" yaml:"description,omitempty"`
	Adjacent    []Adjacency                    `json:"adjacent,omitempty" yaml:"adjacent,omitempty"`
	Properties  map[string]any                 `json:"properties,omitempty" yaml:"properties,omitempty"`
}

func (l *Location) Validate() error {
	el := errors.NewErrorList()

	if l.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	el.Add(l.Area.Validate())

	for i, adj := range l.Adjacent {
		if adj.To == "" {
			el.Add(fmt.Errorf("adjacent %d: to is required", i))
		}
		if adj.Weight < 0 || adj.Weight > 1 {
			el.Add(fmt.Errorf("adjacent %d: weight must be in (0,1]", i))
		}
	}

	return el.Err()
}

// Relation is an authored social/narrative tie from a character to another
// node.
type Relation struct {
	To     string  `json:"to" yaml:"to"`
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Character is an npc definition.
type Character struct {
	Name       string         `json:"name" yaml:"name"`
	Home       string         `json:"home" yaml:"home"` // hosting location id
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	State      map[string]any `json:"state,omitempty" yaml:"state,omitempty"`
	Relations  []Relation     `json:"relations,omitempty" yaml:"relations,omitempty"`
}

func (c *Character) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if c.Home == "" {
		el.Add(fmt.Errorf("home location is required"))
	}
	for i, r := range c.Relations {
		if r.To == "" {
			el.Add(fmt.Errorf("relation %d: to is required", i))
		}
	}

	return el.Err()
}

// Item is a world object definition.
type Item struct {
	Name       string         `json:"name" yaml:"name"`
	Location   string         `json:"location,omitempty" yaml:"location,omitempty"` // initial hosting location
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

func (i *Item) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Event is a story event definition: its trigger and completion rule sets,
// lifecycle tuning and on-complete/on-fail side effects.
type Event struct {
	Name           string           `json:"name" yaml:"name"`
	Area           string           `json:"area" yaml:"area"`
	Origin         string           `json:"origin,omitempty" yaml:"origin,omitempty"` // defaults to the area node
	Scope          action.Scope     `json:"scope,omitempty" yaml:"scope,omitempty"`
	Trigger        *condition.Group `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Completion     *condition.Group `json:"completion,omitempty" yaml:"completion,omitempty"`
	Failure        *condition.Group `json:"failure,omitempty" yaml:"failure,omitempty"`
	OnComplete     []action.Action  `json:"on_complete,omitempty" yaml:"on_complete,omitempty"`
	OnFail         []action.Action  `json:"on_fail,omitempty" yaml:"on_fail,omitempty"`
	CooldownRounds int              `json:"cooldown_rounds,omitempty" yaml:"cooldown_rounds,omitempty"`
	Repeatable     bool             `json:"repeatable,omitempty" yaml:"repeatable,omitempty"`
	Gates          []string         `json:"gates,omitempty" yaml:"gates,omitempty"` // events this one unlocks
	Locked         bool             `json:"locked,omitempty" yaml:"locked,omitempty"`
}

func (e *Event) Validate() error {
	el := errors.NewErrorList()

	if e.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if e.Area == "" {
		el.Add(fmt.Errorf("area is required"))
	}
	if e.Scope != "" && !e.Scope.Valid() {
		el.Add(fmt.Errorf("invalid scope %q", e.Scope))
	}
	if e.Repeatable && e.CooldownRounds <= 0 {
		el.Add(fmt.Errorf("repeatable events require positive cooldown_rounds"))
	}
	if e.Trigger != nil {
		if err := e.Trigger.Validate(); err != nil {
			el.Add(fmt.Errorf("trigger: %w", err))
		}
	}
	if e.Completion != nil {
		if err := e.Completion.Validate(); err != nil {
			el.Add(fmt.Errorf("completion: %w", err))
		}
	}
	if e.Failure != nil {
		if err := e.Failure.Validate(); err != nil {
			el.Add(fmt.Errorf("failure: %w", err))
		}
	}
	if err := action.ValidateAll(e.OnComplete); err != nil {
		el.Add(fmt.Errorf("on_complete: %w", err))
	}
	if err := action.ValidateAll(e.OnFail); err != nil {
		el.Add(fmt.Errorf("on_fail: %w", err))
	}

	return el.Err()
}

// Trigger is the closed set of behavior trigger kinds.
type Trigger string

const (
	TriggerOnTick  Trigger = "on_tick"
	TriggerOnEnter Trigger = "on_enter"
	TriggerOnExit  Trigger = "on_exit"
	TriggerOnEvent Trigger = "on_event"
)

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool {
	switch t {
	case TriggerOnTick, TriggerOnEnter, TriggerOnExit, TriggerOnEvent:
		return true
	}
	return false
}

// Behavior is a declarative rule bound to a node: when its trigger fires and
// its condition group holds, its actions execute in order.
type Behavior struct {
	Node       string           `json:"node" yaml:"node"`
	Trigger    Trigger          `json:"trigger" yaml:"trigger"`
	Conditions *condition.Group `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Actions    []action.Action  `json:"actions" yaml:"actions"`
}

func (b *Behavior) Validate() error {
	el := errors.NewErrorList()

	if b.Node == "" {
		el.Add(fmt.Errorf("node is required"))
	}
	if !b.Trigger.Valid() {
		el.Add(fmt.Errorf("invalid trigger %q", b.Trigger))
	}
	if len(b.Actions) == 0 {
		el.Add(fmt.Errorf("at least one action is required"))
	}
	if b.Conditions != nil {
		if err := b.Conditions.Validate(); err != nil {
			el.Add(fmt.Errorf("conditions: %w", err))
		}
	}
	el.Add(action.ValidateAll(b.Actions))

	return el.Err()
}
