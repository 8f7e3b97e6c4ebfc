package action

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Kind is the closed set of action types. Actions are data, not code; the
// executor dispatches on Kind with an exhaustive switch, and an unknown kind
// is rejected at validation time rather than silently skipped.
type Kind string

const (
	KindSetState      Kind = "set_state"      // absolute state write
	KindAdjustState   Kind = "adjust_state"   // relative increment/decrement with clamping
	KindEmitEvent     Kind = "emit_event"     // create and propagate a world event
	KindSpawnNode     Kind = "spawn_node"     // instantiate a runtime node
	KindRemoveNode    Kind = "remove_node"    // retire a node
	KindUnlockEvent   Kind = "unlock_event"   // flip a dependent event from locked to available
	KindGrantReward   Kind = "grant_reward"   // items/xp against the reward collaborator
	KindNarrativeHint Kind = "narrative_hint" // set a narrative hint for the caller
)

// Scope names the propagation reach of an emitted event.
type Scope string

const (
	ScopeLocal  Scope = "local"  // origin node only
	ScopeArea   Scope = "area"   // current area subgraph
	ScopeGlobal Scope = "global" // may cross area boundaries
)

// Valid reports whether s is a known propagation scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeLocal, ScopeArea, ScopeGlobal:
		return true
	}
	return false
}

// Action is one declarative operation against the world graph.
type Action struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Node and Key address state for set_state/adjust_state, the target node
	// for remove_node, and the recipient for grant_reward/narrative_hint.
	Node string `json:"node,omitempty" yaml:"node,omitempty"`
	Key  string `json:"key,omitempty" yaml:"key,omitempty"`

	// Value is the operand for set_state.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Delta is the signed operand for adjust_state.
	Delta float64 `json:"delta,omitempty" yaml:"delta,omitempty"`

	// Event and Scope describe emit_event/unlock_event.
	Event string `json:"event,omitempty" yaml:"event,omitempty"`
	Scope Scope  `json:"scope,omitempty" yaml:"scope,omitempty"`

	// Spawn parameters.
	NodeType   string         `json:"node_type,omitempty" yaml:"node_type,omitempty"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
	State      map[string]any `json:"state,omitempty" yaml:"state,omitempty"`
	At         string         `json:"at,omitempty" yaml:"at,omitempty"` // hosting location

	// Reward parameters.
	Items      []string `json:"items,omitempty" yaml:"items,omitempty"`
	Experience int      `json:"experience,omitempty" yaml:"experience,omitempty"`

	// Hint is a narrative hint template for narrative_hint.
	Hint string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Validate checks the action's kind and operands. The switch is exhaustive
// over Kind so new kinds must be handled here before content using them loads.
func (a *Action) Validate() error {
	el := errors.NewErrorList()

	switch a.Kind {
	case KindSetState:
		if a.Node == "" || a.Key == "" {
			el.Add(fmt.Errorf("%s: node and key are required", a.Kind))
		}
		if a.Value == nil {
			el.Add(fmt.Errorf("%s: value is required", a.Kind))
		}
	case KindAdjustState:
		if a.Node == "" || a.Key == "" {
			el.Add(fmt.Errorf("%s: node and key are required", a.Kind))
		}
		if a.Delta == 0 {
			el.Add(fmt.Errorf("%s: delta must be non-zero", a.Kind))
		}
	case KindEmitEvent:
		if a.Event == "" {
			el.Add(fmt.Errorf("%s: event is required", a.Kind))
		}
		if a.Scope != "" && !a.Scope.Valid() {
			el.Add(fmt.Errorf("%s: invalid scope %q", a.Kind, a.Scope))
		}
	case KindSpawnNode:
		if a.Node == "" {
			el.Add(fmt.Errorf("%s: node id is required", a.Kind))
		}
		if a.NodeType == "" {
			el.Add(fmt.Errorf("%s: node_type is required", a.Kind))
		}
	case KindRemoveNode:
		if a.Node == "" {
			el.Add(fmt.Errorf("%s: node is required", a.Kind))
		}
	case KindUnlockEvent:
		if a.Event == "" {
			el.Add(fmt.Errorf("%s: event is required", a.Kind))
		}
	case KindGrantReward:
		if a.Node == "" {
			el.Add(fmt.Errorf("%s: recipient node is required", a.Kind))
		}
		if len(a.Items) == 0 && a.Experience == 0 {
			el.Add(fmt.Errorf("%s: at least one of items or experience is required", a.Kind))
		}
	case KindNarrativeHint:
		if a.Hint == "" {
			el.Add(fmt.Errorf("%s: hint is required", a.Kind))
		}
	case "":
		el.Add(fmt.Errorf("action kind is required"))
	default:
		el.Add(fmt.Errorf("unknown action kind %q", a.Kind))
	}

	return el.Err()
}

// ValidateAll validates an ordered action list.
func ValidateAll(actions []Action) error {
	el := errors.NewErrorList()
	for i, a := range actions {
		if err := a.Validate(); err != nil {
			el.Add(fmt.Errorf("action %d: %w", i, err))
		}
	}
	return el.Err()
}
