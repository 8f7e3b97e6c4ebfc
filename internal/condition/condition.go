package condition

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Kind is the closed set of leaf condition types. Conditions are data, not
// code, so rules can be authored declaratively and validated offline.
type Kind string

const (
	KindStateEquals    Kind = "state_equals"     // node state key == value
	KindStateAbove     Kind = "state_above"      // numeric state key > value
	KindStateBelow     Kind = "state_below"      // numeric state key < value
	KindNodeExists     Kind = "node_exists"      // node id present in graph
	KindRelationExists Kind = "relation_exists"  // edge (node, relation, target) present
	KindEventStatus    Kind = "event_status"     // event instance status == status
	KindTimeElapsed    Kind = "time_elapsed"     // >= rounds since event completed
	KindFlagSet        Kind = "flag_set"         // boolean state key is true
	KindCounterAtLeast Kind = "counter_at_least" // numeric state key >= value
	KindEventCompleted Kind = "event_completed"  // referenced event completed at least once
)

// Condition is a single leaf check against world state.
type Condition struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Node and Key address runtime state for the state/flag/counter kinds.
	Node string `json:"node,omitempty" yaml:"node,omitempty"`
	Key  string `json:"key,omitempty" yaml:"key,omitempty"`

	// Value is the comparison operand for the state/counter kinds.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Relation and Target describe an edge for relation_exists.
	Relation string `json:"relation,omitempty" yaml:"relation,omitempty"`
	Target   string `json:"target,omitempty" yaml:"target,omitempty"`

	// Event and Status address event instances.
	Event  string `json:"event,omitempty" yaml:"event,omitempty"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`

	// Rounds is the elapsed-time operand for time_elapsed.
	Rounds int `json:"rounds,omitempty" yaml:"rounds,omitempty"`
}

// Validate checks that the condition's kind is known and its operands are
// present. The switch is exhaustive over Kind: an unknown kind is a content
// authoring error surfaced at load time, never a silent no-op.
func (c *Condition) Validate() error {
	el := errors.NewErrorList()

	switch c.Kind {
	case KindStateEquals:
		el.Add(c.requireNodeKey())
		if c.Value == nil {
			el.Add(fmt.Errorf("%s: value is required", c.Kind))
		}
	case KindStateAbove, KindStateBelow, KindCounterAtLeast:
		el.Add(c.requireNodeKey())
		if _, ok := toFloat64(c.Value); !ok {
			el.Add(fmt.Errorf("%s: numeric value is required", c.Kind))
		}
	case KindNodeExists:
		if c.Node == "" {
			el.Add(fmt.Errorf("%s: node is required", c.Kind))
		}
	case KindRelationExists:
		if c.Node == "" || c.Target == "" {
			el.Add(fmt.Errorf("%s: node and target are required", c.Kind))
		}
		if c.Relation == "" {
			el.Add(fmt.Errorf("%s: relation is required", c.Kind))
		}
	case KindEventStatus:
		if c.Event == "" || c.Status == "" {
			el.Add(fmt.Errorf("%s: event and status are required", c.Kind))
		}
	case KindTimeElapsed:
		if c.Event == "" {
			el.Add(fmt.Errorf("%s: event is required", c.Kind))
		}
		if c.Rounds <= 0 {
			el.Add(fmt.Errorf("%s: rounds must be positive", c.Kind))
		}
	case KindFlagSet:
		el.Add(c.requireNodeKey())
	case KindEventCompleted:
		if c.Event == "" {
			el.Add(fmt.Errorf("%s: event is required", c.Kind))
		}
	case "":
		el.Add(fmt.Errorf("condition kind is required"))
	default:
		el.Add(fmt.Errorf("unknown condition kind %q", c.Kind))
	}

	return el.Err()
}

func (c *Condition) requireNodeKey() error {
	el := errors.NewErrorList()
	if c.Node == "" {
		el.Add(fmt.Errorf("%s: node is required", c.Kind))
	}
	if c.Key == "" {
		el.Add(fmt.Errorf("%s: key is required", c.Kind))
	}
	return el.Err()
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
