package action

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/narrative"
	"github.com/pixil98/go-story/internal/storage"
)

// RewardSink is the external inventory/experience collaborator invoked by
// grant_reward actions. Implementations must be idempotent per (recipient,
// grant) since the engine's dedup set only prevents the triggering event from
// firing twice, not out-of-band callers.
type RewardSink interface {
	AddItem(recipient, item storage.Identifier, qty int) error
	AddExperience(recipient storage.Identifier, amount int) error
}

// EmittedEvent is a fresh world event produced by an emit_event action. The
// executor returns it for the behavior engine to propagate; the engine owns
// the event lifecycle.
type EmittedEvent struct {
	Event  string
	Origin storage.Identifier
	Scope  Scope
}

// Failure records a single failed action within a batch.
type Failure struct {
	Index int    `json:"index"`
	Kind  Kind   `json:"kind"`
	Error string `json:"error"`
}

// Result describes the net effect of executing one action list.
type Result struct {
	Executed int
	Failures []Failure
	Emitted  []EmittedEvent
	Unlocked []string
	Hints    []string
	Spawned  []storage.Identifier
	Removed  []storage.Identifier
}

// Context carries the per-batch inputs for execution.
type Context struct {
	// Source is the node the firing behavior or event is bound to. Emitted
	// events propagate from it unless the action names another origin.
	Source storage.Identifier
	Round  int
}

// Executor applies ordered action lists to the graph. It is the only
// component that writes node and edge state; the engine applies event status
// transitions based on what the executor reports back.
type Executor struct {
	graph   *graph.Graph
	rewards RewardSink
}

func NewExecutor(g *graph.Graph, rewards RewardSink) *Executor {
	return &Executor{
		graph:   g,
		rewards: rewards,
	}
}

// Execute runs the list in strict order. A failed action is recorded and the
// remaining actions still run: a single declarative rule may contain
// independent effects, so failures are isolated, not fail-fast.
func (e *Executor) Execute(actions []Action, ctx Context) *Result {
	res := &Result{}

	for i, a := range actions {
		err := e.apply(a, ctx, res)
		if err != nil {
			res.Failures = append(res.Failures, Failure{Index: i, Kind: a.Kind, Error: err.Error()})
			slog.Warn("action failed", "index", i, "kind", a.Kind, "error", err)
			continue
		}
		res.Executed++
	}

	return res
}

func (e *Executor) apply(a Action, ctx Context, res *Result) error {
	switch a.Kind {
	case KindSetState:
		return e.setState(a)

	case KindAdjustState:
		return e.adjustState(a)

	case KindEmitEvent:
		scope := a.Scope
		if scope == "" {
			scope = ScopeLocal
		}
		res.Emitted = append(res.Emitted, EmittedEvent{
			Event:  a.Event,
			Origin: ctx.Source,
			Scope:  scope,
		})
		return nil

	case KindSpawnNode:
		return e.spawnNode(a, res)

	case KindRemoveNode:
		id := storage.Identifier(a.Node)
		if err := e.graph.RetireNode(id); err != nil {
			return err
		}
		res.Removed = append(res.Removed, id)
		return nil

	case KindUnlockEvent:
		// Status transitions belong to the engine; report the unlock.
		res.Unlocked = append(res.Unlocked, a.Event)
		return nil

	case KindGrantReward:
		return e.grantReward(a)

	case KindNarrativeHint:
		return e.narrativeHint(a, ctx, res)

	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

func (e *Executor) setState(a Action) error {
	id := storage.Identifier(a.Node)
	n := e.graph.Node(id)
	if n == nil {
		return fmt.Errorf("setting %s on %q: %w", a.Key, id, graph.ErrNodeNotFound)
	}

	value := a.Value
	if f, ok := toFloat64(value); ok {
		value = clamp(n, a.Key, f)
	}
	return e.graph.SetState(id, a.Key, value)
}

func (e *Executor) adjustState(a Action) error {
	id := storage.Identifier(a.Node)
	n := e.graph.Node(id)
	if n == nil {
		return fmt.Errorf("adjusting %s on %q: %w", a.Key, id, graph.ErrNodeNotFound)
	}

	cur := 0.0
	if v, ok := n.StateValue(a.Key); ok {
		f, isNum := toFloat64(v)
		if !isNum {
			return fmt.Errorf("adjusting %s on %q: current value %v is not numeric", a.Key, id, v)
		}
		cur = f
	}

	return e.graph.SetState(id, a.Key, clamp(n, a.Key, cur+a.Delta))
}

// clamp applies the bounded-field rules: never below zero, never above the
// node's configured maximum when one is defined.
func clamp(n *graph.Node, key string, v float64) float64 {
	if v < 0 {
		v = 0
	}
	if max, ok := n.MaxFor(key); ok && v > max {
		v = max
	}
	return v
}

func (e *Executor) spawnNode(a Action, res *Result) error {
	id := storage.Identifier(a.Node)
	t := graph.NodeType(a.NodeType)
	if !t.Valid() {
		return fmt.Errorf("spawning %q: invalid node type %q", id, a.NodeType)
	}

	n := &graph.Node{
		Id:         id,
		Type:       t,
		Name:       a.Name,
		Properties: a.Properties,
		State:      a.State,
		CreatedAt:  time.Now(),
	}
	if err := e.graph.SpawnNode(n); err != nil {
		return err
	}

	if a.At != "" {
		err := e.graph.AddEdge(graph.Edge{
			From: storage.Identifier(a.At),
			To:   id,
			Type: graph.EdgeTypeHosts,
		})
		if err != nil {
			return fmt.Errorf("hosting spawned node %q: %w", id, err)
		}
	}

	res.Spawned = append(res.Spawned, id)
	return nil
}

func (e *Executor) grantReward(a Action) error {
	if e.rewards == nil {
		return fmt.Errorf("granting reward: no reward collaborator configured")
	}

	recipient := storage.Identifier(a.Node)
	for _, item := range a.Items {
		if err := e.rewards.AddItem(recipient, storage.Identifier(item), 1); err != nil {
			return fmt.Errorf("granting item %q: %w", item, err)
		}
	}
	if a.Experience > 0 {
		if err := e.rewards.AddExperience(recipient, a.Experience); err != nil {
			return fmt.Errorf("granting experience: %w", err)
		}
	}
	return nil
}

func (e *Executor) narrativeHint(a Action, ctx Context, res *Result) error {
	data := narrative.HintData{Round: ctx.Round}

	target := a.Node
	if target == "" {
		target = ctx.Source.String()
	}
	if n := e.graph.Node(storage.Identifier(target)); n != nil {
		data.Name = n.Name
		data.Props = n.Properties
		data.State = n.State
	}

	hint, err := narrative.ExpandHint(a.Hint, data)
	if err != nil {
		return err
	}
	res.Hints = append(res.Hints, hint)
	return nil
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
