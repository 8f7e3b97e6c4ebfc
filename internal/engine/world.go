package engine

import (
	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/storage"
)

// worldView implements condition.World over the engine's graph and event
// table. It is strictly read-only; handing conditions this view rather than
// the engine itself keeps evaluation side-effect free.
type worldView struct {
	e *Engine
}

func (w worldView) NodeExists(id string) bool {
	return w.e.graph.Node(storage.Identifier(id)) != nil
}

func (w worldView) NodeState(id, key string) (any, bool) {
	n := w.e.graph.Node(storage.Identifier(id))
	if n == nil {
		return nil, false
	}
	return n.StateValue(key)
}

func (w worldView) HasRelation(from, relation, to string) bool {
	return w.e.graph.HasEdge(
		storage.Identifier(from),
		storage.Identifier(to),
		graph.EdgeType(relation),
	)
}

func (w worldView) EventStatus(id string) (string, bool) {
	inst, ok := w.e.events[storage.Identifier(id)]
	if !ok {
		return "", false
	}
	return string(inst.Status), true
}

func (w worldView) EventCompletedRound(id string) (int, bool) {
	inst, ok := w.e.events[storage.Identifier(id)]
	if !ok || !inst.completedOnce {
		return 0, false
	}
	return inst.CompletedRound, true
}

func (w worldView) Round() int {
	return w.e.round
}
