package engine

import (
	"fmt"
	"sort"

	"github.com/pixil98/go-story/internal/action"
	"github.com/pixil98/go-story/internal/condition"
	"github.com/pixil98/go-story/internal/content"
	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/metrics"
	"github.com/pixil98/go-story/internal/storage"
)

// Engine orchestrates condition evaluation and action execution over one
// session's graph. It owns the event lifecycle machine and cascade control.
//
// All entry points are synchronous with respect to graph mutation: they run
// to completion, including any bounded cascade, before returning. The engine
// is single-writer by construction; concurrent sessions each get their own
// Engine and Graph.
type Engine struct {
	cfg   Config
	graph *graph.Graph
	exec  *action.Executor

	behaviors map[storage.Identifier][]boundBehavior
	events    map[storage.Identifier]*EventInstance

	// applied is the dedup set: event ids whose on_complete side effects have
	// already run. It survives restarts via the snapshot subsystem so crash
	// recovery never double-grants.
	applied map[storage.Identifier]bool

	// deferred holds cascaded emissions past the depth cap, drained at the
	// next explicit tick.
	deferred []action.EmittedEvent

	round int
}

type boundBehavior struct {
	id string
	b  *content.Behavior
}

// New builds an engine over a sealed graph. Event and behavior definitions
// come from the content registry keyed by asset id.
func New(g *graph.Graph, exec *action.Executor, events map[string]*content.Event, behaviors map[string]*content.Behavior, cfg Config) (*Engine, error) {
	if !g.Sealed() {
		return nil, fmt.Errorf("creating engine: %w", graph.ErrNotSealed)
	}

	e := &Engine{
		cfg:       cfg.withDefaults(),
		graph:     g,
		exec:      exec,
		behaviors: make(map[storage.Identifier][]boundBehavior),
		events:    make(map[storage.Identifier]*EventInstance),
		applied:   make(map[storage.Identifier]bool),
	}

	for id, def := range events {
		e.events[storage.Identifier(id)] = &EventInstance{
			Id:     storage.Identifier(id),
			Def:    def,
			Status: initialStatus(def),
		}
	}
	for id, b := range behaviors {
		node := storage.Identifier(b.Node)
		e.behaviors[node] = append(e.behaviors[node], boundBehavior{id: id, b: b})
	}
	for node := range e.behaviors {
		bs := e.behaviors[node]
		sort.Slice(bs, func(i, j int) bool { return bs[i].id < bs[j].id })
	}

	return e, nil
}

// Round returns the current game time.
func (e *Engine) Round() int {
	return e.round
}

// EventStatusTable returns the full status table, consumed by snapshots.
func (e *Engine) EventStatusTable() map[string]string {
	out := make(map[string]string, len(e.events))
	for id, inst := range e.events {
		out[id.String()] = string(inst.Status)
	}
	return out
}

// AppliedSideEffects returns the dedup set, consumed by snapshots.
func (e *Engine) AppliedSideEffects() []string {
	out := make([]string, 0, len(e.applied))
	for id := range e.applied {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return out
}

// RestoreEventStatus re-applies a persisted status table. Unknown statuses
// and unknown event ids are skipped: a corrupted record resumes best-effort
// rather than refusing the session. Completion bookkeeping is recovered from
// the event nodes' own state, which travels with the graph snapshot.
func (e *Engine) RestoreEventStatus(table map[string]string) {
	for id, raw := range table {
		inst, ok := e.events[storage.Identifier(id)]
		if !ok {
			continue
		}
		st := Status(raw)
		if !st.Valid() {
			continue
		}
		inst.Status = st
	}
	for _, inst := range e.events {
		n := e.graph.Node(inst.Id)
		if n == nil {
			continue
		}
		if v, ok := n.StateValue("completed_round"); ok {
			if f, isNum := toInt(v); isNum {
				inst.CompletedRound = f
				inst.completedOnce = true
			}
		}
	}
}

// RestoreApplied re-applies the persisted dedup set.
func (e *Engine) RestoreApplied(ids []string) {
	for _, id := range ids {
		e.applied[storage.Identifier(id)] = true
	}
}

// RestoreRound fast-forwards game time to the persisted round.
func (e *Engine) RestoreRound(round int) {
	if round > e.round {
		e.round = round
	}
}

// plannedTransition is one decided-but-not-yet-applied status change. All
// conditions of a batch are evaluated before any action runs, so evaluation
// always observes a consistent graph state.
type plannedTransition struct {
	inst *EventInstance
	to   Status
}

// Tick runs one evaluation pass: drains deferred cascades, advances
// locked/cooldown events whose trigger conditions hold, completes or fails
// active events, and fires on_tick behaviors.
func (e *Engine) Tick(ctx TickContext) *TickResult {
	if ctx.Round > 0 {
		e.round = ctx.Round
	} else {
		e.round++
	}
	metrics.TicksProcessed.Inc()

	res := &TickResult{}

	pending := e.deferred
	e.deferred = nil
	for _, em := range pending {
		res.CascadedEvents = append(res.CascadedEvents, em.Event)
		e.processEvent(newWorldEvent(em, e.round), res, 0)
	}

	w := worldView{e}
	var plans []plannedTransition
	for _, inst := range e.sortedEvents() {
		if !e.inScope(e.originOf(inst), ctx.Scope) {
			continue
		}
		if to, ok := e.evalLifecycle(inst, w); ok {
			plans = append(plans, plannedTransition{inst: inst, to: to})
		}
	}
	fired := e.matchBehaviors(content.TriggerOnTick, ctx.Scope, w)

	for _, p := range plans {
		e.transition(p.inst, p.to, res, 0)
	}
	for _, fb := range fired {
		e.runBehavior(fb, res, 0)
	}

	return res
}

// HandleEvent re-runs evaluation restricted to the nodes the event's
// propagation reaches. It is also the public entry point for externally
// sourced world events.
func (e *Engine) HandleEvent(ev WorldEvent) *TickResult {
	res := &TickResult{}
	e.processEvent(ev, res, 0)
	return res
}

// HandleEnter activates available events scoped to the entered node and runs
// its on_enter behaviors.
func (e *Engine) HandleEnter(nodeId storage.Identifier) *TickResult {
	res := &TickResult{}
	w := worldView{e}

	var plans []plannedTransition
	for _, inst := range e.sortedEvents() {
		if inst.Status != StatusAvailable {
			continue
		}
		origin := e.originOf(inst)
		if origin == nodeId || e.graph.WithinScope(origin, nodeId) {
			plans = append(plans, plannedTransition{inst: inst, to: StatusActive})
		}
	}
	fired := e.matchBehaviors(content.TriggerOnEnter, nodeId, w)

	for _, p := range plans {
		e.transition(p.inst, p.to, res, 0)
	}
	for _, fb := range fired {
		e.runBehavior(fb, res, 0)
	}

	return res
}

// HandleExit runs on_exit behaviors for the node being left.
func (e *Engine) HandleExit(nodeId storage.Identifier) *TickResult {
	res := &TickResult{}
	w := worldView{e}

	for _, fb := range e.matchBehaviors(content.TriggerOnExit, nodeId, w) {
		e.runBehavior(fb, res, 0)
	}

	return res
}

// evalLifecycle decides a single event's next status against the current
// world view, or reports no change.
func (e *Engine) evalLifecycle(inst *EventInstance, w worldView) (Status, bool) {
	switch inst.Status {
	case StatusLocked:
		if inst.Def.Trigger != nil && condition.Evaluate(inst.Def.Trigger, w) {
			return StatusAvailable, true
		}
	case StatusCooldown:
		if inst.Def.Repeatable && e.round-inst.CompletedRound >= inst.Def.CooldownRounds {
			return StatusAvailable, true
		}
	case StatusActive:
		if inst.Def.Completion != nil && condition.Evaluate(inst.Def.Completion, w) {
			return StatusCompleted, true
		}
		if inst.Def.Failure != nil && condition.Evaluate(inst.Def.Failure, w) {
			return StatusFailed, true
		}
	}
	return "", false
}

// processEvent propagates a world event and re-evaluates whatever it reaches.
// depth counts cascaded completions in the current call chain.
func (e *Engine) processEvent(ev WorldEvent, res *TickResult, depth int) {
	areaId := e.areaOf(ev.Origin)
	acts := Propagate(e.graph, ev.Origin, ev.Scope, areaId, e.cfg)
	metrics.PropagationReach.Observe(float64(len(acts)))

	affected := make(map[storage.Identifier]bool, len(acts))
	for _, a := range acts {
		affected[a.NodeId] = true
	}

	w := worldView{e}
	var plans []plannedTransition
	for _, inst := range e.sortedEvents() {
		if inst.Id == ev.DefId {
			continue
		}
		if !affected[e.originOf(inst)] && !affected[inst.Id] {
			continue
		}
		if to, ok := e.evalLifecycle(inst, w); ok {
			plans = append(plans, plannedTransition{inst: inst, to: to})
		}
	}

	var fired []boundBehavior
	for _, a := range acts {
		for _, fb := range e.behaviors[a.NodeId] {
			if fb.b.Trigger != content.TriggerOnEvent {
				continue
			}
			if fb.b.Conditions == nil || condition.Evaluate(fb.b.Conditions, w) {
				fired = append(fired, fb)
			}
		}
	}

	for _, p := range plans {
		e.transition(p.inst, p.to, res, depth)
	}
	for _, fb := range fired {
		e.runBehavior(fb, res, depth)
	}
}

// transition applies one lifecycle edge and its side effects. Completions at
// a depth past the cascade cap never reach here; they are deferred upstream.
func (e *Engine) transition(inst *EventInstance, to Status, res *TickResult, depth int) {
	from := inst.Status
	if !CanTransition(from, to) {
		res.ActionFailures = append(res.ActionFailures, action.Failure{
			Index: -1,
			Error: fmt.Sprintf("event %s: illegal transition %s -> %s", inst.Id, from, to),
		})
		return
	}

	inst.Status = to
	res.EventTransitions = append(res.EventTransitions, Transition{
		Event: inst.Id.String(),
		From:  from,
		To:    to,
	})
	metrics.EventTransitions.WithLabelValues(string(to)).Inc()

	switch to {
	case StatusCompleted:
		e.markCompleted(inst)
		if !e.applied[inst.Id] {
			e.applied[inst.Id] = true
			ar := e.exec.Execute(inst.Def.OnComplete, action.Context{Source: e.originOf(inst), Round: e.round})
			res.merge(ar)
			e.applyActionResult(ar, res, depth)
		}
		for _, edge := range e.graph.Neighbors(inst.Id, graph.EdgeTypeGates) {
			e.unlock(edge.To, res)
		}
		if inst.Def.Repeatable {
			e.transition(inst, StatusCooldown, res, depth)
		}

	case StatusFailed:
		e.markCompleted(inst)
		ar := e.exec.Execute(inst.Def.OnFail, action.Context{Source: e.originOf(inst), Round: e.round})
		res.merge(ar)
		e.applyActionResult(ar, res, depth)
		if inst.Def.Repeatable {
			e.transition(inst, StatusCooldown, res, depth)
		}

	case StatusAvailable:
		if from == StatusCooldown {
			// Re-arm: the next completion of a repeatable event applies its
			// side effects again.
			delete(e.applied, inst.Id)
		}
	}
}

// markCompleted stamps completion bookkeeping both on the instance and into
// the event node's logged state so it survives snapshot round-trips.
func (e *Engine) markCompleted(inst *EventInstance) {
	inst.CompletedRound = e.round
	inst.completedOnce = true
	if e.graph.Node(inst.Id) != nil {
		_ = e.graph.SetState(inst.Id, "completed_round", e.round)
	}
}

// applyActionResult feeds executor output back into the lifecycle: unlock
// requests and emitted events, the latter subject to the cascade cap.
func (e *Engine) applyActionResult(ar *action.Result, res *TickResult, depth int) {
	for _, id := range ar.Unlocked {
		e.unlock(storage.Identifier(id), res)
	}
	for _, em := range ar.Emitted {
		next := depth + 1
		if next >= e.cfg.MaxCascadeDepth {
			e.deferred = append(e.deferred, em)
			res.DeferredEvents = append(res.DeferredEvents, em.Event)
			metrics.EventsDeferred.Inc()
			continue
		}
		res.CascadedEvents = append(res.CascadedEvents, em.Event)
		e.processEvent(newWorldEvent(em, e.round), res, next)
	}
}

func (e *Engine) unlock(id storage.Identifier, res *TickResult) {
	inst, ok := e.events[id]
	if !ok {
		res.ActionFailures = append(res.ActionFailures, action.Failure{
			Index: -1,
			Kind:  action.KindUnlockEvent,
			Error: fmt.Sprintf("unlocking %s: unknown event", id),
		})
		return
	}
	if inst.Status != StatusLocked {
		return
	}
	e.transition(inst, StatusAvailable, res, 0)
}

func (e *Engine) runBehavior(fb boundBehavior, res *TickResult, depth int) {
	res.FiredBehaviors = append(res.FiredBehaviors, fb.id)
	metrics.BehaviorsFired.WithLabelValues(string(fb.b.Trigger)).Inc()

	ar := e.exec.Execute(fb.b.Actions, action.Context{
		Source: storage.Identifier(fb.b.Node),
		Round:  e.round,
	})
	res.merge(ar)
	if len(ar.Failures) > 0 {
		metrics.ActionFailures.Add(float64(len(ar.Failures)))
	}
	e.applyActionResult(ar, res, depth)
}

// matchBehaviors evaluates conditions for all behaviors with the given
// trigger, optionally confined to nodes under scope.
func (e *Engine) matchBehaviors(trigger content.Trigger, scope storage.Identifier, w worldView) []boundBehavior {
	var nodes []storage.Identifier
	for node := range e.behaviors {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	var fired []boundBehavior
	for _, node := range nodes {
		if trigger == content.TriggerOnEnter || trigger == content.TriggerOnExit {
			if node != scope {
				continue
			}
		} else if !e.inScope(node, scope) {
			continue
		}
		for _, fb := range e.behaviors[node] {
			if fb.b.Trigger != trigger {
				continue
			}
			if fb.b.Conditions == nil || condition.Evaluate(fb.b.Conditions, w) {
				fired = append(fired, fb)
			}
		}
	}
	return fired
}

func (e *Engine) inScope(node, scope storage.Identifier) bool {
	if scope == "" {
		return true
	}
	return node == scope || e.graph.WithinScope(node, scope)
}

func (e *Engine) sortedEvents() []*EventInstance {
	out := make([]*EventInstance, 0, len(e.events))
	for _, inst := range e.events {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func (e *Engine) originOf(inst *EventInstance) storage.Identifier {
	if inst.Def.Origin != "" {
		return storage.Identifier(inst.Def.Origin)
	}
	return storage.Identifier(inst.Def.Area)
}

// areaOf walks containment upward to the enclosing area node.
func (e *Engine) areaOf(id storage.Identifier) storage.Identifier {
	if n := e.graph.AncestorOfType(id, graph.NodeTypeArea); n != nil {
		return n.Id
	}
	return ""
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
