package condition

import (
	"fmt"
	"log/slog"
	"math"
)

// World is the read-only view conditions evaluate against. The behavior
// engine implements it over the session's graph and event table; keeping it
// an interface here avoids an import cycle and guarantees evaluation cannot
// mutate anything.
type World interface {
	NodeExists(id string) bool
	NodeState(id, key string) (any, bool)
	HasRelation(from, relation, to string) bool
	EventStatus(id string) (string, bool)
	EventCompletedRound(id string) (int, bool)
	Round() int
}

// Evaluate walks the group tree left to right with short-circuiting and
// returns the boolean outcome. Evaluation is referentially transparent:
// identical world state always yields the identical result.
//
// Missing data never escalates. A condition referencing an absent node,
// property or state key evaluates to false and logs a warning, because a
// single malformed rule must not abort a game turn.
func Evaluate(g *Group, w World) bool {
	switch {
	case len(g.All) > 0:
		for _, sub := range g.All {
			if !Evaluate(sub, w) {
				return false
			}
		}
		return true
	case len(g.Any) > 0:
		for _, sub := range g.Any {
			if Evaluate(sub, w) {
				return true
			}
		}
		return false
	case g.Not != nil:
		return !Evaluate(g.Not, w)
	case g.Cond != nil:
		return evalLeaf(g.Cond, w)
	default:
		slog.Warn("empty condition group evaluates to false")
		return false
	}
}

func evalLeaf(c *Condition, w World) bool {
	switch c.Kind {
	case KindStateEquals:
		v, ok := w.NodeState(c.Node, c.Key)
		if !ok {
			return missing(c, "state key")
		}
		return looseEqual(v, c.Value)

	case KindStateAbove, KindStateBelow, KindCounterAtLeast:
		v, ok := w.NodeState(c.Node, c.Key)
		if !ok {
			return missing(c, "state key")
		}
		lhs, lok := toFloat64(v)
		rhs, rok := toFloat64(c.Value)
		if !lok || !rok {
			return missing(c, "numeric value")
		}
		switch c.Kind {
		case KindStateAbove:
			return lhs > rhs
		case KindStateBelow:
			return lhs < rhs
		default:
			return lhs >= rhs
		}

	case KindNodeExists:
		return w.NodeExists(c.Node)

	case KindRelationExists:
		return w.HasRelation(c.Node, c.Relation, c.Target)

	case KindEventStatus:
		st, ok := w.EventStatus(c.Event)
		if !ok {
			return missing(c, "event")
		}
		return st == c.Status

	case KindTimeElapsed:
		completed, ok := w.EventCompletedRound(c.Event)
		if !ok {
			return false
		}
		return w.Round()-completed >= c.Rounds

	case KindFlagSet:
		v, ok := w.NodeState(c.Node, c.Key)
		if !ok {
			return false
		}
		b, isBool := v.(bool)
		return isBool && b

	case KindEventCompleted:
		_, ok := w.EventCompletedRound(c.Event)
		return ok

	default:
		slog.Warn("unknown condition kind evaluates to false", "kind", c.Kind)
		return false
	}
}

func missing(c *Condition, what string) bool {
	slog.Warn("condition references missing data",
		"kind", c.Kind, "node", c.Node, "key", c.Key, "event", c.Event, "missing", what)
	return false
}

// looseEqual compares values with numeric coercion so a JSON-decoded float64
// matches an authored int.
func looseEqual(a, b any) bool {
	af, aok := toFloat64(a)
	bf, bok := toFloat64(b)
	if aok && bok {
		return math.Abs(af-bf) < 1e-9
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
