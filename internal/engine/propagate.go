package engine

import (
	"sort"

	"github.com/pixil98/go-story/internal/action"
	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/storage"
)

// Activation is one node reached by propagation, with its decayed score.
type Activation struct {
	NodeId storage.Identifier
	Score  float64
}

// Propagate performs the decayed breadth-first spread of an event's influence
// from its origin node. Each hop multiplies the inherited score by the decay
// constant and the edge's weight; traversal stops below the minimum weight or
// past the scope's depth bound. A node reachable via several paths keeps the
// highest score found, never the sum. The graph is only read.
func Propagate(g *graph.Graph, origin storage.Identifier, scope action.Scope, areaId storage.Identifier, cfg Config) []Activation {
	if g.Node(origin) == nil {
		return nil
	}
	if scope == "" {
		scope = action.ScopeLocal
	}
	if scope == action.ScopeLocal {
		return []Activation{{NodeId: origin, Score: 1}}
	}

	maxDepth := cfg.AreaMaxDepth
	if scope == action.ScopeGlobal {
		maxDepth = cfg.GlobalMaxDepth
	}

	type visit struct {
		id    storage.Identifier
		score float64
		depth int
	}

	best := map[storage.Identifier]float64{origin: 1}
	queue := []visit{{id: origin, score: 1, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= maxDepth {
			continue
		}

		for _, e := range g.Neighbors(cur.id, "") {
			next := e.To
			score := cur.score * cfg.DecayFactor * e.EffectiveWeight()
			if score < cfg.MinWeight {
				continue
			}
			if scope == action.ScopeArea && areaId != "" && !g.WithinScope(next, areaId) {
				continue
			}
			if prev, seen := best[next]; seen && prev >= score {
				continue
			}
			best[next] = score
			queue = append(queue, visit{id: next, score: score, depth: cur.depth + 1})
		}
	}

	out := make([]Activation, 0, len(best))
	for id, score := range best {
		out = append(out, Activation{NodeId: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].NodeId < out[j].NodeId
	})
	return out
}
