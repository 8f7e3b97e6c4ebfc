package snapshot

import (
	"log/slog"
	"time"

	"github.com/pixil98/go-story/internal/engine"
	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/storage"
)

// Snapshot is the persistable delta of one session: everything that has
// diverged from the content-built graph since the last log compaction, plus
// the engine's lifecycle bookkeeping. Applying it to a freshly built graph
// reproduces the captured session state.
type Snapshot struct {
	NodeStateOverwrites map[string]map[string]any `json:"node_state_overwrites"`
	StructuralDeltas    Deltas                    `json:"structural_deltas"`
	EventStatus         map[string]string         `json:"event_status"`
	AppliedSideEffects  []string                  `json:"applied_side_effects"`
	Round               int                       `json:"round"`
	CapturedAt          time.Time                 `json:"captured_at"`

	// Extensions carries data from layers this package does not know about,
	// such as plugin state. It round-trips untouched.
	Extensions storage.ExtensionState `json:"extensions,omitempty"`
}

// Deltas records structural divergence from the built world.
type Deltas struct {
	Spawned      []*graph.Node `json:"spawned,omitempty"`
	Removed      []string      `json:"removed,omitempty"`
	EdgesAdded   []graph.Edge  `json:"edges_added,omitempty"`
	EdgesRemoved []graph.Edge  `json:"edges_removed,omitempty"`
}

// Capture folds the graph's change log and the engine's lifecycle tables into
// a snapshot. It does not compact the log; callers compact only after the
// snapshot has been durably persisted.
func Capture(g *graph.Graph, e *engine.Engine) *Snapshot {
	s := &Snapshot{
		NodeStateOverwrites: make(map[string]map[string]any),
		EventStatus:         e.EventStatusTable(),
		AppliedSideEffects:  e.AppliedSideEffects(),
		Round:               e.Round(),
		CapturedAt:          time.Now().UTC(),
	}

	spawned := make(map[string]int) // node id -> index into Spawned
	for _, rec := range g.Changes() {
		switch rec.Kind {
		case graph.ChangeStateSet:
			id := rec.NodeId.String()
			if s.NodeStateOverwrites[id] == nil {
				s.NodeStateOverwrites[id] = make(map[string]any)
			}
			s.NodeStateOverwrites[id][rec.Key] = rec.New

		case graph.ChangeNodeSpawned:
			spawned[rec.Node.Id.String()] = len(s.StructuralDeltas.Spawned)
			s.StructuralDeltas.Spawned = append(s.StructuralDeltas.Spawned, rec.Node.Clone())

		case graph.ChangeNodeRemoved:
			id := rec.NodeId.String()
			if i, ok := spawned[id]; ok {
				// Spawned and removed within the same window cancels out.
				s.StructuralDeltas.Spawned[i] = nil
				delete(spawned, id)
				delete(s.NodeStateOverwrites, id)
				continue
			}
			s.StructuralDeltas.Removed = append(s.StructuralDeltas.Removed, id)
			delete(s.NodeStateOverwrites, id)

		case graph.ChangeEdgeAdded:
			s.StructuralDeltas.EdgesAdded = append(s.StructuralDeltas.EdgesAdded, *rec.Edge)
			s.StructuralDeltas.EdgesRemoved = dropEdge(s.StructuralDeltas.EdgesRemoved, *rec.Edge)

		case graph.ChangeEdgeRemoved:
			before := len(s.StructuralDeltas.EdgesAdded)
			s.StructuralDeltas.EdgesAdded = dropEdge(s.StructuralDeltas.EdgesAdded, *rec.Edge)
			if len(s.StructuralDeltas.EdgesAdded) == before {
				s.StructuralDeltas.EdgesRemoved = append(s.StructuralDeltas.EdgesRemoved, *rec.Edge)
			}
		}
	}

	s.StructuralDeltas.Spawned = compactNodes(s.StructuralDeltas.Spawned)
	return s
}

// Restore applies a snapshot to a freshly built, sealed graph and the engine
// over it. Replay is best effort: an entry that no longer applies (say a node
// id dropped from the content pack) is skipped with a warning rather than
// aborting the resume, since refusing to resume is worse than resuming with
// the valid remainder. The replay is logged like any other mutation, so the
// log is compacted afterward; the snapshot itself already covers that history.
func Restore(g *graph.Graph, e *engine.Engine, s *Snapshot) {
	skip := func(what string, err error) {
		if err != nil {
			slog.Warn("skipping stale snapshot entry", "entry", what, "error", err)
		}
	}

	for _, n := range s.StructuralDeltas.Spawned {
		if n == nil {
			continue
		}
		skip("spawn "+n.Id.String(), g.SpawnNode(n.Clone()))
	}
	for _, edge := range s.StructuralDeltas.EdgesAdded {
		skip("edge "+edge.From.String()+"->"+edge.To.String(), g.AddEdge(edge))
	}
	for id, states := range s.NodeStateOverwrites {
		for key, val := range states {
			skip("state "+id+"."+key, g.SetState(storage.Identifier(id), key, val))
		}
	}
	for _, edge := range s.StructuralDeltas.EdgesRemoved {
		skip("unedge "+edge.From.String()+"->"+edge.To.String(), g.RemoveEdge(edge.From, edge.To, edge.Type))
	}
	for _, id := range s.StructuralDeltas.Removed {
		skip("retire "+id, g.RetireNode(storage.Identifier(id)))
	}

	e.RestoreEventStatus(s.EventStatus)
	e.RestoreApplied(s.AppliedSideEffects)
	e.RestoreRound(s.Round)

	g.CompactLog()
}

// Merge folds a newer capture into s. Node overwrites and structural deltas
// accumulate; lifecycle tables are absolute per capture and replace wholesale.
// This lets a session persist incremental captures while the stored document
// stays complete.
func (s *Snapshot) Merge(delta *Snapshot) {
	if s.NodeStateOverwrites == nil {
		s.NodeStateOverwrites = make(map[string]map[string]any)
	}
	for id, states := range delta.NodeStateOverwrites {
		if s.NodeStateOverwrites[id] == nil {
			s.NodeStateOverwrites[id] = make(map[string]any)
		}
		for key, val := range states {
			s.NodeStateOverwrites[id][key] = val
		}
	}

	for _, n := range delta.StructuralDeltas.Spawned {
		if n == nil {
			continue
		}
		s.StructuralDeltas.Removed = dropString(s.StructuralDeltas.Removed, n.Id.String())
		s.StructuralDeltas.Spawned = append(s.StructuralDeltas.Spawned, n)
	}
	for _, id := range delta.StructuralDeltas.Removed {
		kept := s.StructuralDeltas.Spawned[:0]
		dropped := false
		for _, n := range s.StructuralDeltas.Spawned {
			if n != nil && n.Id.String() == id {
				dropped = true
				continue
			}
			kept = append(kept, n)
		}
		s.StructuralDeltas.Spawned = kept
		if !dropped {
			s.StructuralDeltas.Removed = append(s.StructuralDeltas.Removed, id)
		}
		delete(s.NodeStateOverwrites, id)
	}
	for _, edge := range delta.StructuralDeltas.EdgesAdded {
		s.StructuralDeltas.EdgesRemoved = dropEdge(s.StructuralDeltas.EdgesRemoved, edge)
		s.StructuralDeltas.EdgesAdded = append(s.StructuralDeltas.EdgesAdded, edge)
	}
	for _, edge := range delta.StructuralDeltas.EdgesRemoved {
		before := len(s.StructuralDeltas.EdgesAdded)
		s.StructuralDeltas.EdgesAdded = dropEdge(s.StructuralDeltas.EdgesAdded, edge)
		if len(s.StructuralDeltas.EdgesAdded) == before {
			s.StructuralDeltas.EdgesRemoved = append(s.StructuralDeltas.EdgesRemoved, edge)
		}
	}

	s.EventStatus = delta.EventStatus
	s.AppliedSideEffects = delta.AppliedSideEffects
	s.Round = delta.Round
	s.CapturedAt = delta.CapturedAt
	for k, v := range delta.Extensions {
		if s.Extensions == nil {
			s.Extensions = storage.ExtensionState{}
		}
		s.Extensions[k] = v
	}
}

// Empty reports whether the snapshot carries no divergence worth persisting.
func (s *Snapshot) Empty() bool {
	return len(s.NodeStateOverwrites) == 0 &&
		len(s.StructuralDeltas.Spawned) == 0 &&
		len(s.StructuralDeltas.Removed) == 0 &&
		len(s.StructuralDeltas.EdgesAdded) == 0 &&
		len(s.StructuralDeltas.EdgesRemoved) == 0
}

func dropEdge(edges []graph.Edge, e graph.Edge) []graph.Edge {
	kept := edges[:0]
	for _, cur := range edges {
		if cur.From == e.From && cur.To == e.To && cur.Type == e.Type {
			continue
		}
		kept = append(kept, cur)
	}
	return kept
}

func dropString(ss []string, s string) []string {
	kept := ss[:0]
	for _, cur := range ss {
		if cur == s {
			continue
		}
		kept = append(kept, cur)
	}
	return kept
}

func compactNodes(nodes []*graph.Node) []*graph.Node {
	kept := nodes[:0]
	for _, n := range nodes {
		if n != nil {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
