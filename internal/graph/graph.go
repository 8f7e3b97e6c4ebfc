package graph

import (
	"fmt"

	"github.com/pixil98/go-story/internal/storage"
)

// Graph is the in-memory world activity graph for a single session. It is the
// single source of truth for all mutable world state; all access goes through
// its methods. The graph is single-writer: one engine call mutates it at a
// time, so no internal locking is needed (cross-session isolation is handled
// by giving every session its own Graph).
//
// Nodes live in a flat arena keyed by id; edges are held in adjacency indices
// keyed by (source, type) and (target, type). Cross-references are always by
// id, never by pointer.
type Graph struct {
	nodes map[storage.Identifier]*Node
	out   map[storage.Identifier]map[EdgeType][]Edge
	in    map[storage.Identifier]map[EdgeType][]Edge

	sealed bool
	log    []ChangeRecord
	seq    uint64
}

// New creates an empty, unsealed graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[storage.Identifier]*Node),
		out:   make(map[storage.Identifier]map[EdgeType][]Edge),
		in:    make(map[storage.Identifier]map[EdgeType][]Edge),
	}
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id storage.Identifier) *Node {
	return g.nodes[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// AddNode inserts a node during construction. After Seal, structural changes
// must go through SpawnNode/RetireNode so they land in the change log.
func (g *Graph) AddNode(n *Node) error {
	if g.sealed {
		return fmt.Errorf("adding node %q: %w", n.Id, ErrSealed)
	}
	return g.insertNode(n)
}

// SpawnNode instantiates a runtime node after seal (e.g. a transient npc
// created by a spawn action). The spawn is recorded in the change log.
func (g *Graph) SpawnNode(n *Node) error {
	if !g.sealed {
		return fmt.Errorf("spawning node %q: %w", n.Id, ErrNotSealed)
	}
	if err := g.insertNode(n); err != nil {
		return err
	}
	g.record(ChangeRecord{Kind: ChangeNodeSpawned, NodeId: n.Id, Node: n.Clone()})
	return nil
}

func (g *Graph) insertNode(n *Node) error {
	if n.Id == "" {
		return fmt.Errorf("node id must be set")
	}
	if !n.Type.Valid() {
		return fmt.Errorf("node %q: invalid type %q", n.Id, n.Type)
	}
	if _, exists := g.nodes[n.Id]; exists {
		return fmt.Errorf("adding node %q: %w", n.Id, ErrNodeExists)
	}
	if n.State == nil {
		n.State = make(map[string]any)
	}
	g.nodes[n.Id] = n
	return nil
}

// RemoveNode deletes a node during construction.
func (g *Graph) RemoveNode(id storage.Identifier) error {
	if g.sealed {
		return fmt.Errorf("removing node %q: %w", id, ErrSealed)
	}
	return g.deleteNode(id, false)
}

// RetireNode removes a node after seal, detaching all of its edges. Both the
// node removal and the detached edges are recorded in the change log.
func (g *Graph) RetireNode(id storage.Identifier) error {
	if !g.sealed {
		return fmt.Errorf("retiring node %q: %w", id, ErrNotSealed)
	}
	return g.deleteNode(id, true)
}

func (g *Graph) deleteNode(id storage.Identifier, logged bool) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("removing node %q: %w", id, ErrNodeNotFound)
	}

	// Detach edges in both directions.
	for _, edges := range g.out[id] {
		for _, e := range edges {
			g.dropIndexed(g.in, e.To, e.Type, e)
			if logged {
				ec := e
				g.record(ChangeRecord{Kind: ChangeEdgeRemoved, Edge: &ec})
			}
		}
	}
	for _, edges := range g.in[id] {
		for _, e := range edges {
			g.dropIndexed(g.out, e.From, e.Type, e)
			if logged {
				ec := e
				g.record(ChangeRecord{Kind: ChangeEdgeRemoved, Edge: &ec})
			}
		}
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.nodes, id)

	if logged {
		g.record(ChangeRecord{Kind: ChangeNodeRemoved, NodeId: id, Node: n.Clone()})
	}
	return nil
}

// AddEdge inserts a typed directed edge. Both endpoints must already exist;
// a dangling endpoint is a hard error. Post-seal additions are logged.
func (g *Graph) AddEdge(e Edge) error {
	if !e.Type.Valid() {
		return fmt.Errorf("edge %s->%s: invalid type %q", e.From, e.To, e.Type)
	}
	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("edge %s->%s: source: %w", e.From, e.To, ErrNodeNotFound)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("edge %s->%s: target: %w", e.From, e.To, ErrNodeNotFound)
	}

	g.indexEdge(e)
	if g.sealed {
		ec := e
		g.record(ChangeRecord{Kind: ChangeEdgeAdded, Edge: &ec})
	}
	return nil
}

// RemoveEdge deletes the edge matching (from, to, type). Post-seal removals
// are logged.
func (g *Graph) RemoveEdge(from, to storage.Identifier, t EdgeType) error {
	edges := g.out[from][t]
	found := false
	for _, e := range edges {
		if e.To == to {
			found = true
			g.dropIndexed(g.out, from, t, e)
			g.dropIndexed(g.in, to, t, e)
			if g.sealed {
				ec := e
				g.record(ChangeRecord{Kind: ChangeEdgeRemoved, Edge: &ec})
			}
			break
		}
	}
	if !found {
		return fmt.Errorf("edge %s->%s (%s): %w", from, to, t, ErrEdgeNotFound)
	}
	return nil
}

func (g *Graph) indexEdge(e Edge) {
	if g.out[e.From] == nil {
		g.out[e.From] = make(map[EdgeType][]Edge)
	}
	if g.in[e.To] == nil {
		g.in[e.To] = make(map[EdgeType][]Edge)
	}
	g.out[e.From][e.Type] = append(g.out[e.From][e.Type], e)
	g.in[e.To][e.Type] = append(g.in[e.To][e.Type], e)
}

func (g *Graph) dropIndexed(idx map[storage.Identifier]map[EdgeType][]Edge, key storage.Identifier, t EdgeType, e Edge) {
	edges := idx[key][t]
	for i, c := range edges {
		if c.From == e.From && c.To == e.To {
			idx[key][t] = append(edges[:i], edges[i+1:]...)
			return
		}
	}
}

// Neighbors returns the outgoing edges of a node. With a zero edge type, all
// outgoing edges are returned.
func (g *Graph) Neighbors(id storage.Identifier, t EdgeType) []Edge {
	if t != "" {
		out := make([]Edge, len(g.out[id][t]))
		copy(out, g.out[id][t])
		return out
	}
	var out []Edge
	for _, edges := range g.out[id] {
		out = append(out, edges...)
	}
	return out
}

// Incoming returns the edges pointing at a node ("who points at me"). With a
// zero edge type, all incoming edges are returned.
func (g *Graph) Incoming(id storage.Identifier, t EdgeType) []Edge {
	if t != "" {
		in := make([]Edge, len(g.in[id][t]))
		copy(in, g.in[id][t])
		return in
	}
	var in []Edge
	for _, edges := range g.in[id] {
		in = append(in, edges...)
	}
	return in
}

// Children returns the nodes contained by the given node, optionally filtered
// by node type.
func (g *Graph) Children(id storage.Identifier, filter NodeType) []*Node {
	var out []*Node
	for _, e := range g.out[id][EdgeTypeContains] {
		n := g.nodes[e.To]
		if n == nil {
			continue
		}
		if filter != "" && n.Type != filter {
			continue
		}
		out = append(out, n)
	}
	return out
}

// EntitiesAt returns the entities hosted at a scope node (npcs, items and
// events at a location, plus any players occupying it).
func (g *Graph) EntitiesAt(scope storage.Identifier) []*Node {
	var out []*Node
	for _, e := range g.out[scope][EdgeTypeHosts] {
		if n := g.nodes[e.To]; n != nil {
			out = append(out, n)
		}
	}
	return out
}

// HasEdge reports whether an edge (from, to, type) exists.
func (g *Graph) HasEdge(from, to storage.Identifier, t EdgeType) bool {
	for _, e := range g.out[from][t] {
		if e.To == to {
			return true
		}
	}
	return false
}

// WithinScope reports whether a node sits inside the given scope node,
// following incoming containment edges upward. A node is within its own scope.
func (g *Graph) WithinScope(id, scope storage.Identifier) bool {
	seen := make(map[storage.Identifier]bool)
	for cur := id; cur != ""; {
		if cur == scope {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true

		parents := g.in[cur][EdgeTypeContains]
		if len(parents) == 0 {
			// Hosted entities hang off locations via hosts edges.
			parents = g.in[cur][EdgeTypeHosts]
		}
		if len(parents) == 0 {
			return false
		}
		cur = parents[0].From
	}
	return false
}

// AncestorOfType walks containment upward from id and returns the first
// ancestor of the given type, or nil. The starting node itself qualifies.
func (g *Graph) AncestorOfType(id storage.Identifier, t NodeType) *Node {
	seen := make(map[storage.Identifier]bool)
	for cur := id; cur != ""; {
		if seen[cur] {
			return nil
		}
		seen[cur] = true

		if n, ok := g.nodes[cur]; ok && n.Type == t {
			return n
		}
		parents := g.in[cur][EdgeTypeContains]
		if len(parents) == 0 {
			parents = g.in[cur][EdgeTypeHosts]
		}
		if len(parents) == 0 {
			return nil
		}
		cur = parents[0].From
	}
	return nil
}

// SetState overwrites a runtime state value on a node and records the change.
func (g *Graph) SetState(id storage.Identifier, key string, value any) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("setting state on %q: %w", id, ErrNodeNotFound)
	}
	old, had := n.State[key]
	n.State[key] = value
	if !had {
		old = nil
	}
	g.record(ChangeRecord{Kind: ChangeStateSet, NodeId: id, Key: key, Old: old, New: value})
	return nil
}

// Seal freezes the structural shape of the graph. From seal onward, nodes and
// edges change only through the logged SpawnNode/RetireNode/AddEdge/RemoveEdge
// calls made by action execution.
func (g *Graph) Seal() {
	g.sealed = true
}

// Sealed reports whether the graph has been sealed.
func (g *Graph) Sealed() bool {
	return g.sealed
}

// Changes returns a copy of the change log accumulated since the last
// compaction.
func (g *Graph) Changes() []ChangeRecord {
	out := make([]ChangeRecord, len(g.log))
	copy(out, g.log)
	return out
}

// CompactLog discards the change log. Callers invoke this after the
// corresponding snapshot has been persisted successfully; it is never
// automatic.
func (g *Graph) CompactLog() {
	g.log = g.log[:0]
}

func (g *Graph) record(r ChangeRecord) {
	g.seq++
	r.Seq = g.seq
	g.log = append(g.log, r)
}
