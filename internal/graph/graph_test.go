package graph

import (
	"errors"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-story/internal/storage"
)

func buildTestGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()

	nodes := []*Node{
		{Id: "world", Type: NodeTypeWorld, Name: "world"},
		{Id: "area-1", Type: NodeTypeArea, Name: "Dockside"},
		{Id: "loc-1", Type: NodeTypeLocation, Name: "Pier"},
		{Id: "loc-2", Type: NodeTypeLocation, Name: "Warehouse"},
		{Id: "npc-1", Type: NodeTypeNpc, Name: "Harbormaster", State: map[string]any{"hp": 10}},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("adding node %s: %v", n.Id, err)
		}
	}

	edges := []Edge{
		{From: "world", To: "area-1", Type: EdgeTypeContains},
		{From: "area-1", To: "loc-1", Type: EdgeTypeContains},
		{From: "area-1", To: "loc-2", Type: EdgeTypeContains},
		{From: "loc-1", To: "loc-2", Type: EdgeTypeAdjacent, Weight: 0.5},
		{From: "loc-1", To: "npc-1", Type: EdgeTypeHosts},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("adding edge %s->%s: %v", e.From, e.To, err)
		}
	}

	return g
}

func TestGraph_AddNode_Duplicate(t *testing.T) {
	g := New()
	if err := g.AddNode(&Node{Id: "a", Type: NodeTypeArea}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := g.AddNode(&Node{Id: "a", Type: NodeTypeArea})
	if !errors.Is(err, ErrNodeExists) {
		t.Errorf("expected ErrNodeExists, got %v", err)
	}
}

func TestGraph_AddEdge_DanglingEndpoint(t *testing.T) {
	g := buildTestGraph(t)
	err := g.AddEdge(Edge{From: "loc-1", To: "nowhere", Type: EdgeTypeAdjacent})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestGraph_SealBlocksConstruction(t *testing.T) {
	g := buildTestGraph(t)
	g.Seal()

	err := g.AddNode(&Node{Id: "late", Type: NodeTypeNpc})
	if !errors.Is(err, ErrSealed) {
		t.Errorf("AddNode after seal: expected ErrSealed, got %v", err)
	}
	err = g.RemoveNode("npc-1")
	if !errors.Is(err, ErrSealed) {
		t.Errorf("RemoveNode after seal: expected ErrSealed, got %v", err)
	}
}

func TestGraph_SpawnRequiresSeal(t *testing.T) {
	g := buildTestGraph(t)
	err := g.SpawnNode(&Node{Id: "spawned", Type: NodeTypeNpc})
	if !errors.Is(err, ErrNotSealed) {
		t.Errorf("expected ErrNotSealed, got %v", err)
	}
}

func TestGraph_Neighbors(t *testing.T) {
	g := buildTestGraph(t)

	contains := g.Neighbors("area-1", EdgeTypeContains)
	testutil.AssertEqual(t, "contains count", len(contains), 2)

	all := g.Neighbors("loc-1", "")
	testutil.AssertEqual(t, "all outgoing count", len(all), 2)

	in := g.Incoming("loc-2", EdgeTypeAdjacent)
	testutil.AssertEqual(t, "incoming count", len(in), 1)
	testutil.AssertEqual(t, "incoming source", in[0].From, storage.Identifier("loc-1"))
}

func TestGraph_WithinScope(t *testing.T) {
	g := buildTestGraph(t)

	tests := map[string]struct {
		id    storage.Identifier
		scope storage.Identifier
		want  bool
	}{
		"location within its area":    {"loc-1", "area-1", true},
		"hosted npc within the area":  {"npc-1", "area-1", true},
		"node within itself":          {"loc-1", "loc-1", true},
		"everything within the world": {"npc-1", "world", true},
		"area not within a location":  {"area-1", "loc-1", false},
		"unknown node":                {"ghost", "world", false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "within", g.WithinScope(tt.id, tt.scope), tt.want)
		})
	}
}

func TestGraph_AncestorOfType(t *testing.T) {
	g := buildTestGraph(t)

	area := g.AncestorOfType("npc-1", NodeTypeArea)
	if area == nil {
		t.Fatal("expected an area ancestor")
	}
	testutil.AssertEqual(t, "area id", area.Id, storage.Identifier("area-1"))

	if n := g.AncestorOfType("world", NodeTypeArea); n != nil {
		t.Errorf("expected no area ancestor for world, got %s", n.Id)
	}
}

func TestGraph_ChangeLog(t *testing.T) {
	g := buildTestGraph(t)
	g.Seal()

	if err := g.SetState("npc-1", "hp", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.SpawnNode(&Node{Id: "rat", Type: NodeTypeNpc, Name: "Rat"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.AddEdge(Edge{From: "loc-2", To: "rat", Type: EdgeTypeHosts}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changes := g.Changes()
	testutil.AssertEqual(t, "change count", len(changes), 3)
	testutil.AssertEqual(t, "first kind", changes[0].Kind, ChangeStateSet)
	testutil.AssertEqual(t, "first old", changes[0].Old, any(10))
	testutil.AssertEqual(t, "first new", changes[0].New, any(7))
	testutil.AssertEqual(t, "second kind", changes[1].Kind, ChangeNodeSpawned)
	testutil.AssertEqual(t, "third kind", changes[2].Kind, ChangeEdgeAdded)

	// Seq must be strictly increasing.
	if changes[1].Seq <= changes[0].Seq || changes[2].Seq <= changes[1].Seq {
		t.Error("expected strictly increasing sequence numbers")
	}

	g.CompactLog()
	testutil.AssertEqual(t, "after compact", len(g.Changes()), 0)
}

func TestGraph_RetireNodeDetachesEdges(t *testing.T) {
	g := buildTestGraph(t)
	g.Seal()

	if err := g.RetireNode("npc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Node("npc-1") != nil {
		t.Error("expected node to be gone")
	}
	testutil.AssertEqual(t, "hosts after retire", len(g.Neighbors("loc-1", EdgeTypeHosts)), 0)

	changes := g.Changes()
	// One edge removal plus the node removal.
	testutil.AssertEqual(t, "change count", len(changes), 2)
	testutil.AssertEqual(t, "last kind", changes[len(changes)-1].Kind, ChangeNodeRemoved)
}

func TestGraph_SetState_UnknownNode(t *testing.T) {
	g := buildTestGraph(t)
	err := g.SetState("ghost", "hp", 1)
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestNode_MaxFor(t *testing.T) {
	n := &Node{
		Id:         "npc",
		Type:       NodeTypeNpc,
		Properties: map[string]any{"max_hp": 20},
	}

	max, ok := n.MaxFor("hp")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "max", max, 20.0)

	_, ok = n.MaxFor("mana")
	testutil.AssertEqual(t, "unbounded", ok, false)
}
