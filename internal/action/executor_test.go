package action

import (
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/storage"
)

type fakeRewards struct {
	items map[string]int
	xp    map[string]int
}

func newFakeRewards() *fakeRewards {
	return &fakeRewards{items: map[string]int{}, xp: map[string]int{}}
}

func (r *fakeRewards) AddItem(recipient, item storage.Identifier, qty int) error {
	r.items[recipient.String()+"|"+item.String()] += qty
	return nil
}

func (r *fakeRewards) AddExperience(recipient storage.Identifier, amount int) error {
	r.xp[recipient.String()] += amount
	return nil
}

func executorGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()

	nodes := []*graph.Node{
		{Id: "loc-1", Type: graph.NodeTypeLocation, Name: "Pier"},
		{
			Id:         "npc-1",
			Type:       graph.NodeTypeNpc,
			Name:       "Harbormaster",
			Properties: map[string]any{"max_hp": 10.0},
			State:      map[string]any{"hp": 8},
		},
		{Id: "player-1", Type: graph.NodeTypePlayer, Name: "Wren"},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("adding node %s: %v", n.Id, err)
		}
	}
	if err := g.AddEdge(graph.Edge{From: "loc-1", To: "npc-1", Type: graph.EdgeTypeHosts}); err != nil {
		t.Fatalf("adding edge: %v", err)
	}

	g.Seal()
	return g
}

func TestExecutor_SetState_Clamped(t *testing.T) {
	g := executorGraph(t)
	x := NewExecutor(g, nil)

	res := x.Execute([]Action{
		{Kind: KindSetState, Node: "npc-1", Key: "hp", Value: 99},
	}, Context{Source: "loc-1", Round: 1})

	testutil.AssertEqual(t, "executed", res.Executed, 1)
	v, _ := g.Node("npc-1").StateValue("hp")
	testutil.AssertEqual(t, "clamped to max", v, any(10.0))
}

func TestExecutor_AdjustState(t *testing.T) {
	g := executorGraph(t)
	x := NewExecutor(g, nil)

	tests := map[string]struct {
		delta float64
		want  float64
	}{
		"plain adjustment":     {-3, 5},
		"clamped below at zero": {-50, 0},
		"clamped above at max":  {50, 10},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if err := g.SetState("npc-1", "hp", 8); err != nil {
				t.Fatalf("resetting hp: %v", err)
			}
			res := x.Execute([]Action{
				{Kind: KindAdjustState, Node: "npc-1", Key: "hp", Delta: tt.delta},
			}, Context{})
			testutil.AssertEqual(t, "executed", res.Executed, 1)
			v, _ := g.Node("npc-1").StateValue("hp")
			testutil.AssertEqual(t, "value", v, any(tt.want))
		})
	}
}

func TestExecutor_FailureIsolation(t *testing.T) {
	g := executorGraph(t)
	x := NewExecutor(g, nil)

	res := x.Execute([]Action{
		{Kind: KindSetState, Node: "ghost", Key: "hp", Value: 1}, // fails
		{Kind: KindSetState, Node: "npc-1", Key: "hp", Value: 3}, // still runs
	}, Context{})

	testutil.AssertEqual(t, "executed", res.Executed, 1)
	testutil.AssertEqual(t, "failure count", len(res.Failures), 1)
	testutil.AssertEqual(t, "failure index", res.Failures[0].Index, 0)
	testutil.AssertEqual(t, "failure kind", res.Failures[0].Kind, KindSetState)

	v, _ := g.Node("npc-1").StateValue("hp")
	testutil.AssertEqual(t, "second action applied", v, any(3.0))
}

func TestExecutor_EmitAndUnlockReported(t *testing.T) {
	g := executorGraph(t)
	x := NewExecutor(g, nil)

	res := x.Execute([]Action{
		{Kind: KindEmitEvent, Event: "ev-storm", Scope: ScopeArea},
		{Kind: KindEmitEvent, Event: "ev-quiet"}, // scope defaults to local
		{Kind: KindUnlockEvent, Event: "ev-gate"},
	}, Context{Source: "loc-1"})

	testutil.AssertEqual(t, "emitted count", len(res.Emitted), 2)
	testutil.AssertEqual(t, "emitted event", res.Emitted[0].Event, "ev-storm")
	testutil.AssertEqual(t, "emitted origin", res.Emitted[0].Origin, storage.Identifier("loc-1"))
	testutil.AssertEqual(t, "emitted scope", res.Emitted[0].Scope, ScopeArea)
	testutil.AssertEqual(t, "default scope", res.Emitted[1].Scope, ScopeLocal)
	testutil.AssertEqual(t, "unlocked", res.Unlocked, []string{"ev-gate"})
}

func TestExecutor_SpawnAndRemove(t *testing.T) {
	g := executorGraph(t)
	x := NewExecutor(g, nil)

	res := x.Execute([]Action{
		{Kind: KindSpawnNode, Node: "rat-1", NodeType: "npc", Name: "Rat", At: "loc-1"},
	}, Context{})
	testutil.AssertEqual(t, "spawned", res.Spawned, []storage.Identifier{"rat-1"})
	if g.Node("rat-1") == nil {
		t.Fatal("expected spawned node in graph")
	}
	if !g.HasEdge("loc-1", "rat-1", graph.EdgeTypeHosts) {
		t.Error("expected hosts edge to spawned node")
	}

	res = x.Execute([]Action{
		{Kind: KindRemoveNode, Node: "rat-1"},
	}, Context{})
	testutil.AssertEqual(t, "removed", res.Removed, []storage.Identifier{"rat-1"})
	if g.Node("rat-1") != nil {
		t.Error("expected node to be gone")
	}
}

func TestExecutor_SpawnInvalidType(t *testing.T) {
	g := executorGraph(t)
	x := NewExecutor(g, nil)

	res := x.Execute([]Action{
		{Kind: KindSpawnNode, Node: "x", NodeType: "dragon-rider"},
	}, Context{})
	testutil.AssertEqual(t, "failures", len(res.Failures), 1)
}

func TestExecutor_GrantReward(t *testing.T) {
	g := executorGraph(t)
	rewards := newFakeRewards()
	x := NewExecutor(g, rewards)

	res := x.Execute([]Action{
		{Kind: KindGrantReward, Node: "player-1", Items: []string{"rusty-key", "rusty-key"}, Experience: 50},
	}, Context{})

	testutil.AssertEqual(t, "executed", res.Executed, 1)
	testutil.AssertEqual(t, "items", rewards.items["player-1|rusty-key"], 2)
	testutil.AssertEqual(t, "experience", rewards.xp["player-1"], 50)
}

func TestExecutor_GrantRewardWithoutSink(t *testing.T) {
	g := executorGraph(t)
	x := NewExecutor(g, nil)

	res := x.Execute([]Action{
		{Kind: KindGrantReward, Node: "player-1", Experience: 10},
	}, Context{})
	testutil.AssertEqual(t, "failures", len(res.Failures), 1)
}

func TestExecutor_NarrativeHint(t *testing.T) {
	g := executorGraph(t)
	x := NewExecutor(g, nil)

	res := x.Execute([]Action{
		{Kind: KindNarrativeHint, Node: "npc-1", Hint: "{{.Name}} eyes you warily."},
	}, Context{Source: "loc-1", Round: 3})

	testutil.AssertEqual(t, "hint count", len(res.Hints), 1)
	testutil.AssertEqual(t, "hint", res.Hints[0], "Harbormaster eyes you warily.")
}
