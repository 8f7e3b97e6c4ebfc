package condition

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

// fakeWorld implements World over plain maps.
type fakeWorld struct {
	nodes     map[string]map[string]any
	relations map[string]bool // "from|rel|to"
	statuses  map[string]string
	completed map[string]int
	round     int
}

func (w *fakeWorld) NodeExists(id string) bool {
	_, ok := w.nodes[id]
	return ok
}

func (w *fakeWorld) NodeState(id, key string) (any, bool) {
	st, ok := w.nodes[id]
	if !ok {
		return nil, false
	}
	v, ok := st[key]
	return v, ok
}

func (w *fakeWorld) HasRelation(from, relation, to string) bool {
	return w.relations[from+"|"+relation+"|"+to]
}

func (w *fakeWorld) EventStatus(id string) (string, bool) {
	st, ok := w.statuses[id]
	return st, ok
}

func (w *fakeWorld) EventCompletedRound(id string) (int, bool) {
	r, ok := w.completed[id]
	return r, ok
}

func (w *fakeWorld) Round() int {
	return w.round
}

func testWorld() *fakeWorld {
	return &fakeWorld{
		nodes: map[string]map[string]any{
			"npc-1": {"hp": 7, "trust": 3.0, "met": true},
			"loc-1": {},
		},
		relations: map[string]bool{
			"npc-1|relates|player-1": true,
		},
		statuses:  map[string]string{"ev-1": "active"},
		completed: map[string]int{"ev-done": 4},
		round:     10,
	}
}

func TestEvaluate_Leaves(t *testing.T) {
	w := testWorld()

	tests := map[string]struct {
		cond Condition
		want bool
	}{
		"state equals int":       {Condition{Kind: KindStateEquals, Node: "npc-1", Key: "hp", Value: 7}, true},
		"state equals coerced":   {Condition{Kind: KindStateEquals, Node: "npc-1", Key: "trust", Value: 3}, true},
		"state equals mismatch":  {Condition{Kind: KindStateEquals, Node: "npc-1", Key: "hp", Value: 8}, false},
		"state above":            {Condition{Kind: KindStateAbove, Node: "npc-1", Key: "hp", Value: 5}, true},
		"state above equal":      {Condition{Kind: KindStateAbove, Node: "npc-1", Key: "hp", Value: 7}, false},
		"state below":            {Condition{Kind: KindStateBelow, Node: "npc-1", Key: "hp", Value: 10}, true},
		"counter at least equal": {Condition{Kind: KindCounterAtLeast, Node: "npc-1", Key: "hp", Value: 7}, true},
		"node exists":            {Condition{Kind: KindNodeExists, Node: "loc-1"}, true},
		"node missing":           {Condition{Kind: KindNodeExists, Node: "ghost"}, false},
		"relation exists":        {Condition{Kind: KindRelationExists, Node: "npc-1", Relation: "relates", Target: "player-1"}, true},
		"relation missing":       {Condition{Kind: KindRelationExists, Node: "npc-1", Relation: "relates", Target: "npc-2"}, false},
		"event status match":     {Condition{Kind: KindEventStatus, Event: "ev-1", Status: "active"}, true},
		"event status mismatch":  {Condition{Kind: KindEventStatus, Event: "ev-1", Status: "completed"}, false},
		"time elapsed met":       {Condition{Kind: KindTimeElapsed, Event: "ev-done", Rounds: 6}, true},
		"time elapsed short":     {Condition{Kind: KindTimeElapsed, Event: "ev-done", Rounds: 7}, false},
		"time elapsed pending":   {Condition{Kind: KindTimeElapsed, Event: "ev-1", Rounds: 1}, false},
		"flag set":               {Condition{Kind: KindFlagSet, Node: "npc-1", Key: "met"}, true},
		"flag unset":             {Condition{Kind: KindFlagSet, Node: "npc-1", Key: "betrayed"}, false},
		"event completed":        {Condition{Kind: KindEventCompleted, Event: "ev-done"}, true},
		"event not completed":    {Condition{Kind: KindEventCompleted, Event: "ev-1"}, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "result", Evaluate(Leaf(tt.cond), w), tt.want)
		})
	}
}

func TestEvaluate_MissingDataFailsClosed(t *testing.T) {
	w := testWorld()

	tests := map[string]Condition{
		"unknown node":     {Kind: KindStateEquals, Node: "ghost", Key: "hp", Value: 1},
		"unknown key":      {Kind: KindStateAbove, Node: "npc-1", Key: "mana", Value: 1},
		"unknown event":    {Kind: KindEventStatus, Event: "ghost", Status: "active"},
		"non numeric":      {Kind: KindStateAbove, Node: "npc-1", Key: "met", Value: 1},
		"unknown kind":     {Kind: "teleport"},
	}

	for name, cond := range tests {
		t.Run(name, func(t *testing.T) {
			if Evaluate(Leaf(cond), w) {
				t.Error("expected false for missing data")
			}
		})
	}
}

func TestEvaluate_Groups(t *testing.T) {
	w := testWorld()
	hpAbove := Leaf(Condition{Kind: KindStateAbove, Node: "npc-1", Key: "hp", Value: 5})
	hpBelow := Leaf(Condition{Kind: KindStateBelow, Node: "npc-1", Key: "hp", Value: 5})

	testutil.AssertEqual(t, "all true", Evaluate(AllOf(hpAbove, hpAbove), w), true)
	testutil.AssertEqual(t, "all short-circuits", Evaluate(AllOf(hpBelow, hpAbove), w), false)
	testutil.AssertEqual(t, "any", Evaluate(AnyOf(hpBelow, hpAbove), w), true)
	testutil.AssertEqual(t, "not", Evaluate(Negate(hpBelow), w), true)
	testutil.AssertEqual(t, "nested", Evaluate(AllOf(hpAbove, Negate(hpBelow)), w), true)
	testutil.AssertEqual(t, "empty group", Evaluate(&Group{}, w), false)
}

func TestCondition_Validate(t *testing.T) {
	tests := map[string]struct {
		cond    Condition
		wantErr bool
	}{
		"valid state equals":    {Condition{Kind: KindStateEquals, Node: "n", Key: "k", Value: 1}, false},
		"state equals no node":  {Condition{Kind: KindStateEquals, Key: "k", Value: 1}, true},
		"valid relation":        {Condition{Kind: KindRelationExists, Node: "a", Relation: "relates", Target: "b"}, false},
		"relation no target":    {Condition{Kind: KindRelationExists, Node: "a", Relation: "relates"}, true},
		"valid event status":    {Condition{Kind: KindEventStatus, Event: "e", Status: "active"}, false},
		"unknown kind rejected": {Condition{Kind: "teleport"}, true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cond.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
