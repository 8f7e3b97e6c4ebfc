package reward

import (
	"fmt"

	"github.com/pixil98/go-story/internal/action"
	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/storage"
)

// MaxLevel is the highest level a character can reach.
const MaxLevel = 20

// levelTable holds the cumulative XP required to reach each level.
// Index 0 = level 1 (0 XP), index 1 = level 2 (300 XP), etc.
var levelTable = [MaxLevel]int{
	0,      // Level 1
	300,    // Level 2
	900,    // Level 3
	2700,   // Level 4
	6500,   // Level 5
	14000,  // Level 6
	23000,  // Level 7
	34000,  // Level 8
	48000,  // Level 9
	64000,  // Level 10
	85000,  // Level 11
	100000, // Level 12
	120000, // Level 13
	140000, // Level 14
	165000, // Level 15
	195000, // Level 16
	225000, // Level 17
	265000, // Level 18
	305000, // Level 19
	355000, // Level 20
}

// ExpForLevel returns the cumulative XP required to reach the given level.
func ExpForLevel(level int) int {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		return levelTable[MaxLevel-1]
	}
	return levelTable[level-1]
}

// LevelFor returns the level a character with the given cumulative XP holds.
func LevelFor(experience int) int {
	level := 1
	for i := 1; i < MaxLevel; i++ {
		if experience < levelTable[i] {
			break
		}
		level = i + 1
	}
	return level
}

// ExpToNextLevel returns the remaining XP needed to reach the next level.
func ExpToNextLevel(level, experience int) int {
	if level >= MaxLevel {
		return 0
	}
	remaining := ExpForLevel(level+1) - experience
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Ledger grants rewards by writing them into recipient node state through
// the graph's logged mutation path, so every grant lands in the change log
// and survives snapshot round-trips.
type Ledger struct {
	graph *graph.Graph
}

var _ action.RewardSink = (*Ledger)(nil)

func NewLedger(g *graph.Graph) *Ledger {
	return &Ledger{graph: g}
}

// AddItem stacks qty of an item onto the recipient's inventory.
func (l *Ledger) AddItem(recipient, item storage.Identifier, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("granting %q to %q: quantity must be positive", item, recipient)
	}
	n := l.graph.Node(recipient)
	if n == nil {
		return fmt.Errorf("granting %q to %q: %w", item, recipient, graph.ErrNodeNotFound)
	}

	inv := readInventory(n)
	inv[item.String()] += qty
	return l.graph.SetState(recipient, "inventory", inv)
}

// AddExperience adds XP to the recipient and recomputes its level.
func (l *Ledger) AddExperience(recipient storage.Identifier, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("granting experience to %q: amount must be positive", recipient)
	}
	n := l.graph.Node(recipient)
	if n == nil {
		return fmt.Errorf("granting experience to %q: %w", recipient, graph.ErrNodeNotFound)
	}

	xp := readInt(n, "experience") + amount
	if err := l.graph.SetState(recipient, "experience", xp); err != nil {
		return err
	}

	level := LevelFor(xp)
	if level != readInt(n, "level") {
		return l.graph.SetState(recipient, "level", level)
	}
	return nil
}

// readInventory coerces the stored inventory back into counts. Values that
// crossed a JSON snapshot come back as map[string]any with float64 counts.
func readInventory(n *graph.Node) map[string]int {
	inv := make(map[string]int)
	v, ok := n.StateValue("inventory")
	if !ok {
		return inv
	}
	switch m := v.(type) {
	case map[string]int:
		for k, c := range m {
			inv[k] = c
		}
	case map[string]any:
		for k, c := range m {
			if f, isNum := c.(float64); isNum {
				inv[k] = int(f)
			} else if i, isInt := c.(int); isInt {
				inv[k] = i
			}
		}
	}
	return inv
}

func readInt(n *graph.Node, key string) int {
	v, ok := n.StateValue(key)
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	}
	return 0
}
