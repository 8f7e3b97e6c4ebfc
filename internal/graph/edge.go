package graph

import "github.com/pixil98/go-story/internal/storage"

// EdgeType is the closed set of relation kinds between nodes.
type EdgeType string

const (
	EdgeTypeContains EdgeType = "contains" // spatial/narrative containment
	EdgeTypeGates    EdgeType = "gates"    // unlock dependency
	EdgeTypeHosts    EdgeType = "hosts"    // location hosts npc/item/event
	EdgeTypeRelates  EdgeType = "relates"  // social/narrative relation
	EdgeTypeMember   EdgeType = "member"   // party membership
	EdgeTypeAdjacent EdgeType = "adjacent" // travel connection
)

// Valid reports whether t is one of the known edge types.
func (t EdgeType) Valid() bool {
	switch t {
	case EdgeTypeContains, EdgeTypeGates, EdgeTypeHosts,
		EdgeTypeRelates, EdgeTypeMember, EdgeTypeAdjacent:
		return true
	}
	return false
}

// Edge is a typed directed relation between two node ids. Weight, when set,
// multiplies the propagation decay across this edge; zero means "use the
// default weight of 1".
type Edge struct {
	From   storage.Identifier `json:"from"`
	To     storage.Identifier `json:"to"`
	Type   EdgeType           `json:"type"`
	Weight float64            `json:"weight,omitempty"`
	Meta   map[string]string  `json:"meta,omitempty"`
}

// EffectiveWeight returns the propagation weight multiplier for this edge.
func (e Edge) EffectiveWeight() float64 {
	if e.Weight <= 0 {
		return 1
	}
	return e.Weight
}
