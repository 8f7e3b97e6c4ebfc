package graph

import (
	"time"

	"github.com/pixil98/go-story/internal/storage"
)

// NodeType is the closed set of world entity kinds.
type NodeType string

const (
	NodeTypeWorld    NodeType = "world"
	NodeTypeChapter  NodeType = "chapter"
	NodeTypeRegion   NodeType = "region"
	NodeTypeArea     NodeType = "area"
	NodeTypeLocation NodeType = "location"
	NodeTypeNpc      NodeType = "npc"
	NodeTypePlayer   NodeType = "player"
	NodeTypeItem     NodeType = "item"
	NodeTypeEvent    NodeType = "event"
	NodeTypeParty    NodeType = "party"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeWorld, NodeTypeChapter, NodeTypeRegion, NodeTypeArea,
		NodeTypeLocation, NodeTypeNpc, NodeTypePlayer, NodeTypeItem,
		NodeTypeEvent, NodeTypeParty:
		return true
	}
	return false
}

// Node is a single entity in the world graph. Nodes are owned exclusively by
// the Graph; callers look them up by id and must not retain pointers across
// engine calls.
type Node struct {
	Id         storage.Identifier `json:"id"`
	Type       NodeType           `json:"type"`
	Name       string             `json:"name"`
	Properties map[string]any     `json:"properties,omitempty"`
	State      map[string]any     `json:"state,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Property returns a static authored attribute. Properties are immutable
// after graph construction.
func (n *Node) Property(key string) (any, bool) {
	v, ok := n.Properties[key]
	return v, ok
}

// StateValue returns a runtime state value.
func (n *Node) StateValue(key string) (any, bool) {
	v, ok := n.State[key]
	return v, ok
}

// MaxFor returns the configured maximum for a bounded state key (hp and the
// like), read from the "max_<key>" property. The second return is false when
// no maximum is defined.
func (n *Node) MaxFor(key string) (float64, bool) {
	v, ok := n.Properties["max_"+key]
	if !ok {
		return 0, false
	}
	f, ok := toFloat64(v)
	return f, ok
}

// Clone returns a deep copy of the node. Used by the change log so spawn
// records are not aliased to live graph state.
func (n *Node) Clone() *Node {
	c := &Node{
		Id:        n.Id,
		Type:      n.Type,
		Name:      n.Name,
		CreatedAt: n.CreatedAt,
	}
	if n.Properties != nil {
		c.Properties = make(map[string]any, len(n.Properties))
		for k, v := range n.Properties {
			c.Properties[k] = v
		}
	}
	if n.State != nil {
		c.State = make(map[string]any, len(n.State))
		for k, v := range n.State {
			c.State[k] = v
		}
	}
	return c
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
