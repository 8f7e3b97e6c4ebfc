package graph

import "github.com/pixil98/go-story/internal/storage"

// ChangeKind discriminates change log entries.
type ChangeKind string

const (
	ChangeStateSet    ChangeKind = "state_set"
	ChangeNodeSpawned ChangeKind = "node_spawned"
	ChangeNodeRemoved ChangeKind = "node_removed"
	ChangeEdgeAdded   ChangeKind = "edge_added"
	ChangeEdgeRemoved ChangeKind = "edge_removed"
)

// ChangeRecord is one entry in the graph's append-only mutation log. Seq is
// monotonically increasing within a session; the snapshot subsystem folds the
// log into a delta and the caller compacts it after a successful persist.
type ChangeRecord struct {
	Seq    uint64
	Kind   ChangeKind
	NodeId storage.Identifier
	Key    string
	Old    any
	New    any
	Node   *Node // set for node spawn/remove
	Edge   *Edge // set for edge add/remove
}
