package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/pixil98/go-story/internal/action"
	"github.com/pixil98/go-story/internal/content"
	"github.com/pixil98/go-story/internal/engine"
	"github.com/pixil98/go-story/internal/graph"
	"github.com/pixil98/go-story/internal/reward"
	"github.com/pixil98/go-story/internal/snapshot"
	"github.com/pixil98/go-story/internal/storage"
)

// Session is one running playthrough: its own graph built from content, its
// own engine over that graph, and a cumulative snapshot of everything that
// has diverged since the build. Sessions never share mutable state; the
// single-writer rule holds per session.
type Session struct {
	Id     string
	Graph  *graph.Graph
	Engine *engine.Engine

	// cumulative is the merged history of all captures since the session was
	// built. Persisting it whole keeps restores independent of how often the
	// change log was compacted.
	cumulative *snapshot.Snapshot

	// location is the node the player last entered. It rides in the snapshot
	// extensions rather than the graph: presence is a session fact, not
	// world state.
	location storage.Identifier
}

// presenceKey holds the player's location in snapshot extensions.
const presenceKey = "presence"

// New builds a fresh session from the content registry and seed.
func New(id string, reg *content.Registry, seed content.Seed, cfg engine.Config) (*Session, error) {
	g, err := reg.BuildGraph(seed)
	if err != nil {
		return nil, fmt.Errorf("building session %q: %w", id, err)
	}

	exec := action.NewExecutor(g, reward.NewLedger(g))
	eng, err := engine.New(g, exec, reg.Events.GetAll(), reg.Behaviors.GetAll(), cfg)
	if err != nil {
		return nil, fmt.Errorf("building session %q: %w", id, err)
	}

	return &Session{
		Id:         id,
		Graph:      g,
		Engine:     eng,
		cumulative: &snapshot.Snapshot{},
	}, nil
}

// Resume builds a session and replays its persisted snapshot, if one exists.
// A missing snapshot is simply a new session.
func Resume(ctx context.Context, id string, reg *content.Registry, seed content.Seed, cfg engine.Config, store snapshot.Store) (*Session, error) {
	s, err := New(id, reg, seed, cfg)
	if err != nil {
		return nil, err
	}

	saved, err := store.Load(ctx, id)
	if errors.Is(err, snapshot.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resuming session %q: %w", id, err)
	}

	snapshot.Restore(s.Graph, s.Engine, saved)
	s.cumulative = saved

	var loc string
	if ok, err := saved.Extensions.Get(presenceKey, &loc); err == nil && ok {
		s.location = storage.Identifier(loc)
	}
	return s, nil
}

// Tick advances the session by one round.
func (s *Session) Tick() *engine.TickResult {
	return s.Engine.Tick(engine.TickContext{})
}

// Enter reports a player arriving at a node.
func (s *Session) Enter(nodeId storage.Identifier) *engine.TickResult {
	s.location = nodeId
	return s.Engine.HandleEnter(nodeId)
}

// Exit reports a player leaving a node.
func (s *Session) Exit(nodeId storage.Identifier) *engine.TickResult {
	if s.location == nodeId {
		s.location = ""
	}
	return s.Engine.HandleExit(nodeId)
}

// Location is the node the player last entered, or empty when in transit.
func (s *Session) Location() storage.Identifier {
	return s.location
}

// Capture folds the change log into the cumulative snapshot and returns both
// the fresh delta and the merged document. The log is left intact; call
// Compact only after the document has been durably persisted.
func (s *Session) Capture() (delta, full *snapshot.Snapshot) {
	delta = snapshot.Capture(s.Graph, s.Engine)
	s.cumulative.Merge(delta)

	if s.location != "" {
		// Marshaling a string cannot fail.
		_ = s.cumulative.Extensions.Set(presenceKey, s.location.String())
	} else {
		s.cumulative.Extensions.Delete(presenceKey)
	}
	return delta, s.cumulative
}

// Compact discards change log entries already covered by the last Capture.
func (s *Session) Compact() {
	s.Graph.CompactLog()
}
