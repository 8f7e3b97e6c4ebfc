package session

import (
	"context"

	"github.com/pixil98/go-log"
	"github.com/pixil98/go-story/internal/action"
	"github.com/pixil98/go-story/internal/engine"
	"github.com/pixil98/go-story/internal/messaging"
	"github.com/pixil98/go-story/internal/metrics"
	"github.com/pixil98/go-story/internal/snapshot"
	"github.com/pixil98/go-story/internal/storage"
)

// DeltaPublisher pushes per-session output to whoever is listening.
type DeltaPublisher interface {
	PublishDelta(sessionId string, s *snapshot.Snapshot) error
	PublishResult(sessionId string, r *engine.TickResult) error
}

// CommandSource supplies externally injected commands, drained once per tick.
type CommandSource interface {
	Drain() []messaging.Command
}

// Manager drives every registered session each tick: advance the engine,
// persist the merged snapshot, publish the delta, then compact the change
// log. Compaction only happens after a successful persist so a failed save
// keeps its history for the next attempt.
type Manager struct {
	registry *Registry
	store    snapshot.Store
	pub      DeltaPublisher
	commands CommandSource
}

func NewManager(registry *Registry, store snapshot.Store, pub DeltaPublisher, commands CommandSource) *Manager {
	return &Manager{
		registry: registry,
		store:    store,
		pub:      pub,
		commands: commands,
	}
}

// Tick runs one round across all sessions. Per-session failures are logged
// and skipped; one broken session must not stall the rest.
func (m *Manager) Tick(ctx context.Context) error {
	logger := log.GetLogger(ctx)

	if m.commands != nil {
		for _, cmd := range m.commands.Drain() {
			m.dispatch(ctx, cmd)
		}
	}

	for _, s := range m.registry.All() {
		res := s.Tick()
		if m.pub != nil {
			if err := m.pub.PublishResult(s.Id, res); err != nil {
				logger.Warnf("session %s: publishing tick result: %v", s.Id, err)
			}
		}

		delta, full := s.Capture()
		metrics.SnapshotsCaptured.Inc()

		if m.store != nil {
			if err := m.store.Save(ctx, s.Id, full); err != nil {
				logger.Warnf("session %s: persisting snapshot: %v", s.Id, err)
				continue
			}
		}
		s.Compact()

		if m.pub != nil && !delta.Empty() {
			if err := m.pub.PublishDelta(s.Id, delta); err != nil {
				logger.Warnf("session %s: publishing delta: %v", s.Id, err)
			}
		}
	}

	return nil
}

// dispatch applies one injected command to its session. Results are published
// immediately so clients see command effects without waiting for the tick.
func (m *Manager) dispatch(ctx context.Context, cmd messaging.Command) {
	logger := log.GetLogger(ctx)

	s := m.registry.Get(cmd.Session)
	if s == nil {
		logger.Warnf("command for unknown session %s dropped", cmd.Session)
		return
	}

	var res *engine.TickResult
	switch cmd.Verb {
	case "enter":
		res = s.Enter(storage.Identifier(cmd.Node))
	case "exit":
		res = s.Exit(storage.Identifier(cmd.Node))
	case "event":
		ev := engine.NewWorldEvent(
			storage.Identifier(cmd.Event),
			storage.Identifier(cmd.Node),
			action.Scope(cmd.Scope),
			s.Engine.Round(),
		)
		res = s.Engine.HandleEvent(ev)
	default:
		logger.Warnf("session %s: unknown command verb %q", cmd.Session, cmd.Verb)
		return
	}

	if m.pub != nil {
		if err := m.pub.PublishResult(s.Id, res); err != nil {
			logger.Warnf("session %s: publishing command result: %v", s.Id, err)
		}
	}
}
