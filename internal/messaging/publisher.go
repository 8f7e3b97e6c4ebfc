package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/pixil98/go-story/internal/engine"
	"github.com/pixil98/go-story/internal/snapshot"
)

// NatsPublisher publishes per-session output on session-scoped subjects.
// Clients subscribe to "session-<id>.>" to follow one playthrough.
type NatsPublisher struct {
	server *NatsServer
}

// NewNatsPublisher wraps a NatsServer for session-scoped delivery.
func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{server: server}
}

// PublishDelta sends the snapshot delta captured after a tick.
func (p *NatsPublisher) PublishDelta(sessionId string, s *snapshot.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling delta for session %s: %w", sessionId, err)
	}
	return p.server.Publish(fmt.Sprintf("session-%s.delta", sessionId), data)
}

// PublishResult sends what the tick did: fired behaviors, transitions, hints.
func (p *NatsPublisher) PublishResult(sessionId string, r *engine.TickResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling tick result for session %s: %w", sessionId, err)
	}
	return p.server.Publish(fmt.Sprintf("session-%s.tick", sessionId), data)
}
