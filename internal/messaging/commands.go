package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// CommandSubject is where clients inject session commands.
const CommandSubject = "commands"

// Command is one externally injected session command.
type Command struct {
	Session string `json:"session"`
	Verb    string `json:"verb"` // enter, exit, event
	Node    string `json:"node,omitempty"`
	Event   string `json:"event,omitempty"`
	Scope   string `json:"scope,omitempty"`
}

// CommandListener buffers inbound commands until the tick loop drains them.
// Sessions are single-writer, so commands are never applied from the NATS
// callback goroutine.
type CommandListener struct {
	server *NatsServer

	mu      sync.Mutex
	pending []Command
}

func NewCommandListener(server *NatsServer) *CommandListener {
	return &CommandListener{server: server}
}

func (l *CommandListener) Start(ctx context.Context) error {
	unsub, err := l.server.Subscribe(CommandSubject, l.enqueue)
	if err != nil {
		return err
	}
	defer unsub()

	<-ctx.Done()
	return nil
}

func (l *CommandListener) enqueue(data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		slog.Warn("dropping malformed command", "error", err)
		return
	}
	if cmd.Session == "" || cmd.Verb == "" {
		slog.Warn("dropping incomplete command", "session", cmd.Session, "verb", cmd.Verb)
		return
	}

	l.mu.Lock()
	l.pending = append(l.pending, cmd)
	l.mu.Unlock()
}

// Drain returns and clears the buffered commands.
func (l *CommandListener) Drain() []Command {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.pending
	l.pending = nil
	return out
}
