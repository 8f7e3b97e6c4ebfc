package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-story/internal/driver"
	"github.com/pixil98/go-story/internal/messaging"
	"github.com/pixil98/go-story/internal/session"
	"github.com/pixil98/go-story/internal/storage"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Content stores and cross-reference resolution
	registry, watched, err := cfg.Storage.BuildRegistry()
	if err != nil {
		return nil, fmt.Errorf("building content registry: %w", err)
	}

	// Nats server plus the session publisher and command listener
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	publisher := messaging.NewNatsPublisher(natsServer)
	commands := messaging.NewCommandListener(natsServer)

	// Snapshot persistence
	store, err := cfg.Snapshots.BuildStore(context.Background())
	if err != nil {
		return nil, fmt.Errorf("creating snapshot store: %w", err)
	}

	// Sessions, resumed from their snapshots where present
	sessions, err := cfg.Sessions.BuildSessions(context.Background(), registry, cfg.Engine.buildEngineConfig(), store)
	if err != nil {
		return nil, err
	}

	manager := session.NewManager(sessions, store, publisher, commands)

	var driverOpts []driver.StoryDriverOpt
	if d := cfg.tickLength(); d > 0 {
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	storyDriver := driver.NewStoryDriver([]driver.Manager{manager}, driverOpts...)

	workers := service.WorkerList{
		"nats":     natsServer,
		"commands": commands,
		"driver":   storyDriver,
	}
	if len(watched) > 0 {
		workers["watcher"] = storage.NewWatcher(watched...)
	}
	if ms := cfg.Metrics.buildServer(); ms != nil {
		workers["metrics"] = ms
	}

	return workers, nil
}
