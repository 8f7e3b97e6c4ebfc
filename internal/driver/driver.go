package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = time.Second * 2
)

// Manager is anything advanced once per tick.
type Manager interface {
	Tick(context.Context) error
}

// StoryDriver is the heartbeat of the service: it advances every manager at
// a fixed cadence until the context is canceled. All world mutation happens
// downstream of this loop, which is what keeps sessions single-writer.
type StoryDriver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewStoryDriver(managers []Manager, opts ...StoryDriverOpt) *StoryDriver {
	d := &StoryDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *StoryDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *StoryDriver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
