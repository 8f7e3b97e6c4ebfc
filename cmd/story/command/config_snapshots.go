package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/snapshot"
)

type SnapshotsConfig struct {
	// Backend selects where snapshots live: "file" or "postgres".
	Backend string `json:"backend"`
	Path    string `json:"path,omitempty"`
	Dsn     string `json:"dsn,omitempty"`
}

func (c *SnapshotsConfig) validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case "", "file":
		if c.Path == "" {
			el.Add(fmt.Errorf("path is required for the file backend"))
		}
	case "postgres":
		if c.Dsn == "" {
			el.Add(fmt.Errorf("dsn is required for the postgres backend"))
		}
	default:
		el.Add(fmt.Errorf("unknown backend %q", c.Backend))
	}

	return el.Err()
}

func (c *SnapshotsConfig) BuildStore(ctx context.Context) (snapshot.Store, error) {
	switch c.Backend {
	case "", "file":
		return snapshot.NewFileStore(c.Path)
	case "postgres":
		return snapshot.NewPostgresStore(ctx, c.Dsn)
	}
	return nil, fmt.Errorf("unknown backend %q", c.Backend)
}
