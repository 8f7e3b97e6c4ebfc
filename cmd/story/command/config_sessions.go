package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/content"
	"github.com/pixil98/go-story/internal/engine"
	"github.com/pixil98/go-story/internal/session"
	"github.com/pixil98/go-story/internal/snapshot"
	"github.com/pixil98/go-story/internal/storage"
)

type SessionsConfig struct {
	Seeds []SeedConfig `json:"seeds"`
}

type SeedConfig struct {
	Id          string         `json:"id"`
	Player      string         `json:"player"`
	PlayerName  string         `json:"player_name"`
	Start       string         `json:"start"`
	PlayerState map[string]any `json:"player_state,omitempty"`
	Party       []string       `json:"party,omitempty"`
}

func (c *SessionsConfig) validate() error {
	el := errors.NewErrorList()

	seen := make(map[string]bool, len(c.Seeds))
	for i, s := range c.Seeds {
		if s.Id == "" {
			el.Add(fmt.Errorf("seed %d: id is required", i))
		} else if seen[s.Id] {
			el.Add(fmt.Errorf("seed %d: duplicate session id %q", i, s.Id))
		}
		seen[s.Id] = true

		if s.Player == "" {
			el.Add(fmt.Errorf("seed %d: player is required", i))
		}
		if s.Start == "" {
			el.Add(fmt.Errorf("seed %d: start is required", i))
		}
	}

	return el.Err()
}

// BuildSessions resumes every configured session, falling back to a fresh
// build when no snapshot exists yet.
func (c *SessionsConfig) BuildSessions(ctx context.Context, reg *content.Registry, cfg engine.Config, store snapshot.Store) (*session.Registry, error) {
	sessions := session.NewRegistry()

	for _, sc := range c.Seeds {
		seed := content.Seed{
			PlayerId:    storage.Identifier(sc.Player),
			PlayerName:  sc.PlayerName,
			Start:       storage.Identifier(sc.Start),
			PlayerState: sc.PlayerState,
		}
		for _, p := range sc.Party {
			seed.Party = append(seed.Party, storage.Identifier(p))
		}

		s, err := session.Resume(ctx, sc.Id, reg, seed, cfg, store)
		if err != nil {
			return nil, fmt.Errorf("building session %q: %w", sc.Id, err)
		}
		if err := sessions.Add(s); err != nil {
			return nil, err
		}
	}

	return sessions, nil
}
