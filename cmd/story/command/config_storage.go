package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/content"
	"github.com/pixil98/go-story/internal/storage"
)

type StorageConfig struct {
	Chapters   AssetConfig[*content.Chapter]   `json:"chapters"`
	Areas      AssetConfig[*content.Area]      `json:"areas"`
	Locations  AssetConfig[*content.Location]  `json:"locations"`
	Characters AssetConfig[*content.Character] `json:"characters"`
	Items      AssetConfig[*content.Item]      `json:"items"`
	Events     AssetConfig[*content.Event]     `json:"events"`
	Behaviors  AssetConfig[*content.Behavior]  `json:"behaviors"`

	// Watch enables hot-reload of asset directories. Reloads only affect
	// sessions built afterwards.
	Watch bool `json:"watch,omitempty"`
}

// BuildRegistry loads every content store and resolves cross-references.
func (c *StorageConfig) BuildRegistry() (*content.Registry, []storage.Reloader, error) {
	chapters, err := c.Chapters.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating chapter store: %w", err)
	}
	areas, err := c.Areas.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating area store: %w", err)
	}
	locations, err := c.Locations.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating location store: %w", err)
	}
	characters, err := c.Characters.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating character store: %w", err)
	}
	items, err := c.Items.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating item store: %w", err)
	}
	events, err := c.Events.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating event store: %w", err)
	}
	behaviors, err := c.Behaviors.BuildFileStore()
	if err != nil {
		return nil, nil, fmt.Errorf("creating behavior store: %w", err)
	}

	reg := &content.Registry{
		Chapters:   chapters,
		Areas:      areas,
		Locations:  locations,
		Characters: characters,
		Items:      items,
		Events:     events,
		Behaviors:  behaviors,
	}

	if err := reg.Resolve(); err != nil {
		return nil, nil, fmt.Errorf("resolving references: %w", err)
	}

	var watched []storage.Reloader
	if c.Watch {
		watched = []storage.Reloader{
			chapters, areas, locations, characters, items, events, behaviors,
		}
	}

	return reg, watched, nil
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Chapters.Validate("chapters"))
	el.Add(c.Areas.Validate("areas"))
	el.Add(c.Locations.Validate("locations"))
	el.Add(c.Characters.Validate("characters"))
	el.Add(c.Items.Validate("items"))
	el.Add(c.Events.Validate("events"))
	el.Add(c.Behaviors.Validate("behaviors"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
