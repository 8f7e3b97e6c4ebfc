package storage

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/pixil98/go-log"
)

// Reloader is anything that can re-read its records from disk.
type Reloader interface {
	Reload() error
	Path() string
}

// Watcher reloads content stores when their asset files change on disk. A
// reload only affects sessions built afterwards; sealed graphs keep the
// definitions they were constructed from.
type Watcher struct {
	stores []Reloader
}

func NewWatcher(stores ...Reloader) *Watcher {
	return &Watcher{stores: stores}
}

// Start runs until the context is cancelled, reloading any store whose
// directory sees a write or create event. A failed reload keeps the previous
// records and is logged, never fatal.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating content watcher: %w", err)
	}
	defer fw.Close()

	byPath := make(map[string]Reloader, len(w.stores))
	for _, st := range w.stores {
		if err := fw.Add(st.Path()); err != nil {
			return fmt.Errorf("watching %s: %w", st.Path(), err)
		}
		byPath[st.Path()] = st
	}

	logger := log.GetLogger(ctx)
	logger.Infof("content watcher running on %d directories", len(w.stores))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			for path, st := range byPath {
				if len(ev.Name) < len(path) || ev.Name[:len(path)] != path {
					continue
				}
				if err := st.Reload(); err != nil {
					logger.Warnf("content reload skipped for %s: %v", path, err)
					continue
				}
				logger.Infof("content reloaded from %s", path)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("content watcher: %v", err)
		}
	}
}
