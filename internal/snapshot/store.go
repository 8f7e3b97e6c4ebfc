package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no snapshot exists for a session.
var ErrNotFound = errors.New("snapshot not found")

// Store persists session snapshots keyed by session id.
type Store interface {
	Save(ctx context.Context, sessionId string, s *Snapshot) error
	Load(ctx context.Context, sessionId string) (*Snapshot, error)
	Delete(ctx context.Context, sessionId string) error
}

// FileStore keeps one JSON document per session under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) Save(_ context.Context, sessionId string, s *Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot %q: %w", sessionId, err)
	}
	return writeAtomic(fs.path(sessionId), data)
}

func (fs *FileStore) Load(_ context.Context, sessionId string) (*Snapshot, error) {
	data, err := os.ReadFile(fs.path(sessionId))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading snapshot %q: %w", sessionId, err)
	}

	return decodeTolerant(sessionId, data), nil
}

func (fs *FileStore) Delete(_ context.Context, sessionId string) error {
	err := os.Remove(fs.path(sessionId))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting snapshot %q: %w", sessionId, err)
	}
	return nil
}

func (fs *FileStore) path(sessionId string) string {
	// Session ids come from callers; strip separators so the store never
	// writes outside its directory.
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '.' {
			return '-'
		}
		return r
	}, sessionId)
	return filepath.Join(fs.dir, safe+".json")
}

// decodeTolerant decodes a stored document, falling back to an empty snapshot
// when the bytes are garbled. A corrupted snapshot must never keep a session
// from resuming; it resumes from the content-built state instead.
func decodeTolerant(sessionId string, data []byte) *Snapshot {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("discarding corrupted snapshot", "session", sessionId, "error", err)
		return &Snapshot{}
	}
	return &s
}

// writeAtomic writes via a temp file and rename so a crash mid-write never
// leaves a truncated snapshot behind.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %q: %w", path, err)
	}
	return nil
}
