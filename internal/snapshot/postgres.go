package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists snapshots as jsonb documents, one row per session.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	ps := &PostgresStore{pool: pool}
	if err := ps.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return ps, nil
}

func (ps *PostgresStore) ensureSchema(ctx context.Context) error {
	// IF NOT EXISTS keeps this idempotent across restarts.
	ddl := `
CREATE TABLE IF NOT EXISTS session_snapshots (
    session_id TEXT PRIMARY KEY,
    doc        JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
	if _, err := ps.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring snapshot schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Save(ctx context.Context, sessionId string, s *Snapshot) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling snapshot %q: %w", sessionId, err)
	}

	query := `
INSERT INTO session_snapshots (session_id, doc, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (session_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
`
	if _, err := ps.pool.Exec(ctx, query, sessionId, doc); err != nil {
		return fmt.Errorf("saving snapshot %q: %w", sessionId, err)
	}
	return nil
}

func (ps *PostgresStore) Load(ctx context.Context, sessionId string) (*Snapshot, error) {
	var doc []byte
	err := ps.pool.QueryRow(ctx,
		`SELECT doc FROM session_snapshots WHERE session_id = $1`,
		sessionId,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %q: %w", sessionId, err)
	}

	return decodeTolerant(sessionId, doc), nil
}

func (ps *PostgresStore) Delete(ctx context.Context, sessionId string) error {
	if _, err := ps.pool.Exec(ctx,
		`DELETE FROM session_snapshots WHERE session_id = $1`,
		sessionId,
	); err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", sessionId, err)
	}
	return nil
}

func (ps *PostgresStore) Close() {
	ps.pool.Close()
}
