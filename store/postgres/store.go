// Package postgres implements the checkpoint store on PostgreSQL via Grove
// ORM. Checkpoints live in a single table with the flattened state carried
// as JSONB payloads.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/meridex/settle/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB

	// Keep retains at most this many checkpoints; older ones are pruned on
	// save. Zero keeps everything.
	Keep uint64
}

// New creates a PostgreSQL checkpoint store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pg:   pgdriver.Unwrap(db),
		Keep: 16,
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// SaveCheckpoint writes cp and prunes checkpoints beyond the retention
// window.
func (s *Store) SaveCheckpoint(ctx context.Context, cp *store.Checkpoint) error {
	m, err := toCheckpointModel(cp)
	if err != nil {
		return err
	}
	if _, err := s.pg.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("settle/postgres: save checkpoint: %w", err)
	}

	if s.Keep > 0 && cp.Sequence > s.Keep {
		cutoff := cp.Sequence - s.Keep
		_, err := s.pg.NewDelete((*checkpointModel)(nil)).
			Where("sequence < $1", cutoff).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("settle/postgres: prune checkpoints: %w", err)
		}
	}
	return nil
}

// LatestCheckpoint returns the highest-sequence checkpoint.
func (s *Store) LatestCheckpoint(ctx context.Context) (*store.Checkpoint, error) {
	m := new(checkpointModel)
	err := s.pg.NewSelect(m).
		OrderExpr("sequence DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("settle/postgres: latest checkpoint: %w", err)
	}
	return fromCheckpointModel(m)
}

// Migrate creates the required tables using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("settle/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("settle/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// isNoRows checks if an error wraps sql.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
