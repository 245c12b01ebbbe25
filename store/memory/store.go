// Package memory provides an in-memory checkpoint store for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/meridex/settle/store"
)

// Store keeps the latest checkpoint in memory.
type Store struct {
	mu     sync.RWMutex
	latest *store.Checkpoint
	saved  uint64
}

// compile-time interface check
var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// SaveCheckpoint replaces the held checkpoint. Older checkpoints are pruned
// immediately: only the latest survives.
func (s *Store) SaveCheckpoint(_ context.Context, cp *store.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *cp
	s.latest = &copied
	s.saved++
	return nil
}

// LatestCheckpoint returns the held checkpoint.
func (s *Store) LatestCheckpoint(_ context.Context) (*store.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, store.ErrNotFound
	}
	copied := *s.latest
	return &copied, nil
}

// SaveCount returns the number of SaveCheckpoint calls, for tests.
func (s *Store) SaveCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved
}

// Migrate is a no-op.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close(_ context.Context) error { return nil }
