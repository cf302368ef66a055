package memory

import (
	"context"
	"sync"

	"perception/internal/domain/leaderboard"
	"perception/pkg/errors"
)

// SnapshotStore keeps the latest snapshot in process memory. It is the
// default store for single-replica deployments and for tests.
type SnapshotStore struct {
	mu       sync.RWMutex
	snapshot *leaderboard.Snapshot
}

// NewSnapshotStore creates an empty in-memory snapshot store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Save replaces the stored snapshot
func (s *SnapshotStore) Save(_ context.Context, snapshot *leaderboard.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	return nil
}

// Latest returns the stored snapshot, or errors.ErrNoSnapshot when empty
func (s *SnapshotStore) Latest(_ context.Context) (*leaderboard.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, errors.ErrNoSnapshot
	}
	return s.snapshot, nil
}
