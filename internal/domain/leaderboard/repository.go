package leaderboard

import (
	"context"
)

// SnapshotStore persists the latest leaderboard snapshot.
// Implementations: process-local memory (default) and Redis (shared across
// replicas, TTL-bound).
type SnapshotStore interface {
	// Save replaces the stored snapshot
	Save(ctx context.Context, snapshot *Snapshot) error

	// Latest returns the most recent snapshot, or errors.ErrNoSnapshot
	Latest(ctx context.Context) (*Snapshot, error)
}
