package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisclient "perception/internal/adapters/redis"
	"perception/internal/domain/leaderboard"
	"perception/pkg/errors"
)

const snapshotKey = "leaderboard:snapshot"

// SnapshotStore persists the latest snapshot in Redis so every replica
// serves the same board. Snapshots expire after the configured TTL; an
// expired snapshot reads as errors.ErrNoSnapshot, which triggers a rebuild.
type SnapshotStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewSnapshotStore creates a Redis-backed snapshot store
func NewSnapshotStore(client *redisclient.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		ttl:    ttl,
	}
}

// Save replaces the stored snapshot
func (s *SnapshotStore) Save(ctx context.Context, snapshot *leaderboard.Snapshot) error {
	if err := s.client.Set(ctx, snapshotKey, snapshot, s.ttl); err != nil {
		return errors.Wrap(err, "save snapshot to redis")
	}
	return nil
}

// Latest returns the stored snapshot, or errors.ErrNoSnapshot when the key
// is missing or expired
func (s *SnapshotStore) Latest(ctx context.Context) (*leaderboard.Snapshot, error) {
	var snapshot leaderboard.Snapshot
	if err := s.client.Get(ctx, snapshotKey, &snapshot); err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, errors.ErrNoSnapshot
		}
		return nil, errors.Wrap(err, "load snapshot from redis")
	}
	return &snapshot, nil
}
