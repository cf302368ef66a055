package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perception/internal/domain/leaderboard"
	"perception/pkg/errors"
)

func TestSnapshotStoreEmpty(t *testing.T) {
	store := NewSnapshotStore()

	_, err := store.Latest(context.Background())
	assert.ErrorIs(t, err, errors.ErrNoSnapshot)
}

func TestSnapshotStoreSaveAndLatest(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	first := &leaderboard.Snapshot{BuiltAt: time.Now().Add(-time.Hour)}
	second := &leaderboard.Snapshot{BuiltAt: time.Now()}

	require.NoError(t, store.Save(ctx, first))
	got, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	// Save replaces, never appends
	require.NoError(t, store.Save(ctx, second))
	got, err = store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestSnapshotStoreConcurrentAccess(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = store.Save(ctx, &leaderboard.Snapshot{BuiltAt: time.Now()})
		}
	}()

	for i := 0; i < 100; i++ {
		_, _ = store.Latest(ctx)
	}
	<-done
}
