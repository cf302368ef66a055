package leaderboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perception/internal/adapters/config"
	"perception/internal/domain/feed"
	"perception/internal/repository/memory"
	"perception/pkg/errors"
)

// stubSource returns canned records or a canned error
type stubSource struct {
	records []feed.Record
	err     error
	loads   int
}

func (s *stubSource) Load(_ context.Context, _ feed.Window) ([]feed.Record, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func newTestService(source feed.Source) (*Service, *memory.SnapshotStore) {
	store := memory.NewSnapshotStore()
	svc := NewService(source, store,
		config.FeedConfig{LookbackDays: 1},
		config.LeaderboardConfig{MinMentions: 1},
	)
	return svc, store
}

func TestServiceRebuild(t *testing.T) {
	source := &stubSource{records: []feed.Record{
		{Outlet: "X", URL: "https://x.com/alice", Sentiment: feed.SentimentPositive},
		{Outlet: "X", URL: "https://x.com/alice", Sentiment: feed.SentimentPositive},
		{Outlet: "X", URL: "https://x.com/bob", Sentiment: feed.SentimentNegative},
		{Outlet: "Reddit", URL: "https://x.com/carol", Sentiment: feed.SentimentPositive},
	}}
	svc, store := newTestService(source)

	snapshot, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, snapshot.RecordsFetched)
	assert.Equal(t, 3, snapshot.RecordsMatched)
	assert.Equal(t, 1, snapshot.Bulls.Total)
	assert.Equal(t, 1, snapshot.Bears.Total)
	assert.Equal(t, "alice", snapshot.Bulls.Entries[0].Handle)
	assert.Equal(t, "bob", snapshot.Bears.Entries[0].Handle)

	stored, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snapshot, stored)
}

func TestServiceRebuildKeepsPreviousSnapshotOnFailure(t *testing.T) {
	source := &stubSource{records: []feed.Record{
		{Outlet: "X", URL: "https://x.com/alice", Sentiment: feed.SentimentPositive},
	}}
	svc, store := newTestService(source)

	first, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	source.err = errors.Wrap(errors.ErrFeedUnavailable, "page 7")

	_, err = svc.Rebuild(context.Background())
	assert.ErrorIs(t, err, errors.ErrFeedUnavailable)

	// The failed rebuild must not disturb the stored snapshot
	stored, err := store.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, stored)
}

func TestServiceRebuildEmptyWindow(t *testing.T) {
	svc, _ := newTestService(&stubSource{})

	snapshot, err := svc.Rebuild(context.Background())
	require.NoError(t, err)

	assert.Zero(t, snapshot.RecordsFetched)
	assert.Zero(t, snapshot.Bulls.Total)
	assert.Zero(t, snapshot.Bears.Total)
}

func TestServiceLatestBuildsOnce(t *testing.T) {
	source := &stubSource{records: []feed.Record{
		{Outlet: "X", URL: "https://x.com/alice", Sentiment: feed.SentimentPositive},
	}}
	svc, _ := newTestService(source)

	first, err := svc.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, source.loads)

	// Second call serves the stored snapshot without reloading the feed
	second, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.loads)
	assert.Equal(t, first, second)
}
