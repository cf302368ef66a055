package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perception/internal/adapters/config"
	"perception/internal/domain/feed"
	"perception/internal/repository/memory"
	boardservice "perception/internal/services/leaderboard"
	"perception/pkg/errors"
)

type stubSource struct {
	records []feed.Record
	err     error
}

func (s *stubSource) Load(_ context.Context, _ feed.Window) ([]feed.Record, error) {
	return s.records, s.err
}

func newHandler(source feed.Source) *Handler {
	svc := boardservice.NewService(source, memory.NewSnapshotStore(),
		config.FeedConfig{LookbackDays: 1},
		config.LeaderboardConfig{MinMentions: 1},
	)
	return New(svc, 20)
}

func bullishRecords(handles ...string) []feed.Record {
	var records []feed.Record
	for _, h := range handles {
		records = append(records, feed.Record{
			Outlet:    "X",
			URL:       "https://x.com/" + h,
			Sentiment: feed.SentimentPositive,
		})
	}
	return records
}

func TestHandleBoard(t *testing.T) {
	handler := newHandler(&stubSource{records: bullishRecords("alice", "alice", "bob")})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?side=bulls", nil)
	rec := httptest.NewRecorder()
	handler.HandleBoard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp boardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "alice", resp.Entries[0].Handle)
	assert.Equal(t, 1, resp.Entries[0].Rank)
	assert.Equal(t, 100.0, resp.Entries[0].SentimentScore)
}

func TestHandleBoardDefaultsToBulls(t *testing.T) {
	handler := newHandler(&stubSource{records: bullishRecords("alice")})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()
	handler.HandleBoard(rec, req)

	var resp boardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bulls", string(resp.Side))
}

func TestHandleBoardRejectsUnknownSide(t *testing.T) {
	handler := newHandler(&stubSource{})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?side=crabs", nil)
	rec := httptest.NewRecorder()
	handler.HandleBoard(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBoardPagination(t *testing.T) {
	handler := newHandler(&stubSource{records: bullishRecords("a", "b", "c", "d", "e")})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?offset=3&limit=10", nil)
	rec := httptest.NewRecorder()
	handler.HandleBoard(rec, req)

	var resp boardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 5, resp.Total)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, 4, resp.Entries[0].Rank)
}

func TestHandleBoardFeedFailure(t *testing.T) {
	handler := newHandler(&stubSource{err: errors.Wrap(errors.ErrFeedUnavailable, "page 12 timed out")})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()
	handler.HandleBoard(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// One error kind, no upstream detail leaks to the client
	assert.Equal(t, "feed load failed", resp["error"])
	assert.NotContains(t, rec.Body.String(), "page 12")
}

func TestHandlePodium(t *testing.T) {
	handler := newHandler(&stubSource{records: bullishRecords("a", "b", "c", "d")})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard/podium", nil)
	rec := httptest.NewRecorder()
	handler.HandlePodium(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp boardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 4, resp.Total)
	assert.Len(t, resp.Entries, 3)
}

func TestHandleRefresh(t *testing.T) {
	source := &stubSource{records: bullishRecords("alice")}
	handler := newHandler(source)

	req := httptest.NewRequest(http.MethodPost, "/api/leaderboard/refresh", nil)
	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["bulls"])
}

func TestHandleRefreshFeedFailure(t *testing.T) {
	handler := newHandler(&stubSource{err: errors.Wrap(errors.ErrFeedUnavailable, "boom")})

	req := httptest.NewRequest(http.MethodPost, "/api/leaderboard/refresh", nil)
	rec := httptest.NewRecorder()
	handler.HandleRefresh(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
