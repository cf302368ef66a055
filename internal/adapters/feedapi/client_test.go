package feedapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perception/internal/adapters/config"
	"perception/internal/domain/feed"
	"perception/pkg/errors"
)

func testConfig(baseURL string, pages int) config.FeedConfig {
	return config.FeedConfig{
		BaseURL:           baseURL,
		UserID:            "test-user",
		LookbackDays:      1,
		PageSize:          5,
		Pages:             pages,
		LoadTimeout:       5 * time.Second,
		RequestsPerSecond: 1000,
	}
}

func testWindow() feed.Window {
	return feed.NewWindow(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), 1)
}

func pageRecords(page, n int) []feed.Record {
	records := make([]feed.Record, n)
	for i := range records {
		records[i] = feed.Record{
			Outlet:    "X",
			URL:       fmt.Sprintf("https://x.com/user%d", page),
			Content:   fmt.Sprintf("page %d record %d", page, i),
			Sentiment: feed.SentimentPositive,
		}
	}
	return records
}

func serveFeed(t *testing.T, handler func(w http.ResponseWriter, page int)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		require.NoError(t, err)
		handler(w, page)
	}))
}

func TestLoadMergesPagesInOrder(t *testing.T) {
	server := serveFeed(t, func(w http.ResponseWriter, page int) {
		// Later pages answer first so merge order cannot come from timing
		time.Sleep(time.Duration(4-page) * 20 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": pageRecords(page, 2),
		})
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL, 4))

	records, err := client.Load(context.Background(), testWindow())
	require.NoError(t, err)
	require.Len(t, records, 8)

	for i, r := range records {
		wantPage := i/2 + 1
		assert.Equal(t, fmt.Sprintf("https://x.com/user%d", wantPage), r.URL)
	}
}

func TestLoadSkipsEmptyPages(t *testing.T) {
	server := serveFeed(t, func(w http.ResponseWriter, page int) {
		if page == 2 {
			fmt.Fprint(w, `{"data": []}`)
			return
		}
		if page == 3 {
			// No data key at all
			fmt.Fprint(w, `{}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": pageRecords(page, 1),
		})
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL, 4))

	records, err := client.Load(context.Background(), testWindow())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "https://x.com/user1", records[0].URL)
	assert.Equal(t, "https://x.com/user4", records[1].URL)
}

func TestLoadFailsWholeBatchOnAnyPageError(t *testing.T) {
	server := serveFeed(t, func(w http.ResponseWriter, page int) {
		if page == 3 {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": pageRecords(page, 1),
		})
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL, 5))

	records, err := client.Load(context.Background(), testWindow())
	assert.Nil(t, records, "no partial results on failure")
	assert.ErrorIs(t, err, errors.ErrFeedUnavailable)
}

func TestLoadSendsWindowAndPagination(t *testing.T) {
	var pagesSeen atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-user", q.Get("userId"))
		assert.Equal(t, "2026-08-30", q.Get("startDate"))
		assert.Equal(t, "2026-08-31", q.Get("endDate"))
		assert.Equal(t, "5", q.Get("pageSize"))
		assert.NotEmpty(t, q.Get("page"))
		pagesSeen.Add(1)
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL, 3))

	records, err := client.Load(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(3), pagesSeen.Load(), "one request per page")
}

func TestLoadMalformedBody(t *testing.T) {
	server := serveFeed(t, func(w http.ResponseWriter, page int) {
		fmt.Fprint(w, `{"data": not-json`)
	})
	defer server.Close()

	client := NewClient(testConfig(server.URL, 2))

	_, err := client.Load(context.Background(), testWindow())
	assert.ErrorIs(t, err, errors.ErrFeedUnavailable)
}

func TestLoadHonorsTimeout(t *testing.T) {
	release := make(chan struct{})
	server := serveFeed(t, func(w http.ResponseWriter, page int) {
		<-release
		fmt.Fprint(w, `{"data": []}`)
	})
	defer server.Close()
	defer close(release)

	cfg := testConfig(server.URL, 2)
	cfg.LoadTimeout = 100 * time.Millisecond
	client := NewClient(cfg)

	start := time.Now()
	_, err := client.Load(context.Background(), testWindow())

	assert.ErrorIs(t, err, errors.ErrFeedUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second, "load gives up at the deadline")
}
