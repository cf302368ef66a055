package feedapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"perception/internal/adapters/config"
	"perception/internal/domain/feed"
	"perception/internal/metrics"
	"perception/pkg/errors"
	"perception/pkg/logger"
)

// Client loads the Perception feed API. A load fans out one request per page,
// waits for the whole batch and merges the pages in page order, so the result
// is deterministic no matter how the responses interleave. Any page failure
// fails the entire load; there is no partial-result fallback and no retry.
//
// The original consumer had neither a load deadline nor cancellation; both are
// added here so a stuck upstream cannot hang a worker forever.
type Client struct {
	baseURL     string
	userID      string
	pageSize    int
	pages       int
	loadTimeout time.Duration
	httpClient  *http.Client
	limiter     *rate.Limiter
	log         *logger.Logger
}

// NewClient creates a feed API client from configuration
func NewClient(cfg config.FeedConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = float64(cfg.Pages)
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		userID:      cfg.UserID,
		pageSize:    cfg.PageSize,
		pages:       cfg.Pages,
		loadTimeout: cfg.LoadTimeout,
		httpClient:  &http.Client{Timeout: cfg.LoadTimeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), cfg.Pages),
		log:         logger.Get().With("component", "feedapi"),
	}
}

// feedResponse is the wire envelope of one feed page
type feedResponse struct {
	Data []feed.Record `json:"data"`
}

// Load fetches pages 1..N concurrently and returns their records concatenated
// in ascending page order. Pages whose data array is empty or missing are
// skipped. On any failure the returned error wraps errors.ErrFeedUnavailable.
func (c *Client) Load(ctx context.Context, window feed.Window) ([]feed.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	start := time.Now()

	pages := make([][]feed.Record, c.pages)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		loadErr error
	)

	for i := 0; i < c.pages; i++ {
		page := i + 1

		wg.Add(1)
		go func() {
			defer wg.Done()

			records, err := c.fetchPage(ctx, window, page)
			if err != nil {
				mu.Lock()
				if loadErr == nil {
					loadErr = err
					// First failure aborts the remaining in-flight pages
					cancel()
				}
				mu.Unlock()
				return
			}

			pages[page-1] = records
		}()
	}

	wg.Wait()

	if loadErr != nil {
		return nil, errors.Wrapf(errors.ErrFeedUnavailable, "%v", loadErr)
	}

	var all []feed.Record
	for _, records := range pages {
		if len(records) == 0 {
			continue
		}
		all = append(all, records...)
	}

	metrics.FeedRecordsFetched.Add(float64(len(all)))

	c.log.Infow("Feed window loaded",
		"pages", c.pages,
		"records", len(all),
		"start_date", window.StartDate(),
		"end_date", window.EndDate(),
		"duration", time.Since(start),
	)

	return all, nil
}

// fetchPage retrieves a single feed page
func (c *Client) fetchPage(ctx context.Context, window feed.Window, page int) ([]feed.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(err, "rate limit wait for page %d", page)
	}

	params := url.Values{}
	params.Set("userId", c.userID)
	params.Set("startDate", window.StartDate())
	params.Set("endDate", window.EndDate())
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	endpoint := fmt.Sprintf("%s/feed?%s", c.baseURL, params.Encode())

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create request for page %d", page)
	}

	req.Header.Set("User-Agent", "Perception Leaderboard/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordFeedPage(time.Since(start), err)
		return nil, errors.Wrapf(err, "fetch page %d", page)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("feed API returned status %d for page %d: %s", resp.StatusCode, page, string(body))
		metrics.RecordFeedPage(time.Since(start), err)
		return nil, err
	}

	var response feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		metrics.RecordFeedPage(time.Since(start), err)
		return nil, errors.Wrapf(err, "decode page %d", page)
	}

	metrics.RecordFeedPage(time.Since(start), nil)

	c.log.Debugw("Fetched feed page", "page", page, "records", len(response.Data))

	return response.Data, nil
}
