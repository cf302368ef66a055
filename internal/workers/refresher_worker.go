package workers

import (
	"context"
	"time"

	boardservice "perception/internal/services/leaderboard"
)

// RefresherWorker rebuilds the leaderboard snapshot on a fixed interval so
// HTTP requests never pay for a feed load. The scheduler runs it once at
// startup, which also warms the initial snapshot.
type RefresherWorker struct {
	*BaseWorker
	service *boardservice.Service
}

// NewRefresherWorker creates the leaderboard refresher
func NewRefresherWorker(service *boardservice.Service, interval time.Duration, enabled bool) *RefresherWorker {
	return &RefresherWorker{
		BaseWorker: NewBaseWorker("leaderboard_refresher", interval, enabled),
		service:    service,
	}
}

// Run rebuilds the snapshot once. A failed feed load is recorded and
// returned; the previous snapshot keeps serving until the next tick.
func (w *RefresherWorker) Run(ctx context.Context) error {
	start := time.Now()

	if _, err := w.service.Rebuild(ctx); err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}

	w.RecordRun(time.Since(start))
	return nil
}
