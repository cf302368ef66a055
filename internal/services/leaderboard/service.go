package leaderboard

import (
	"context"
	"time"

	"perception/internal/adapters/config"
	"perception/internal/domain/feed"
	"perception/internal/domain/leaderboard"
	"perception/internal/metrics"
	"perception/pkg/errors"
	"perception/pkg/logger"
)

// Service builds leaderboard snapshots and hands out the latest one.
//
// A rebuild is a full pipeline run over a fresh feed load: fetch, aggregate,
// score, rank. No aggregate, score or rank survives from one run to the next;
// the snapshot is the only thing kept between requests.
type Service struct {
	source       feed.Source
	store        leaderboard.SnapshotStore
	lookbackDays int
	minMentions  int
	log          *logger.Logger
}

// NewService creates the leaderboard service
func NewService(source feed.Source, store leaderboard.SnapshotStore, feedCfg config.FeedConfig, boardCfg config.LeaderboardConfig) *Service {
	return &Service{
		source:       source,
		store:        store,
		lookbackDays: feedCfg.LookbackDays,
		minMentions:  boardCfg.MinMentions,
		log:          logger.Get().With("component", "leaderboard_service"),
	}
}

// Rebuild runs the full pipeline and stores the resulting snapshot.
// A failed feed load aborts the rebuild and leaves the previous snapshot in
// place; callers keep serving stale data rather than a partial board.
func (s *Service) Rebuild(ctx context.Context) (*leaderboard.Snapshot, error) {
	start := time.Now()

	window := feed.NewWindow(time.Now(), s.lookbackDays)

	records, err := s.source.Load(ctx, window)
	if err != nil {
		metrics.RecordPipelineBuild(time.Since(start), err)
		s.log.Errorf("Leaderboard rebuild failed: %v", err)
		return nil, err
	}

	groups, stats := Aggregate(records)
	accounts := ScoreAll(groups, s.minMentions)

	bulls := BuildBoard(leaderboard.SideBulls, accounts)
	bears := BuildBoard(leaderboard.SideBears, accounts)

	snapshot := &leaderboard.Snapshot{
		WindowStart:    window.Start,
		WindowEnd:      window.End,
		BuiltAt:        time.Now(),
		RecordsFetched: len(records),
		RecordsMatched: stats.Matched,
		Bulls:          bulls,
		Bears:          bears,
	}

	if err := s.store.Save(ctx, snapshot); err != nil {
		metrics.RecordPipelineBuild(time.Since(start), err)
		return nil, errors.Wrap(err, "save snapshot")
	}

	metrics.RecordsDiscarded.WithLabelValues("outlet").Add(float64(stats.DroppedOutlet))
	metrics.RecordsDiscarded.WithLabelValues("no_handle").Add(float64(stats.DroppedNoHandle))
	metrics.AccountsRanked.WithLabelValues(string(leaderboard.SideBulls)).Set(float64(bulls.Total))
	metrics.AccountsRanked.WithLabelValues(string(leaderboard.SideBears)).Set(float64(bears.Total))
	metrics.RecordPipelineBuild(time.Since(start), nil)

	if len(records) == 0 {
		s.log.Warnw("Feed window was empty, snapshot has no accounts",
			"start_date", window.StartDate(),
			"end_date", window.EndDate(),
		)
	}

	s.log.Infow("Leaderboard rebuilt",
		"records", len(records),
		"matched", stats.Matched,
		"bulls", bulls.Total,
		"bears", bears.Total,
		"duration", time.Since(start),
	)

	return snapshot, nil
}

// Latest returns the stored snapshot, rebuilding once when none exists yet.
func (s *Service) Latest(ctx context.Context) (*leaderboard.Snapshot, error) {
	snapshot, err := s.store.Latest(ctx)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, errors.ErrNoSnapshot) {
		return nil, err
	}

	s.log.Info("No snapshot in store, building one")
	return s.Rebuild(ctx)
}
