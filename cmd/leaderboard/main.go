package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"perception/internal/adapters/config"
	"perception/internal/adapters/feedapi"
	boarddomain "perception/internal/domain/leaderboard"
	"perception/internal/repository/memory"
	boardservice "perception/internal/services/leaderboard"
	"perception/pkg/logger"
)

// One-shot leaderboard build: load the feed, rank, print both boards.
// Exits non-zero when the feed load fails.
func main() {
	side := flag.String("side", "", "print only one side (bulls or bears)")
	limit := flag.Int("limit", 20, "entries to print per side")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init("warn", cfg.App.Env); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := feedapi.NewClient(cfg.Feed)
	service := boardservice.NewService(client, memory.NewSnapshotStore(), cfg.Feed, cfg.Leaderboard)

	snapshot, err := service.Rebuild(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "feed load failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Window %s to %s, %s records, %s matched\n\n",
		snapshot.WindowStart.Format("2006-01-02"),
		snapshot.WindowEnd.Format("2006-01-02"),
		humanize.Comma(int64(snapshot.RecordsFetched)),
		humanize.Comma(int64(snapshot.RecordsMatched)),
	)

	sides := []boarddomain.Side{boarddomain.SideBulls, boarddomain.SideBears}
	if *side != "" {
		s := boarddomain.Side(*side)
		if !s.Valid() {
			fmt.Fprintln(os.Stderr, "side must be bulls or bears")
			os.Exit(1)
		}
		sides = []boarddomain.Side{s}
	}

	for _, s := range sides {
		printBoard(snapshot.Board(s), *limit)
		fmt.Println()
	}
}

func printBoard(board boarddomain.Board, limit int) {
	title := "BULLS"
	if board.Side == boarddomain.SideBears {
		title = "BEARS"
	}
	fmt.Printf("=== %s (%d ranked) ===\n", title, board.Total)

	entries := board.Page(0, limit)
	if len(entries) == 0 {
		fmt.Println("  (no accounts)")
		return
	}

	for _, e := range entries {
		fmt.Printf("%3d. @%-20s score %6.2f  %8s mentions  %3.0f%% pos / %3.0f%% neg\n",
			e.Rank,
			e.Handle,
			e.SentimentScore,
			humanize.Comma(int64(e.TotalMentions)),
			e.PositivePercentage,
			e.NegativePercentage,
		)
	}
}
