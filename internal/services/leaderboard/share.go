package leaderboard

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"perception/internal/domain/leaderboard"
	"perception/pkg/errors"
)

var medals = [leaderboard.PodiumSize]string{"🥇", "🥈", "🥉"}

// ShareText renders one side's podium as a short text blurb, used by the
// Telegram notifier and the CLI. Returns errors.ErrEmptyWindow when the board
// has no entries.
func ShareText(snapshot *leaderboard.Snapshot, side leaderboard.Side) (string, error) {
	board := snapshot.Board(side)
	podium := board.Podium()
	if len(podium) == 0 {
		return "", errors.Wrapf(errors.ErrEmptyWindow, "no %s to rank", side)
	}

	title := "Top Bitcoin Bulls"
	if side == leaderboard.SideBears {
		title = "Top Bitcoin Bears"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (last 24h)\n", title)

	for i, entry := range podium {
		fmt.Fprintf(&b, "%s @%s — score %.2f, %s mentions\n",
			medals[i],
			entry.Handle,
			entry.SentimentScore,
			humanize.Comma(int64(entry.TotalMentions)),
		)
	}

	fmt.Fprintf(&b, "Built %s from %s posts",
		humanize.Time(snapshot.BuiltAt),
		humanize.Comma(int64(snapshot.RecordsMatched)),
	)

	return b.String(), nil
}
