package workers

import (
	"context"
	"strings"
	"time"

	boarddomain "perception/internal/domain/leaderboard"
	boardservice "perception/internal/services/leaderboard"
	"perception/pkg/errors"
)

// Sender delivers a digest message to wherever notifications go.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// PodiumNotifierWorker posts both podiums to Telegram whenever they change.
// Empty boards are skipped silently; a window with no ranked accounts is a
// normal state, not a failure.
type PodiumNotifierWorker struct {
	*BaseWorker
	service    *boardservice.Service
	sender     Sender
	lastDigest string
}

// NewPodiumNotifierWorker creates the podium notifier
func NewPodiumNotifierWorker(service *boardservice.Service, sender Sender, interval time.Duration, enabled bool) *PodiumNotifierWorker {
	return &PodiumNotifierWorker{
		BaseWorker: NewBaseWorker("podium_notifier", interval, enabled),
		service:    service,
		sender:     sender,
	}
}

// Run sends one digest covering both sides
func (w *PodiumNotifierWorker) Run(ctx context.Context) error {
	start := time.Now()

	snapshot, err := w.service.Latest(ctx)
	if err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}

	var sections []string
	for _, side := range []boarddomain.Side{boarddomain.SideBulls, boarddomain.SideBears} {
		text, err := boardservice.ShareText(snapshot, side)
		if err != nil {
			if errors.Is(err, errors.ErrEmptyWindow) {
				w.Log().Debugw("Skipping empty board", "side", side)
				continue
			}
			w.RecordError(err, time.Since(start))
			return err
		}
		sections = append(sections, text)
	}

	if len(sections) == 0 {
		w.Log().Info("No podiums to announce, skipping digest")
		w.RecordRun(time.Since(start))
		return nil
	}

	digest := podiumDigest(snapshot)
	if digest == w.lastDigest {
		w.Log().Debug("Podiums unchanged, skipping digest")
		w.RecordRun(time.Since(start))
		return nil
	}

	if err := w.sender.Send(ctx, strings.Join(sections, "\n\n")); err != nil {
		w.RecordError(err, time.Since(start))
		return err
	}
	w.lastDigest = digest

	w.RecordRun(time.Since(start))
	return nil
}

// podiumDigest fingerprints both podiums by membership and order, so a
// rebuild that leaves the top three untouched does not re-announce them.
func podiumDigest(snapshot *boarddomain.Snapshot) string {
	var b strings.Builder
	for _, side := range []boarddomain.Side{boarddomain.SideBulls, boarddomain.SideBears} {
		b.WriteString(string(side))
		for _, entry := range snapshot.Board(side).Podium() {
			b.WriteString("|")
			b.WriteString(entry.Handle)
		}
		b.WriteString(";")
	}
	return b.String()
}
