package feed

import (
	"context"
	"time"
)

// Record is one item of the Perception feed API, as received on the wire.
// Date stays a string here; parsing happens during aggregation because the
// upstream emits several timestamp shapes.
type Record struct {
	Outlet    string `json:"Outlet"`
	URL       string `json:"URL"`
	Title     string `json:"Title"`
	Content   string `json:"Content"`
	Sentiment string `json:"Sentiment"`
	Date      string `json:"Date"`
	Category  string `json:"Category,omitempty"`
}

// Sentiment labels used by the upstream feed. Anything else counts as neutral.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
)

// Outlets whose records participate in the Twitter/X leaderboard.
// The match is exact and case-sensitive, mirroring the upstream labels.
const (
	OutletX       = "X"
	OutletTwitter = "Twitter"
)

// Window is the most-recent lookback the feed is queried for.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window covering the last lookbackDays days ending now.
func NewWindow(now time.Time, lookbackDays int) Window {
	return Window{
		Start: now.AddDate(0, 0, -lookbackDays),
		End:   now,
	}
}

// StartDate returns the window start formatted for the feed query.
func (w Window) StartDate() string {
	return w.Start.Format("2006-01-02")
}

// EndDate returns the window end formatted for the feed query.
func (w Window) EndDate() string {
	return w.End.Format("2006-01-02")
}

// Source loads the full feed window as a single flat record list.
// Implementations must be all-or-nothing: a partially loaded window is an error.
type Source interface {
	Load(ctx context.Context, window Window) ([]Record, error)
}
