package leaderboard

import (
	"time"
)

// Side selects one of the two board partitions.
type Side string

const (
	SideBulls Side = "bulls"
	SideBears Side = "bears"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideBulls || s == SideBears
}

// PodiumSize is the number of top entries given distinct visual treatment.
const PodiumSize = 3

// Post is one constituent feed record attributed to an account.
type Post struct {
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment"`
	Date      time.Time `json:"date"`
	URL       string    `json:"url"`
}

// Aggregate accumulates all mentions of one handle within a single feed load.
// The handle key is lower-cased; Handle keeps the first-seen original casing
// for display. Counts always satisfy
// TotalMentions == PositiveMentions + NegativeMentions + NeutralMentions.
type Aggregate struct {
	Handle           string
	Name             string
	TotalMentions    int
	PositiveMentions int
	NegativeMentions int
	NeutralMentions  int
	LastUpdate       time.Time
	Posts            []Post
}

// Account is the scored view model derived from one Aggregate.
// SentimentScore lies in [0,100]; 50 means balanced or zero-signal sentiment.
type Account struct {
	Name               string    `json:"name"`
	Handle             string    `json:"handle"`
	SentimentScore     float64   `json:"sentimentScore"`
	TotalMentions      int       `json:"totalMentions"`
	PositivePercentage float64   `json:"positivePercentage"`
	NeutralPercentage  float64   `json:"neutralPercentage"`
	NegativePercentage float64   `json:"negativePercentage"`
	LastUpdate         time.Time `json:"lastUpdate"`
	Posts              []Post    `json:"posts"`
}

// VolumeTierWidth is the mention-count width of one ranking tier.
// Ranking buckets accounts by tier before looking at scores, so reach
// outweighs raw score extremity. 47 and 43 mentions share tier 4.
const VolumeTierWidth = 10

// VolumeTier returns the account's mention-volume tier.
func (a Account) VolumeTier() int {
	return a.TotalMentions / VolumeTierWidth
}

// Entry is one ranked row of a board. Rank starts at 1.
type Entry struct {
	Rank int `json:"rank"`
	Account
}

// Board is one ordered partition (bulls or bears) of the leaderboard.
// Entries holds every qualifying account in rank order; consumers slice it
// for display and use Total for "showing N of M".
type Board struct {
	Side    Side    `json:"side"`
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// Podium returns the top entries of the board, at most PodiumSize.
func (b Board) Podium() []Entry {
	if len(b.Entries) <= PodiumSize {
		return b.Entries
	}
	return b.Entries[:PodiumSize]
}

// Page returns entries [offset, offset+limit) and is safe for any bounds.
func (b Board) Page(offset, limit int) []Entry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(b.Entries) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(b.Entries) {
		end = len(b.Entries)
	}
	return b.Entries[offset:end]
}

// Snapshot is one complete, immutable leaderboard build. Every snapshot is
// rebuilt from scratch from a single feed load; nothing is carried over from
// previous builds.
type Snapshot struct {
	WindowStart    time.Time `json:"windowStart"`
	WindowEnd      time.Time `json:"windowEnd"`
	BuiltAt        time.Time `json:"builtAt"`
	RecordsFetched int       `json:"recordsFetched"`
	RecordsMatched int       `json:"recordsMatched"`
	Bulls          Board     `json:"bulls"`
	Bears          Board     `json:"bears"`
}

// Board returns the partition for the given side.
func (s *Snapshot) Board(side Side) Board {
	if side == SideBears {
		return s.Bears
	}
	return s.Bulls
}

// Age reports how old the snapshot is.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.BuiltAt)
}
