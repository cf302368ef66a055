package leaderboard

import (
	"sort"

	"perception/internal/domain/leaderboard"
)

// Key extracts one ranking dimension from an account.
type Key func(leaderboard.Account) float64

// TierKey buckets accounts by mention volume. It is the primary ranking key
// on both boards, so a tier-4 account with score 52 outranks a tier-3
// account with score 80.
func TierKey(a leaderboard.Account) float64 {
	return float64(a.VolumeTier())
}

// ScoreKey returns the raw sentiment score.
func ScoreKey(a leaderboard.Account) float64 {
	return a.SentimentScore
}

// RankingKey is one key with its sort direction.
type RankingKey struct {
	Key        Key
	Descending bool
}

// Ranking is an ordered key composition. Earlier keys dominate; later keys
// only break ties.
type Ranking struct {
	keys []RankingKey
}

// NewRanking builds a ranking from keys in priority order.
func NewRanking(keys ...RankingKey) Ranking {
	return Ranking{keys: keys}
}

// Less reports whether a ranks strictly ahead of b.
func (r Ranking) Less(a, b leaderboard.Account) bool {
	for _, k := range r.keys {
		ka, kb := k.Key(a), k.Key(b)
		if ka == kb {
			continue
		}
		if k.Descending {
			return ka > kb
		}
		return ka < kb
	}
	return false
}

// Bulls rank the loudest optimists first: volume tier, then score, both
// descending. Bears invert only the score direction, so their most negative
// voices surface while volume still dominates.
var (
	BullsRanking = NewRanking(
		RankingKey{Key: TierKey, Descending: true},
		RankingKey{Key: ScoreKey, Descending: true},
	)
	BearsRanking = NewRanking(
		RankingKey{Key: TierKey, Descending: true},
		RankingKey{Key: ScoreKey, Descending: false},
	)
)

// sideFilter reports whether an account belongs on the given side. A score of
// exactly 50 is neither bullish nor bearish and appears on no board.
func sideFilter(side leaderboard.Side, a leaderboard.Account) bool {
	if side == leaderboard.SideBears {
		return a.SentimentScore < 50
	}
	return a.SentimentScore > 50
}

// BuildBoard filters accounts onto one side, orders them with the side's
// ranking and assigns 1-based ranks. The input slice is left untouched.
func BuildBoard(side leaderboard.Side, accounts []leaderboard.Account) leaderboard.Board {
	ranking := BullsRanking
	if side == leaderboard.SideBears {
		ranking = BearsRanking
	}

	var members []leaderboard.Account
	for _, a := range accounts {
		if sideFilter(side, a) {
			members = append(members, a)
		}
	}

	sort.SliceStable(members, func(i, j int) bool {
		return ranking.Less(members[i], members[j])
	})

	entries := make([]leaderboard.Entry, len(members))
	for i, a := range members {
		entries[i] = leaderboard.Entry{Rank: i + 1, Account: a}
	}

	return leaderboard.Board{
		Side:    side,
		Entries: entries,
		Total:   len(entries),
	}
}
