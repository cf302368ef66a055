package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perception/internal/domain/feed"
	"perception/internal/domain/leaderboard"
)

func agg(pos, neg, neu int) *leaderboard.Aggregate {
	return &leaderboard.Aggregate{
		Handle:           "acct",
		Name:             "acct",
		TotalMentions:    pos + neg + neu,
		PositiveMentions: pos,
		NegativeMentions: neg,
		NeutralMentions:  neu,
	}
}

func TestScoreBounds(t *testing.T) {
	assert.Equal(t, 100.0, Score(agg(10, 0, 0)).SentimentScore, "all positive")
	assert.Equal(t, 0.0, Score(agg(0, 10, 0)).SentimentScore, "all negative")
}

func TestScoreBalanced(t *testing.T) {
	// Equal positive and negative lands exactly on 50
	assert.Equal(t, 50.0, Score(agg(5, 5, 0)).SentimentScore)
	assert.Equal(t, 50.0, Score(agg(3, 3, 4)).SentimentScore)

	// So does all-neutral
	assert.Equal(t, 50.0, Score(agg(0, 0, 7)).SentimentScore)
}

func TestScoreNeutralDilutes(t *testing.T) {
	pure := Score(agg(8, 2, 0)).SentimentScore
	diluted := Score(agg(8, 2, 10)).SentimentScore

	assert.Greater(t, pure, 50.0)
	assert.Greater(t, diluted, 50.0)
	assert.Less(t, diluted, pure, "neutral mentions pull the score toward 50")
}

func TestScoreRounding(t *testing.T) {
	// 1 pos, 2 neg: posPct=33.33.., negPct=66.66.., score=(33.33-66.66+100)/2
	got := Score(agg(1, 2, 0)).SentimentScore
	assert.InDelta(t, 33.33, got, 0.005)
	assert.Equal(t, got, round2(got), "score carries at most two decimals")
}

func TestScoreMonotonicInPositiveShare(t *testing.T) {
	prev := -1.0
	for pos := 0; pos <= 10; pos++ {
		s := Score(agg(pos, 10-pos, 0)).SentimentScore
		assert.Greater(t, s, prev)
		prev = s
	}
}

func TestScorePercentages(t *testing.T) {
	acct := Score(agg(6, 3, 1))

	assert.Equal(t, 60.0, acct.PositivePercentage)
	assert.Equal(t, 30.0, acct.NegativePercentage)
	assert.Equal(t, 10.0, acct.NeutralPercentage)
	assert.Equal(t, 10, acct.TotalMentions)
}

func TestScoreZeroMentions(t *testing.T) {
	acct := Score(agg(0, 0, 0))

	assert.Equal(t, 50.0, acct.SentimentScore)
	assert.Equal(t, 0.0, acct.PositivePercentage)
}

func TestScoreAllFiltersByMinMentions(t *testing.T) {
	groups := map[Handle]*leaderboard.Aggregate{
		"big":   agg(5, 0, 0),
		"small": agg(1, 0, 0),
	}
	groups["big"].Handle = "big"
	groups["small"].Handle = "small"

	accounts := ScoreAll(groups, 2)

	require.Len(t, accounts, 1)
	assert.Equal(t, "big", accounts[0].Handle)
}

func TestAggregateAndScoreEndToEnd(t *testing.T) {
	var records []feed.Record
	// alice: 7 positive, 3 negative -> (70 - 30 + 100) / 2 = 70
	for i := 0; i < 7; i++ {
		records = append(records, feed.Record{Outlet: "X", URL: "https://x.com/alice", Sentiment: feed.SentimentPositive})
	}
	for i := 0; i < 3; i++ {
		records = append(records, feed.Record{Outlet: "X", URL: "https://x.com/alice", Sentiment: feed.SentimentNegative})
	}
	// bob: all negative -> 0
	for i := 0; i < 4; i++ {
		records = append(records, feed.Record{Outlet: "Twitter", URL: "https://twitter.com/bob", Sentiment: feed.SentimentNegative})
	}

	groups, _ := Aggregate(records)
	accounts := ScoreAll(groups, 1)

	byHandle := make(map[string]leaderboard.Account)
	for _, a := range accounts {
		byHandle[a.Handle] = a
	}

	require.Len(t, byHandle, 2)
	assert.Equal(t, 70.0, byHandle["alice"].SentimentScore)
	assert.Equal(t, 10, byHandle["alice"].TotalMentions)
	assert.Equal(t, 0.0, byHandle["bob"].SentimentScore)
}
