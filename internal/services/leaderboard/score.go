package leaderboard

import (
	"math"

	"perception/internal/domain/leaderboard"
)

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Score turns one aggregate into its scored view model.
//
// The score maps the spread between positive and negative share onto a
// 0..100 scale: round2((posPct - negPct + 100) / 2). All-positive yields 100,
// all-negative 0, and a balanced or all-neutral mix lands exactly on 50.
// Neutral mentions dilute both shares, pulling the score toward 50.
func Score(agg *leaderboard.Aggregate) leaderboard.Account {
	var posPct, neuPct, negPct float64
	if agg.TotalMentions > 0 {
		total := float64(agg.TotalMentions)
		posPct = float64(agg.PositiveMentions) / total * 100
		neuPct = float64(agg.NeutralMentions) / total * 100
		negPct = float64(agg.NegativeMentions) / total * 100
	}

	return leaderboard.Account{
		Name:               agg.Name,
		Handle:             agg.Handle,
		SentimentScore:     round2((posPct - negPct + 100) / 2),
		TotalMentions:      agg.TotalMentions,
		PositivePercentage: posPct,
		NeutralPercentage:  neuPct,
		NegativePercentage: negPct,
		LastUpdate:         agg.LastUpdate,
		Posts:              agg.Posts,
	}
}

// ScoreAll scores every aggregate with at least minMentions mentions.
func ScoreAll(groups map[Handle]*leaderboard.Aggregate, minMentions int) []leaderboard.Account {
	accounts := make([]leaderboard.Account, 0, len(groups))
	for _, agg := range groups {
		if agg.TotalMentions < minMentions {
			continue
		}
		accounts = append(accounts, Score(agg))
	}
	return accounts
}
