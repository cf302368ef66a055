package leaderboard

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"perception/internal/domain/feed"
	"perception/internal/domain/leaderboard"
)

// Handle is the lower-case-normalized aggregation key. Display casing is kept
// separately on the aggregate.
type Handle string

// NormalizeHandle folds a raw handle into its aggregation key, so @Saylor and
// @saylor land in the same bucket.
func NormalizeHandle(raw string) Handle {
	return Handle(strings.ToLower(raw))
}

// Stats counts what happened to the input records during one aggregation.
type Stats struct {
	Matched         int
	DroppedOutlet   int
	DroppedNoHandle int
}

var titleMentionRe = regexp.MustCompile(`@(\w+)`)

// ExtractHandle pulls the account handle out of a record, trying the profile
// URL first and the @mention in the title second. First match wins; the two
// are not reconciled when they would disagree.
func ExtractHandle(r feed.Record) (string, bool) {
	if h := handleFromURL(r.URL); h != "" {
		return h, true
	}

	if m := titleMentionRe.FindStringSubmatch(r.Title); m != nil {
		return m[1], true
	}

	return "", false
}

// handleFromURL takes the path segment right after the twitter.com / x.com
// domain segment, unless it is a status link. Query strings are stripped.
func handleFromURL(raw string) string {
	if !strings.Contains(raw, "twitter.com/") && !strings.Contains(raw, "x.com/") {
		return ""
	}

	parts := strings.Split(raw, "/")
	for i, part := range parts {
		if part != "twitter.com" && part != "x.com" {
			continue
		}
		if i+1 >= len(parts) {
			return ""
		}
		segment := parts[i+1]
		if segment == "" || strings.Contains(segment, "status") {
			return ""
		}
		segment, _, _ = strings.Cut(segment, "?")
		return segment
	}

	return ""
}

// feed timestamp shapes seen in the wild, most specific first
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate parses a feed timestamp, returning the zero time when no layout
// matches. Zero times never advance lastUpdate and sort last among posts.
func parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Aggregate folds a flat record list into one aggregate per distinct handle.
// Only X/Twitter records participate; records without an extractable handle
// are dropped. The fold is pure: same input, same output, no state outside
// the returned map. Post lists come back sorted newest first.
func Aggregate(records []feed.Record) (map[Handle]*leaderboard.Aggregate, Stats) {
	groups := make(map[Handle]*leaderboard.Aggregate)
	var stats Stats

	for _, r := range records {
		if r.Outlet != feed.OutletX && r.Outlet != feed.OutletTwitter {
			stats.DroppedOutlet++
			continue
		}

		handle, ok := ExtractHandle(r)
		if !ok {
			stats.DroppedNoHandle++
			continue
		}
		stats.Matched++

		key := NormalizeHandle(handle)
		date := parseDate(r.Date)

		group, exists := groups[key]
		if !exists {
			group = &leaderboard.Aggregate{
				Handle:     handle,
				Name:       handle,
				LastUpdate: date,
			}
			groups[key] = group
		}

		group.TotalMentions++
		switch r.Sentiment {
		case feed.SentimentPositive:
			group.PositiveMentions++
		case feed.SentimentNegative:
			group.NegativeMentions++
		default:
			group.NeutralMentions++
		}

		group.Posts = append(group.Posts, leaderboard.Post{
			Content:   r.Content,
			Sentiment: r.Sentiment,
			Date:      date,
			URL:       r.URL,
		})

		if date.After(group.LastUpdate) {
			group.LastUpdate = date
		}
	}

	for _, group := range groups {
		sort.SliceStable(group.Posts, func(i, j int) bool {
			return group.Posts[i].Date.After(group.Posts[j].Date)
		})
	}

	return groups, stats
}
