package twitter

import (
	"fmt"
	"strings"
	"time"

	gotwitter "github.com/g8rswimmer/go-twitter/v2"
)

const (
	// Bounds the recent search endpoint enforces on max_results.
	MinSearchResults = 10
	MaxSearchResults = 100

	// RecentSearchWindow is how far back the recent search endpoint can look.
	RecentSearchWindow = 7 * 24 * time.Hour
)

func ConstructTweetURL(authorName string, tweetID string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", authorName, tweetID)
}

// SearchQuery quotes the brand so multi-word names match as a phrase, then
// appends the feed's extra operators.
func SearchQuery(brand string, feed string) string {
	query := fmt.Sprintf("%q", strings.TrimSpace(brand))
	if feed = strings.TrimSpace(feed); feed != "" {
		query += " " + feed
	}
	return query
}

func ClampMaxResults(n int) int {
	switch {
	case n < MinSearchResults:
		return MinSearchResults
	case n > MaxSearchResults:
		return MaxSearchResults
	default:
		return n
	}
}

func IsRetweet(tweet gotwitter.TweetObj) bool {
	for _, ref := range tweet.ReferencedTweets {
		if ref != nil && ref.Type == string(TweetReferenceRetweeted) {
			return true
		}
	}
	return false
}

func ParseCreatedAt(raw string) (time.Time, error) {
	created, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("tweet created_at %q: %w", raw, err)
	}
	return created.UTC(), nil
}
