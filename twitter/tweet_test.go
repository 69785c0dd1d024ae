package twitter

import (
	"testing"
	"time"

	gotwitter "github.com/g8rswimmer/go-twitter/v2"
	"github.com/stretchr/testify/assert"
)

func TestConstructTweetURL(t *testing.T) {
	url := ConstructTweetURL("FooBar", "1234567")
	assert.Equal(t, "https://x.com/FooBar/status/1234567", url)
}

func TestSearchQuery(t *testing.T) {
	t.Run("quotes the brand", func(t *testing.T) {
		assert.Equal(t, `"Acme Rockets"`, SearchQuery(" Acme Rockets ", ""))
	})

	t.Run("appends feed operators", func(t *testing.T) {
		assert.Equal(t, `"acme" lang:en -is:retweet`, SearchQuery("acme", "lang:en -is:retweet"))
	})
}

func TestClampMaxResults(t *testing.T) {
	assert.Equal(t, 10, ClampMaxResults(0))
	assert.Equal(t, 10, ClampMaxResults(5))
	assert.Equal(t, 20, ClampMaxResults(20))
	assert.Equal(t, 100, ClampMaxResults(500))
}

func TestIsRetweet(t *testing.T) {
	assert.False(t, IsRetweet(gotwitter.TweetObj{ID: "1"}))
	assert.False(t, IsRetweet(gotwitter.TweetObj{ReferencedTweets: []*gotwitter.TweetReferencedTweetObj{{Type: "quoted", ID: "2"}}}))
	assert.True(t, IsRetweet(gotwitter.TweetObj{ReferencedTweets: []*gotwitter.TweetReferencedTweetObj{{Type: "retweeted", ID: "2"}}}))
}

func TestParseCreatedAt(t *testing.T) {
	created, err := ParseCreatedAt("2024-05-01T10:00:00.000Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), created)

	_, err = ParseCreatedAt("yesterday")
	assert.Error(t, err)
}
