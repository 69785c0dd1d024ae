package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/dghubble/oauth1"
	gotwitter "github.com/g8rswimmer/go-twitter/v2"
	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/brandwatch/model"
	"github.com/truemediaorg/brandwatch/twitter"
	"golang.org/x/exp/maps"
)

const xHost = "https://api.twitter.com"

type XConfig struct {
	BearerToken       string
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string

	// Host defaults to the public X API.
	Host string
}

// X runs recent searches against the X API. It signs requests with OAuth1 user
// context when access tokens are configured and with the app bearer token otherwise.
type X struct {
	cfg    XConfig
	client *gotwitter.Client
}

type authorize struct {
	Token string
}

func (a authorize) Add(req *http.Request) {
	if a.Token == "" {
		// the oauth1 transport signs the request
		return
	}
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", a.Token))
}

func NewX(ctx context.Context, cfg XConfig) *X {
	if cfg.Host == "" {
		cfg.Host = xHost
	}
	client := &gotwitter.Client{
		Authorizer: authorize{Token: cfg.BearerToken},
		Client:     http.DefaultClient,
		Host:       cfg.Host,
	}
	if cfg.userContext() {
		oauthConfig := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
		oauthToken := oauth1.NewToken(cfg.AccessToken, cfg.AccessTokenSecret)
		client.Authorizer = authorize{}
		client.Client = oauthConfig.Client(ctx, oauthToken)
	}
	return &X{cfg: cfg, client: client}
}

func (c XConfig) userContext() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

func (x *X) Platform() model.Platform {
	return model.PlatformX
}

// Authenticate only checks that some credentials are configured. The API
// rejects bad ones on the first search.
func (x *X) Authenticate(ctx context.Context) error {
	if x.cfg.BearerToken == "" && !x.cfg.userContext() {
		return fmt.Errorf("x bearer token or oauth1 tokens are required: %w", ErrUnauthorized)
	}
	return nil
}

// Search runs a recent search for the quoted brand plus the feed's operators.
func (x *X) Search(ctx context.Context, brand string, feed string, opts Options) ([]Post, error) {
	opts = opts.withDefaults()
	window := opts.Window
	if window >= twitter.RecentSearchWindow {
		window = twitter.RecentSearchWindow - time.Minute
	}
	query := twitter.SearchQuery(brand, feed)

	resp, err := x.client.TweetRecentSearch(ctx, query, gotwitter.TweetRecentSearchOpts{
		TweetFields: []gotwitter.TweetField{gotwitter.TweetFieldCreatedAt, gotwitter.TweetFieldAuthorID, gotwitter.TweetFieldReferencedTweets},
		UserFields:  []gotwitter.UserField{gotwitter.UserFieldUserName},
		Expansions:  []gotwitter.Expansion{gotwitter.ExpansionAuthorID},
		StartTime:   time.Now().Add(-window),
		MaxResults:  twitter.ClampMaxResults(opts.Limit),
	})
	if err != nil {
		var errResp *gotwitter.ErrorResponse
		if errors.As(err, &errResp) && (errResp.StatusCode == http.StatusUnauthorized || errResp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("x search %q: %w", query, ErrUnauthorized)
		}
		if rateLimit, ok := gotwitter.RateLimitFromError(err); ok {
			log.WithField("limit", rateLimit.Limit).WithField("remaining", rateLimit.Remaining).Warnf("X rate limit encountered, resets in %fs", time.Until(rateLimit.Reset.Time()).Seconds())
		}
		return nil, fmt.Errorf("x search %q: %w", query, err)
	}
	if resp.RateLimit != nil {
		log.WithField("limit", resp.RateLimit.Limit).WithField("remaining", resp.RateLimit.Remaining).Debug("rate limit data for recent search")
	}
	if resp.Raw == nil {
		return nil, nil
	}

	var posts []Post
	for _, tweet := range maps.Values(resp.Raw.TweetDictionaries()) {
		if twitter.IsRetweet(tweet.Tweet) {
			continue
		}
		created, err := twitter.ParseCreatedAt(tweet.Tweet.CreatedAt)
		if err != nil {
			log.WithField("tweetID", tweet.Tweet.ID).Warn(err)
			continue
		}
		author := tweet.Tweet.AuthorID
		if tweet.Author != nil {
			author = tweet.Author.UserName
		}
		posts = append(posts, Post{
			Permalink: twitter.ConstructTweetURL(author, tweet.Tweet.ID),
			Body:      tweet.Tweet.Text,
			Created:   created,
		})
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Created.After(posts[j].Created)
	})
	if len(posts) > opts.Limit {
		posts = posts[:opts.Limit]
	}
	return posts, nil
}
