package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/brandwatch/model"
)

const (
	redditAuthURL   = "https://www.reddit.com"
	redditAPIURL    = "https://oauth.reddit.com"
	redditPermalink = "https://www.reddit.com"

	DefaultUserAgent = "brandwatch/1.0"
)

type RedditConfig struct {
	ClientID     string
	ClientSecret string
	UserAgent    string

	// AuthURL and APIURL default to the public Reddit hosts.
	AuthURL string
	APIURL  string
}

// Reddit searches subreddits through the OAuth API using an application-only token.
type Reddit struct {
	cfg         RedditConfig
	client      *resty.Client
	accessToken string
}

type redditTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       any    `json:"error"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

func NewReddit(cfg RedditConfig) *Reddit {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = redditAuthURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = redditAPIURL
	}
	cfg.AuthURL = strings.TrimRight(cfg.AuthURL, "/")
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &Reddit{
		cfg: cfg,
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", cfg.UserAgent),
	}
}

func (r *Reddit) Platform() model.Platform {
	return model.PlatformReddit
}

func (r *Reddit) Authenticate(ctx context.Context) error {
	if r.cfg.ClientID == "" || r.cfg.ClientSecret == "" {
		return fmt.Errorf("reddit client id and secret are required: %w", ErrUnauthorized)
	}
	resp, err := r.client.R().
		SetContext(ctx).
		SetBasicAuth(r.cfg.ClientID, r.cfg.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		Post(r.cfg.AuthURL + "/api/v1/access_token")
	if err != nil {
		return fmt.Errorf("reddit token request: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("reddit token request: %w", ErrUnauthorized)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("reddit token request returned status %d", resp.StatusCode())
	}

	var token redditTokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return fmt.Errorf("reddit token response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("reddit token response carried no token (error %v): %w", token.Error, ErrUnauthorized)
	}
	r.accessToken = token.AccessToken
	log.WithField("expiresIn", token.ExpiresIn).Debug("obtained reddit access token")
	return nil
}

// Search returns the newest posts in the subreddit that match the brand.
func (r *Reddit) Search(ctx context.Context, brand string, subreddit string, opts Options) ([]Post, error) {
	opts = opts.withDefaults()
	if r.accessToken == "" {
		if err := r.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(r.accessToken).
		SetPathParam("subreddit", subreddit).
		SetQueryParams(map[string]string{
			"q":           brand,
			"restrict_sr": "1",
			"sort":        "new",
			"limit":       strconv.Itoa(opts.Limit),
			"t":           redditTimeFilter(opts.Window),
			"raw_json":    "1",
		}).
		Get(r.cfg.APIURL + "/r/{subreddit}/search.json")
	if err != nil {
		return nil, fmt.Errorf("reddit search r/%s: %w", subreddit, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("reddit search r/%s: %w", subreddit, ErrUnauthorized)
	default:
		return nil, fmt.Errorf("reddit search r/%s returned status %d", subreddit, resp.StatusCode())
	}

	var listing redditListing
	if err := json.Unmarshal(resp.Body(), &listing); err != nil {
		return nil, fmt.Errorf("reddit search r/%s response: %w", subreddit, err)
	}

	cutoff := time.Now().Add(-opts.Window)
	var posts []Post
	for _, child := range listing.Data.Children {
		p := child.Data
		sec := int64(p.CreatedUTC)
		created := time.Unix(sec, int64((p.CreatedUTC-float64(sec))*float64(time.Second))).UTC()
		if created.Before(cutoff) {
			continue
		}
		posts = append(posts, Post{
			Permalink: redditPermalink + p.Permalink,
			Title:     p.Title,
			Body:      p.Selftext,
			Created:   created,
		})
		if len(posts) == opts.Limit {
			break
		}
	}
	log.WithField("subreddit", subreddit).WithField("posts", len(posts)).Debug("searched reddit")
	return posts, nil
}

// redditTimeFilter maps a window onto the coarse "t" values the search API accepts.
func redditTimeFilter(window time.Duration) string {
	switch {
	case window <= time.Hour:
		return "hour"
	case window <= 24*time.Hour:
		return "day"
	case window <= 7*24*time.Hour:
		return "week"
	case window <= 31*24*time.Hour:
		return "month"
	case window <= 366*24*time.Hour:
		return "year"
	default:
		return "all"
	}
}
