// Package source fetches candidate posts that mention a brand from social feeds.
package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/truemediaorg/brandwatch/model"
)

const (
	DefaultLimit  = 20
	DefaultWindow = 24 * time.Hour
)

// ErrUnauthorized is returned when a platform rejects the configured credentials.
var ErrUnauthorized = errors.New("401 unauthorized")

// Options bounds a single feed search.
type Options struct {
	// Limit is the maximum number of posts returned per feed.
	Limit int
	// Window keeps only posts created within this duration before now.
	Window time.Duration
}

func (o Options) withDefaults() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	return o
}

type Post struct {
	Permalink string
	Title     string
	Body      string
	Created   time.Time
}

// Text is the stored form of a post: title and body joined by a space.
// Posts without a title store the body alone.
func (p Post) Text() string {
	if p.Title == "" {
		return p.Body
	}
	return p.Title + " " + p.Body
}

type Adapter interface {
	Platform() model.Platform
	Authenticate(ctx context.Context) error
	// Search returns posts from one feed (a subreddit, a hashtag, an X query).
	Search(ctx context.Context, brand string, feed string, opts Options) ([]Post, error)
}

// IsAuthError reports whether err means the credentials were rejected. The
// message check is for errors from clients that do not wrap ErrUnauthorized;
// Search errors name their feed, so callers should test those with errors.Is.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUnauthorized) || strings.Contains(err.Error(), "401")
}
