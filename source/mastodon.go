package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/brandwatch/model"
)

// Largest page the tag timeline returns.
const mastodonMaxLimit = 40

type MastodonConfig struct {
	// InstanceURL is the server whose tag timelines are read, e.g. https://mastodon.social.
	InstanceURL string
	// AccessToken is optional; public timelines are readable without one.
	AccessToken string
	UserAgent   string
}

// Mastodon reads hashtag timelines from a single instance.
type Mastodon struct {
	cfg    MastodonConfig
	client *resty.Client
}

type mastodonStatus struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"url"`
	URI         string    `json:"uri"`
	Content     string    `json:"content"`
	SpoilerText string    `json:"spoiler_text"`
}

func NewMastodon(cfg MastodonConfig) *Mastodon {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.InstanceURL, "/")).
		SetTimeout(30*time.Second).
		SetHeader("User-Agent", cfg.UserAgent)
	if cfg.AccessToken != "" {
		client.SetAuthToken(cfg.AccessToken)
	}
	return &Mastodon{cfg: cfg, client: client}
}

func (m *Mastodon) Platform() model.Platform {
	return model.PlatformMastadon
}

func (m *Mastodon) Authenticate(ctx context.Context) error {
	if m.cfg.InstanceURL == "" {
		return fmt.Errorf("mastodon instance url is required")
	}
	if m.cfg.AccessToken == "" {
		return nil
	}
	resp, err := m.client.R().SetContext(ctx).Get("/api/v1/accounts/verify_credentials")
	if err != nil {
		return fmt.Errorf("mastodon verify credentials: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return fmt.Errorf("mastodon verify credentials: %w", ErrUnauthorized)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("mastodon verify credentials returned status %d", resp.StatusCode())
	}
	return nil
}

// Search reads the newest statuses under the hashtag and keeps those that name
// the brand.
func (m *Mastodon) Search(ctx context.Context, brand string, hashtag string, opts Options) ([]Post, error) {
	opts = opts.withDefaults()
	tag := strings.TrimPrefix(strings.TrimSpace(hashtag), "#")
	limit := opts.Limit
	if limit > mastodonMaxLimit {
		limit = mastodonMaxLimit
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetPathParam("tag", tag).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/api/v1/timelines/tag/{tag}")
	if err != nil {
		return nil, fmt.Errorf("mastodon tag #%s: %w", tag, err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("mastodon tag #%s: %w", tag, ErrUnauthorized)
	default:
		return nil, fmt.Errorf("mastodon tag #%s returned status %d", tag, resp.StatusCode())
	}

	var statuses []mastodonStatus
	if err := json.Unmarshal(resp.Body(), &statuses); err != nil {
		return nil, fmt.Errorf("mastodon tag #%s response: %w", tag, err)
	}

	cutoff := time.Now().Add(-opts.Window)
	needle := strings.ToLower(brand)
	var posts []Post
	for _, status := range statuses {
		if status.CreatedAt.Before(cutoff) {
			continue
		}
		body, err := htmlToText(status.Content)
		if err != nil {
			log.WithField("statusID", status.ID).Warnf("unable to parse status content: %v", err)
			continue
		}
		if !strings.Contains(strings.ToLower(status.SpoilerText+" "+body), needle) {
			continue
		}
		permalink := status.URL
		if permalink == "" {
			permalink = status.URI
		}
		posts = append(posts, Post{
			Permalink: permalink,
			Title:     status.SpoilerText,
			Body:      body,
			Created:   status.CreatedAt.UTC(),
		})
	}
	log.WithField("hashtag", tag).WithField("posts", len(posts)).Debug("searched mastodon")
	return posts, nil
}

// htmlToText flattens status HTML, one line per paragraph.
func htmlToText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	doc.Find("br").ReplaceWithHtml("\n")

	var lines []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if line := strings.TrimSpace(p.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) == 0 {
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.Join(lines, "\n"), nil
}
