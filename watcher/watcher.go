// Package watcher runs a brand through fetch, dedupe-insert, enrichment and summarization.
package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/lucsky/cuid"
	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/brandwatch/classifier"
	"github.com/truemediaorg/brandwatch/model"
	"github.com/truemediaorg/brandwatch/reporting"
	"github.com/truemediaorg/brandwatch/source"
	"github.com/truemediaorg/brandwatch/summarizer"
)

type Store interface {
	Insert(ctx context.Context, mention *model.Mention) (bool, error)
	QueryByBrand(ctx context.Context, brand string) ([]model.Mention, error)
	ListUnenriched(ctx context.Context, brand string) ([]model.Mention, error)
	Update(ctx context.Context, id int64, sentiment, topic, urgency *string) (bool, error)
}

type Classifier interface {
	Classify(ctx context.Context, text string) classifier.Enrichment
}

type Summarizer interface {
	All(ctx context.Context, mentions []model.Mention) []summarizer.Summary
}

// Binding pairs an adapter with the feeds it is searched on.
type Binding struct {
	Adapter source.Adapter
	Feeds   []string
}

type RunResult struct {
	ID       string
	Brand    string
	Added    int
	Enriched int
}

type Watcher struct {
	store      Store
	bindings   []Binding
	classifier Classifier
	summarizer Summarizer
	sink       reporting.Sink
	opts       source.Options
}

func NewWatcher(store Store, bindings []Binding, classifier Classifier, summarizer Summarizer, sink reporting.Sink, opts source.Options) *Watcher {
	return &Watcher{
		store:      store,
		bindings:   bindings,
		classifier: classifier,
		summarizer: summarizer,
		sink:       sink,
		opts:       opts,
	}
}

// Fetch searches every bound feed for the brand and stores the posts not seen
// before. It returns how many mentions were added. Only store errors are returned;
// feed and credential failures go to the sink.
func (w *Watcher) Fetch(ctx context.Context, brand string) (int, error) {
	processed := map[string]struct{}{}
	total := 0
	for _, binding := range w.bindings {
		added, err := w.fetchBinding(ctx, brand, binding, processed)
		if err != nil {
			return total, err
		}
		total += added
	}
	return total, nil
}

func (w *Watcher) fetchBinding(ctx context.Context, brand string, binding Binding, processed map[string]struct{}) (int, error) {
	platform := binding.Adapter.Platform()
	logger := log.WithField("brand", brand).WithField("platform", platform)

	if err := binding.Adapter.Authenticate(ctx); err != nil {
		w.reportAdapterError(platform, err)
		return 0, nil
	}

	added := 0
	for _, feed := range binding.Feeds {
		posts, err := binding.Adapter.Search(ctx, brand, feed, w.opts)
		if err != nil {
			if ctx.Err() != nil {
				return added, ctx.Err()
			}
			// feed names can contain "401", so only the wrapped sentinel counts here
			if errors.Is(err, source.ErrUnauthorized) {
				// a rejected credential fails every remaining feed the same way
				w.reportAdapterError(platform, err)
				return 0, nil
			}
			w.sink.Warn(fmt.Sprintf("Could not fetch from %s feed %s: %v", platform, feed, err))
			continue
		}

		for _, post := range posts {
			url := post.Permalink
			if url != "" {
				if _, ok := processed[url]; ok {
					continue
				}
				processed[url] = struct{}{}
			}
			mention := &model.Mention{
				Brand:     brand,
				Source:    platform,
				Text:      post.Text(),
				URL:       url,
				Timestamp: post.Created,
			}
			inserted, err := w.store.Insert(ctx, mention)
			if err != nil {
				return added, fmt.Errorf("insert mention %s: %w", url, err)
			}
			if inserted {
				added++
				logger.WithField("mentionID", mention.ID).WithField("url", url).Debug("added mention")
			}
		}
		logger.WithField("feed", feed).WithField("posts", len(posts)).Info("fetched feed")
	}
	return added, nil
}

func (w *Watcher) reportAdapterError(platform model.Platform, err error) {
	if source.IsAuthError(err) {
		w.sink.Error(fmt.Sprintf("%s API error: %v. Please check your credentials.", platform, err))
		return
	}
	w.sink.Error(fmt.Sprintf("%s API error: %v", platform, err))
}

// Enrich classifies every mention of the brand that is missing a label and
// stores the results. A label whose call failed keeps its stored value, so the
// mention stays unenriched and is retried on the next run.
func (w *Watcher) Enrich(ctx context.Context, brand string) (int, error) {
	mentions, err := w.store.ListUnenriched(ctx, brand)
	if err != nil {
		return 0, fmt.Errorf("list unenriched mentions: %w", err)
	}

	enriched := 0
	for _, mention := range mentions {
		if err := ctx.Err(); err != nil {
			return enriched, err
		}
		result := w.classifier.Classify(ctx, mention.Text)
		if result.Failed() == 3 {
			continue
		}
		ok, err := w.store.Update(ctx, mention.ID,
			labelOr(result.Sentiment, mention.Sentiment),
			labelOr(result.Topic, mention.Topic),
			labelOr(result.Urgency, mention.Urgency),
		)
		if err != nil {
			return enriched, fmt.Errorf("update mention %d: %w", mention.ID, err)
		}
		if !ok {
			w.sink.Warn(fmt.Sprintf("mention %d no longer exists", mention.ID))
			continue
		}
		enriched++
	}
	log.WithField("brand", brand).WithField("pending", len(mentions)).WithField("enriched", enriched).Info("enriched mentions")
	return enriched, nil
}

func labelOr(result classifier.Result, current *string) *string {
	if result.OK() {
		return result.Value()
	}
	return current
}

// Summarize builds the positive, negative and suggestion digests over every
// stored mention of the brand.
func (w *Watcher) Summarize(ctx context.Context, brand string) ([]summarizer.Summary, error) {
	mentions, err := w.store.QueryByBrand(ctx, brand)
	if err != nil {
		return nil, fmt.Errorf("query mentions: %w", err)
	}
	return w.summarizer.All(ctx, mentions), nil
}

// Mentions returns every stored mention of the brand, newest first.
func (w *Watcher) Mentions(ctx context.Context, brand string) ([]model.Mention, error) {
	return w.store.QueryByBrand(ctx, brand)
}

// Run fetches new mentions for the brand and enriches everything pending.
func (w *Watcher) Run(ctx context.Context, brand string) (RunResult, error) {
	result := RunResult{ID: cuid.New(), Brand: brand}
	logger := log.WithField("runID", result.ID).WithField("brand", brand)
	logger.Info("starting run")

	added, err := w.Fetch(ctx, brand)
	result.Added = added
	if err != nil {
		return result, fmt.Errorf("run %s: fetch: %w", result.ID, err)
	}
	enriched, err := w.Enrich(ctx, brand)
	result.Enriched = enriched
	if err != nil {
		return result, fmt.Errorf("run %s: enrich: %w", result.ID, err)
	}

	logger.WithField("added", added).WithField("enriched", enriched).Info("finished run")
	return result, nil
}
