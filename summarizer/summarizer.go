// Package summarizer turns a brand's enriched mentions into short digests.
package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/truemediaorg/brandwatch/model"
	"github.com/truemediaorg/brandwatch/oracle"
	"github.com/truemediaorg/brandwatch/reporting"
)

const (
	// MaxSourceChars bounds how much mention text is placed in one prompt.
	MaxSourceChars = 4000
	separator      = "\n---\n"

	errorText = "Error generating summary."
)

type Kind string

const (
	KindPositive   Kind = "Positive"
	KindNegative   Kind = "Negative"
	KindSuggestion Kind = "Suggestion"
)

// Filter selects mentions whose label Field equals Value.
type Filter struct {
	Field string
	Value string
}

func (f Filter) Matches(m model.Mention) bool {
	return m.Label(f.Field) == f.Value
}

func (f Filter) String() string {
	return f.Field + ":" + f.Value
}

// ParseFilter reads "field:value", e.g. "topic:Feature Request".
func ParseFilter(s string) (Filter, error) {
	field, value, ok := strings.Cut(s, ":")
	field = strings.ToLower(strings.TrimSpace(field))
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return Filter{}, fmt.Errorf("filter must look like field:value, got %q", s)
	}
	switch field {
	case "sentiment", "topic", "urgency":
		return Filter{Field: field, Value: value}, nil
	default:
		return Filter{}, fmt.Errorf("unknown filter field: %s", field)
	}
}

var DefaultSuggestionFilter = Filter{Field: "sentiment", Value: "Negative"}

type template struct {
	kind   Kind
	filter Filter
	prompt string
	empty  string
}

type Summary struct {
	Kind     Kind
	Text     string
	Mentions int
	Err      error
}

type Summarizer struct {
	oracle oracle.Oracle
	model  string
	sink   reporting.Sink

	positive   template
	negative   template
	suggestion template
}

// NewSummarizer builds the three digests. The suggestion digest reads the
// mentions picked by suggestionFilter.
func NewSummarizer(o oracle.Oracle, model string, sink reporting.Sink, suggestionFilter Filter) *Summarizer {
	return &Summarizer{
		oracle: o,
		model:  model,
		sink:   sink,
		positive: template{
			kind:   KindPositive,
			filter: Filter{Field: "sentiment", Value: "Positive"},
			prompt: positivePrompt,
			empty:  "No positive feedback found to summarize.",
		},
		negative: template{
			kind:   KindNegative,
			filter: Filter{Field: "sentiment", Value: "Negative"},
			prompt: negativePrompt,
			empty:  "No negative feedback found to summarize.",
		},
		suggestion: template{
			kind:   KindSuggestion,
			filter: suggestionFilter,
			prompt: suggestionPrompt,
			empty:  "No suggestions found to summarize.",
		},
	}
}

func (s *Summarizer) Positive(ctx context.Context, mentions []model.Mention) Summary {
	return s.summarize(ctx, s.positive, mentions)
}

func (s *Summarizer) Negative(ctx context.Context, mentions []model.Mention) Summary {
	return s.summarize(ctx, s.negative, mentions)
}

func (s *Summarizer) Suggestions(ctx context.Context, mentions []model.Mention) Summary {
	return s.summarize(ctx, s.suggestion, mentions)
}

// All returns the positive, negative and suggestion digests in that order.
func (s *Summarizer) All(ctx context.Context, mentions []model.Mention) []Summary {
	return []Summary{
		s.Positive(ctx, mentions),
		s.Negative(ctx, mentions),
		s.Suggestions(ctx, mentions),
	}
}

func (s *Summarizer) summarize(ctx context.Context, t template, mentions []model.Mention) Summary {
	var texts []string
	for _, m := range mentions {
		if t.filter.Matches(m) {
			texts = append(texts, m.Text)
		}
	}
	joined := strings.Join(texts, separator)
	if joined == "" {
		return Summary{Kind: t.kind, Text: t.empty}
	}

	prompt := BuildPrompt(t.prompt, joined)
	response, err := s.oracle.Generate(ctx, s.model, prompt)
	if err != nil {
		s.sink.Error(fmt.Sprintf("oracle error (%s Summary): %v", t.kind, err))
		return Summary{Kind: t.kind, Text: errorText, Mentions: len(texts), Err: err}
	}
	return Summary{Kind: t.kind, Text: strings.TrimSpace(response), Mentions: len(texts)}
}

// BuildPrompt places at most MaxSourceChars characters of source text into the
// prompt template.
func BuildPrompt(prompt string, source string) string {
	return fmt.Sprintf(prompt, Truncate(source, MaxSourceChars))
}

// Truncate cuts s to its first n characters without splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
