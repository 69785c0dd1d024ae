package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/truemediaorg/brandwatch/oracle"
	"github.com/truemediaorg/brandwatch/reporting"
)

type Kind string

const (
	KindSentiment Kind = "Sentiment"
	KindTopic     Kind = "Topic"
	KindUrgency   Kind = "Urgency"
)

// Result is the outcome of one classification call. A failed call carries Err
// and no label, which keeps "classified as Neutral" apart from "not classified".
type Result struct {
	Kind  Kind
	Label string
	Err   error
}

func (r Result) OK() bool {
	return r.Err == nil
}

// Value returns the label for storage, or nil when the call failed.
func (r Result) Value() *string {
	if !r.OK() {
		return nil
	}
	label := r.Label
	return &label
}

type Enrichment struct {
	Sentiment Result
	Topic     Result
	Urgency   Result
}

// Failed counts the calls that produced no label.
func (e Enrichment) Failed() int {
	n := 0
	for _, r := range []Result{e.Sentiment, e.Topic, e.Urgency} {
		if !r.OK() {
			n++
		}
	}
	return n
}

type Option func(*Classifier)

func WithValidation(v Validation) Option {
	return func(c *Classifier) {
		c.validation = v
	}
}

type Classifier struct {
	oracle     oracle.Oracle
	model      string
	sink       reporting.Sink
	validation Validation
}

func NewClassifier(o oracle.Oracle, model string, sink reporting.Sink, opts ...Option) *Classifier {
	c := &Classifier{
		oracle: o,
		model:  model,
		sink:   sink,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Sentiment(ctx context.Context, text string) Result {
	return c.classify(ctx, KindSentiment, sentimentInstruction, text)
}

func (c *Classifier) Topic(ctx context.Context, text string) Result {
	return c.classify(ctx, KindTopic, topicInstruction, text)
}

func (c *Classifier) Urgency(ctx context.Context, text string) Result {
	return c.classify(ctx, KindUrgency, urgencyInstruction, text)
}

// Classify runs the three calls one after another. A failure in one of them
// does not stop the others.
func (c *Classifier) Classify(ctx context.Context, text string) Enrichment {
	return Enrichment{
		Sentiment: c.Sentiment(ctx, text),
		Topic:     c.Topic(ctx, text),
		Urgency:   c.Urgency(ctx, text),
	}
}

func (c *Classifier) classify(ctx context.Context, kind Kind, instruction string, text string) Result {
	response, err := c.oracle.Generate(ctx, c.model, buildPrompt(instruction, text))
	if err != nil {
		c.sink.Error(fmt.Sprintf("oracle error (%s): %v", kind, err))
		return Result{Kind: kind, Err: err}
	}
	label, err := validate(c.validation, kind, strings.TrimSpace(response))
	if err != nil {
		c.sink.Warn(fmt.Sprintf("rejected %s label: %v", strings.ToLower(string(kind)), err))
		return Result{Kind: kind, Err: err}
	}
	return Result{Kind: kind, Label: label}
}
