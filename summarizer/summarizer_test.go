package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/truemediaorg/brandwatch/model"
	"github.com/truemediaorg/brandwatch/reporting"
)

type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) Generate(ctx context.Context, model string, prompt string) (string, error) {
	args := m.Called(ctx, model, prompt)
	return args.String(0), args.Error(1)
}

func labelled(text string, sentiment string, topic string) model.Mention {
	return model.Mention{Brand: "acme", Text: text, Sentiment: &sentiment, Topic: &topic}
}

func TestPositive(t *testing.T) {
	t.Run("returns the fallback without calling the oracle when nothing is positive", func(t *testing.T) {
		oracle := new(MockOracle)
		s := NewSummarizer(oracle, "m", reporting.NewRecorder(nil), DefaultSuggestionFilter)

		summary := s.Positive(context.TODO(), []model.Mention{
			labelled("broken again", "Negative", "Product Defect/Bug"),
			{Brand: "acme", Text: "not yet classified"},
		})
		assert.Equal(t, "No positive feedback found to summarize.", summary.Text)
		assert.NoError(t, summary.Err)
		oracle.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("joins only positive texts with the separator", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Generate", context.TODO(), "m", mock.Anything).Return("\n- people love it\n", nil)
		s := NewSummarizer(oracle, "m", reporting.NewRecorder(nil), DefaultSuggestionFilter)

		summary := s.Positive(context.TODO(), []model.Mention{
			labelled("great support", "Positive", "Positive Review"),
			labelled("terrible price", "Negative", "High Price Complaint"),
			labelled("fast shipping", "Positive", "Positive Review"),
		})
		assert.Equal(t, "- people love it", summary.Text)
		assert.Equal(t, 2, summary.Mentions)

		prompt := oracle.Calls[0].Arguments.String(2)
		assert.Contains(t, prompt, "great support\n---\nfast shipping")
		assert.NotContains(t, prompt, "terrible price")
		assert.Contains(t, prompt, "exactly 3 bullet points")
	})
}

func TestNegativeReportsOracleErrors(t *testing.T) {
	oracle := new(MockOracle)
	oracle.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("model not loaded"))
	sink := reporting.NewRecorder(nil)
	s := NewSummarizer(oracle, "m", sink, DefaultSuggestionFilter)

	summary := s.Negative(context.TODO(), []model.Mention{labelled("awful", "Negative", "Other")})
	assert.Error(t, summary.Err)
	assert.Equal(t, "Error generating summary.", summary.Text)
	assert.Equal(t, []string{"oracle error (Negative Summary): model not loaded"}, sink.Errors())
}

func TestSuggestions(t *testing.T) {
	mentions := []model.Mention{
		labelled("please add dark mode", "Neutral", "Feature Request"),
		labelled("it keeps crashing", "Negative", "Product Defect/Bug"),
	}

	t.Run("defaults to the negative sentiment filter", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)
		s := NewSummarizer(oracle, "m", reporting.NewRecorder(nil), DefaultSuggestionFilter)

		s.Suggestions(context.TODO(), mentions)
		prompt := oracle.Calls[0].Arguments.String(2)
		assert.Contains(t, prompt, "it keeps crashing")
		assert.NotContains(t, prompt, "dark mode")
		assert.Contains(t, prompt, "CUSTOMER SUGGESTIONS")
	})

	t.Run("can filter on the feature request topic instead", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)
		filter, err := ParseFilter("topic:Feature Request")
		assert.NoError(t, err)
		s := NewSummarizer(oracle, "m", reporting.NewRecorder(nil), filter)

		s.Suggestions(context.TODO(), mentions)
		prompt := oracle.Calls[0].Arguments.String(2)
		assert.Contains(t, prompt, "please add dark mode")
		assert.NotContains(t, prompt, "it keeps crashing")
	})
}

func TestAllKeepsOrder(t *testing.T) {
	oracle := new(MockOracle)
	s := NewSummarizer(oracle, "m", reporting.NewRecorder(nil), DefaultSuggestionFilter)

	summaries := s.All(context.TODO(), nil)
	assert.Len(t, summaries, 3)
	assert.Equal(t, KindPositive, summaries[0].Kind)
	assert.Equal(t, KindNegative, summaries[1].Kind)
	assert.Equal(t, KindSuggestion, summaries[2].Kind)
	oracle.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestTruncation(t *testing.T) {
	t.Run("prompt carries at most 4000 characters of source text", func(t *testing.T) {
		oracle := new(MockOracle)
		oracle.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("ok", nil)
		s := NewSummarizer(oracle, "m", reporting.NewRecorder(nil), DefaultSuggestionFilter)

		long := strings.Repeat("a", 3000)
		s.Positive(context.TODO(), []model.Mention{
			labelled(long, "Positive", "Other"),
			labelled(strings.Repeat("b", 3000), "Positive", "Other"),
		})
		prompt := oracle.Calls[0].Arguments.String(2)
		source := prompt[strings.Index(prompt, "POSITIVE CUSTOMER FEEDBACK:\n")+len("POSITIVE CUSTOMER FEEDBACK:\n"):]
		assert.Equal(t, MaxSourceChars, utf8.RuneCountInString(source))
		assert.True(t, strings.HasPrefix(source, long+"\n---\n"))
	})

	t.Run("never splits a multi-byte character", func(t *testing.T) {
		s := strings.Repeat("é", 10)
		got := Truncate(s, 4)
		assert.Equal(t, "éééé", got)
		assert.True(t, utf8.ValidString(got))
	})

	t.Run("leaves short text alone", func(t *testing.T) {
		assert.Equal(t, "short", Truncate("short", MaxSourceChars))
	})
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(" Sentiment : Negative ")
	assert.NoError(t, err)
	assert.Equal(t, Filter{Field: "sentiment", Value: "Negative"}, f)
	assert.Equal(t, "sentiment:Negative", f.String())

	_, err = ParseFilter("brand:acme")
	assert.Error(t, err)
	_, err = ParseFilter("topic")
	assert.Error(t, err)
}
