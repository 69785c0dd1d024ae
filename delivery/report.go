// Package delivery renders brand reports and ships them to archive and mail.
package delivery

import (
	"time"

	"github.com/truemediaorg/brandwatch/model"
	"github.com/truemediaorg/brandwatch/summarizer"
)

// Labels counted in a report's breakdown, in display order.
var labelFields = []string{"sentiment", "topic", "urgency"}

type Report struct {
	Brand       string    `json:"brand" yaml:"brand"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Mentions    int       `json:"mentions" yaml:"mentions"`
	Enriched    int       `json:"enriched" yaml:"enriched"`
	// Breakdown counts mentions per label value, keyed by label field.
	Breakdown map[string]map[string]int `json:"breakdown" yaml:"breakdown"`
	Summaries []Section                 `json:"summaries" yaml:"summaries"`
}

type Section struct {
	Kind     string `json:"kind" yaml:"kind"`
	Mentions int    `json:"mentions" yaml:"mentions"`
	Text     string `json:"text" yaml:"text"`
	Failed   bool   `json:"failed,omitempty" yaml:"failed,omitempty"`
}

func NewReport(brand string, mentions []model.Mention, summaries []summarizer.Summary, now time.Time) Report {
	report := Report{
		Brand:       brand,
		GeneratedAt: now.UTC(),
		Mentions:    len(mentions),
		Breakdown:   map[string]map[string]int{},
	}
	for _, field := range labelFields {
		report.Breakdown[field] = map[string]int{}
	}
	for _, m := range mentions {
		if m.Enriched() {
			report.Enriched++
		}
		for _, field := range labelFields {
			if value := m.Label(field); value != "" {
				report.Breakdown[field][value]++
			}
		}
	}
	for _, s := range summaries {
		report.Summaries = append(report.Summaries, Section{
			Kind:     string(s.Kind),
			Mentions: s.Mentions,
			Text:     s.Text,
			Failed:   s.Err != nil,
		})
	}
	return report
}
