package model

import (
	"time"

	"github.com/truemediaorg/brandwatch/database/db"
)

type Mention struct {
	ID        int64
	Brand     string
	Source    Platform
	Text      string
	URL       string
	Timestamp time.Time

	// Enrichment labels stay nil until the classifier has produced them.
	Sentiment *string
	Topic     *string
	Urgency   *string
}

// Enriched reports whether all three labels are present.
func (m Mention) Enriched() bool {
	return m.Sentiment != nil && m.Topic != nil && m.Urgency != nil
}

// Label returns the named enrichment label, or "" when it is absent.
// Known fields are "sentiment", "topic" and "urgency".
func (m Mention) Label(field string) string {
	var v *string
	switch field {
	case "sentiment":
		v = m.Sentiment
	case "topic":
		v = m.Topic
	case "urgency":
		v = m.Urgency
	}
	if v == nil {
		return ""
	}
	return *v
}

func MentionFromRow(row db.Mention) (*Mention, error) {
	platform, err := ParsePlatform(row.Source)
	if err != nil {
		return nil, err
	}
	mention := &Mention{
		ID:        row.ID,
		Brand:     row.Brand,
		Source:    platform,
		Text:      row.Text,
		Timestamp: row.Timestamp.UTC(),
		Sentiment: row.Sentiment,
		Topic:     row.Topic,
		Urgency:   row.Urgency,
	}
	if row.URL != nil {
		mention.URL = *row.URL
	}
	return mention, nil
}

// ToRow converts the mention into its persisted shape. An empty URL maps to NULL.
func (m Mention) ToRow() db.Mention {
	row := db.Mention{
		ID:        m.ID,
		Brand:     m.Brand,
		Source:    string(m.Source),
		Text:      m.Text,
		Timestamp: m.Timestamp.UTC(),
		Sentiment: m.Sentiment,
		Topic:     m.Topic,
		Urgency:   m.Urgency,
	}
	if m.URL != "" {
		url := m.URL
		row.URL = &url
	}
	return row
}
