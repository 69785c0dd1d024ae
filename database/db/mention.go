package db

import "time"

type Mention struct {
	ID        int64     `db:"id"`
	Brand     string    `db:"brand"`
	Source    string    `db:"source"`
	Text      string    `db:"text"`
	URL       *string   `db:"url"`
	Timestamp time.Time `db:"timestamp"`
	Sentiment *string   `db:"sentiment"`
	Topic     *string   `db:"topic"`
	Urgency   *string   `db:"urgency"`
}
