package database

// The url index backs the dedupe lookup; it is deliberately not UNIQUE.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS mentions (
		id          BIGSERIAL PRIMARY KEY,
		brand       TEXT NOT NULL,
		source      TEXT NOT NULL,
		text        TEXT NOT NULL,
		url         TEXT,
		"timestamp" TIMESTAMPTZ NOT NULL,
		sentiment   TEXT,
		topic       TEXT,
		urgency     TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS mentions_url_idx ON mentions (url)`,
	`CREATE INDEX IF NOT EXISTS mentions_brand_timestamp_idx ON mentions (brand, "timestamp" DESC)`,
}
