package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truemediaorg/brandwatch/model"
)

const (
	existsSQL = `SELECT EXISTS\(SELECT 1 FROM mentions WHERE url = \$1\)`
	insertSQL = `INSERT INTO mentions \(brand, source, text, url, "timestamp"\) VALUES \(\$1, \$2, \$3, \$4, \$5\) RETURNING id`
	updateSQL = `UPDATE mentions SET sentiment = \$1, topic = \$2, urgency = \$3 WHERE id = \$4`

	selectColumns     = `SELECT id, brand, source, text, url, "timestamp", sentiment, topic, urgency FROM mentions `
	queryByBrandSQL   = selectColumns + `WHERE brand = $1 ORDER BY "timestamp" DESC, id DESC`
	listUnenrichedSQL = selectColumns + `WHERE (brand = $1 AND (sentiment IS NULL OR topic IS NULL OR urgency IS NULL)) ORDER BY "timestamp" DESC, id DESC`
)

func newMockDatabase(t *testing.T) (*Database, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &Database{pool: mock}, mock
}

func newMention() *model.Mention {
	return &model.Mention{
		Brand:     "acme",
		Source:    model.PlatformReddit,
		Text:      "acme rocks",
		URL:       "https://www.reddit.com/r/acme/comments/abc",
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestInitialize(t *testing.T) {
	t.Run("creates the table and indexes without dropping anything", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS mentions`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
		mock.ExpectExec(`CREATE INDEX IF NOT EXISTS mentions_url_idx`).WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
		mock.ExpectExec(`CREATE INDEX IF NOT EXISTS mentions_brand_timestamp_idx`).WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))

		assert.NoError(t, database.Initialize(context.TODO()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("surfaces schema errors", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS mentions`).WillReturnError(errors.New("permission denied"))

		err := database.Initialize(context.TODO())
		assert.ErrorContains(t, err, "permission denied")
	})
}

func TestExists(t *testing.T) {
	database, mock := newMockDatabase(t)
	mock.ExpectQuery(existsSQL).WithArgs("https://example.com/1").WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := database.Exists(context.TODO(), "https://example.com/1")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	t.Run("inserts a new url and writes back the id", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mention := newMention()
		mock.ExpectBegin()
		mock.ExpectQuery(existsSQL).WithArgs(mention.URL).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(insertSQL).
			WithArgs("acme", "REDDIT", "acme rocks", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))
		mock.ExpectCommit()

		inserted, err := database.Insert(context.TODO(), mention)
		assert.NoError(t, err)
		assert.True(t, inserted)
		assert.Equal(t, int64(42), mention.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inserting the same url twice writes one row", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mention := newMention()
		mock.ExpectBegin()
		mock.ExpectQuery(existsSQL).WithArgs(mention.URL).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(insertSQL).WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectCommit()
		mock.ExpectBegin()
		mock.ExpectQuery(existsSQL).WithArgs(mention.URL).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		first, err := database.Insert(context.TODO(), mention)
		assert.NoError(t, err)
		assert.True(t, first)

		second, err := database.Insert(context.TODO(), newMention())
		assert.NoError(t, err)
		assert.False(t, second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips the existence check when there is no url", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mention := newMention()
		mention.URL = ""
		mock.ExpectBegin()
		mock.ExpectQuery(insertSQL).WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectCommit()

		inserted, err := database.Insert(context.TODO(), mention)
		assert.NoError(t, err)
		assert.True(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and propagates insert failures", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mention := newMention()
		mock.ExpectBegin()
		mock.ExpectQuery(existsSQL).WithArgs(mention.URL).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(insertSQL).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		inserted, err := database.Insert(context.TODO(), mention)
		assert.ErrorContains(t, err, "disk full")
		assert.False(t, inserted)
		assert.Zero(t, mention.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires a brand", func(t *testing.T) {
		database, _ := newMockDatabase(t)
		mention := newMention()
		mention.Brand = ""

		_, err := database.Insert(context.TODO(), mention)
		assert.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("reports an update when the row exists", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mock.ExpectExec(updateSQL).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(5)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		sentiment, topic, urgency := "Negative", "Product Defect/Bug", "High Urgency"
		updated, err := database.Update(context.TODO(), 5, &sentiment, &topic, &urgency)
		assert.NoError(t, err)
		assert.True(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("is silent about unknown ids", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mock.ExpectExec(updateSQL).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), int64(999)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		updated, err := database.Update(context.TODO(), 999, nil, nil, nil)
		assert.NoError(t, err)
		assert.False(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func ptr(s string) *string {
	return &s
}

func mentionRows() *pgxmock.Rows {
	eastern := time.FixedZone("EST", -5*60*60)
	none := (*string)(nil)
	return pgxmock.NewRows([]string{"id", "brand", "source", "text", "url", "timestamp", "sentiment", "topic", "urgency"}).
		AddRow(int64(2), "acme", "REDDIT", "newer", ptr("https://example.com/2"), time.Date(2024, 5, 2, 7, 0, 0, 0, eastern), ptr("Negative"), none, ptr("High Urgency")).
		AddRow(int64(1), "acme", "X", "older", none, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), none, none, none)
}

func TestQueryByBrand(t *testing.T) {
	database, mock := newMockDatabase(t)
	mock.ExpectQuery(regexp.QuoteMeta(queryByBrandSQL)).WithArgs("acme").WillReturnRows(mentionRows())

	mentions, err := database.QueryByBrand(context.TODO(), "acme")
	require.NoError(t, err)
	require.Len(t, mentions, 2)
	assert.NoError(t, mock.ExpectationsWereMet())

	newer, older := mentions[0], mentions[1]
	assert.Equal(t, int64(2), newer.ID)
	assert.Equal(t, model.PlatformReddit, newer.Source)
	assert.Equal(t, "https://example.com/2", newer.URL)
	assert.Equal(t, time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC), newer.Timestamp)
	assert.Equal(t, time.UTC, newer.Timestamp.Location())
	assert.Equal(t, "Negative", *newer.Sentiment)
	assert.Nil(t, newer.Topic)
	assert.False(t, newer.Enriched())

	assert.Equal(t, model.PlatformX, older.Source)
	assert.Equal(t, "", older.URL)
	assert.Nil(t, older.Sentiment)
	assert.Nil(t, older.Urgency)
	assert.True(t, newer.Timestamp.After(older.Timestamp))
}

func TestListUnenriched(t *testing.T) {
	t.Run("selects rows missing any label, newest first", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mock.ExpectQuery(regexp.QuoteMeta(listUnenrichedSQL)).WithArgs("acme").WillReturnRows(mentionRows())

		mentions, err := database.ListUnenriched(context.TODO(), "acme")
		require.NoError(t, err)
		assert.Len(t, mentions, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("surfaces query errors", func(t *testing.T) {
		database, mock := newMockDatabase(t)
		mock.ExpectQuery(regexp.QuoteMeta(listUnenrichedSQL)).WithArgs("acme").WillReturnError(errors.New("connection reset"))

		_, err := database.ListUnenriched(context.TODO(), "acme")
		assert.ErrorContains(t, err, "connection reset")
	})
}
