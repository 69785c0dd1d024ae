package database

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/truemediaorg/brandwatch/database/db"
	"github.com/truemediaorg/brandwatch/model"

	log "github.com/sirupsen/logrus"
)

// pgxIface is the subset of *pgxpool.Pool the store needs. Each call checks a
// connection out of the pool and returns it when the call (or transaction) ends.
type pgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// mentionExistsSQL is the dedupe lookup shared by Exists and Insert.
const mentionExistsSQL = `SELECT EXISTS(SELECT 1 FROM mentions WHERE url = $1)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var mentionColumns = []string{"id", "brand", "source", "text", "url", `"timestamp"`, "sentiment", "topic", "urgency"}

type Database struct {
	connString string
	pool       pgxIface
}

func NewDatabase(connString string) *Database {
	return &Database{
		connString: connString,
	}
}

func (d *Database) Connect(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, d.connString)
	if err != nil {
		return err
	}
	d.pool = pool
	return nil
}

func (d *Database) Disconnect() {
	if d.pool != nil {
		d.pool.Close()
	}
}

// Initialize creates the mentions table and its lookup indexes if they are missing.
func (d *Database) Initialize(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	log.Debug("mentions schema ready")
	return nil
}

func (d *Database) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx, mentionExistsSQL, url).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Insert stores the mention unless a row with the same url already exists, and
// reports whether a row was written. The existence check and the insert share a
// transaction; this is only race-free while this process is the sole writer.
// Mentions without a url cannot be deduplicated and are always inserted.
func (d *Database) Insert(ctx context.Context, mention *model.Mention) (inserted bool, err error) {
	if mention.Brand == "" {
		return false, errors.New("mention brand is required")
	}
	if mention.Source == "" {
		return false, errors.New("mention source is required")
	}
	row := mention.ToRow()

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil || !inserted {
			_ = tx.Rollback(ctx)
		}
	}()

	if row.URL != nil {
		var exists bool
		if err = tx.QueryRow(ctx, mentionExistsSQL, *row.URL).Scan(&exists); err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	var id int64
	err = tx.QueryRow(ctx, `
	INSERT INTO mentions (brand, source, text, url, "timestamp") VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		row.Brand,
		row.Source,
		row.Text,
		row.URL,
		row.Timestamp, // stored as timestamptz, always UTC
	).Scan(&id)
	if err != nil {
		return false, err
	}
	if err = tx.Commit(ctx); err != nil {
		return false, err
	}
	mention.ID = id
	return true, nil
}

// QueryByBrand returns every mention for the brand, most recent first.
func (d *Database) QueryByBrand(ctx context.Context, brand string) ([]model.Mention, error) {
	return d.selectMentions(ctx, sq.Eq{"brand": brand})
}

// ListUnenriched returns the brand's mentions that are missing at least one label.
func (d *Database) ListUnenriched(ctx context.Context, brand string) ([]model.Mention, error) {
	return d.selectMentions(ctx, sq.And{
		sq.Eq{"brand": brand},
		sq.Or{sq.Eq{"sentiment": nil}, sq.Eq{"topic": nil}, sq.Eq{"urgency": nil}},
	})
}

// Update overwrites the enrichment labels of one mention. A nil label is stored
// as NULL. It returns false without an error when no row has that id.
func (d *Database) Update(ctx context.Context, id int64, sentiment, topic, urgency *string) (bool, error) {
	query, args, err := psql.Update("mentions").
		Set("sentiment", sentiment).
		Set("topic", topic).
		Set("urgency", urgency).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}
	tag, err := d.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		log.WithField("id", id).Debug("no mention updated")
		return false, nil
	}
	return true, nil
}

func (d *Database) selectMentions(ctx context.Context, where sq.Sqlizer) ([]model.Mention, error) {
	query, args, err := psql.Select(mentionColumns...).
		From("mentions").
		Where(where).
		OrderBy(`"timestamp" DESC`, "id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	raws, err := pgx.CollectRows(rows, scanMention)
	if err != nil {
		return nil, err
	}

	mentions := make([]model.Mention, 0, len(raws))
	for _, raw := range raws {
		mention, err := model.MentionFromRow(raw)
		if err != nil {
			return nil, err
		}
		mentions = append(mentions, *mention)
	}
	return mentions, nil
}

func scanMention(row pgx.CollectableRow) (db.Mention, error) {
	var m db.Mention
	err := row.Scan(&m.ID, &m.Brand, &m.Source, &m.Text, &m.URL, &m.Timestamp, &m.Sentiment, &m.Topic, &m.Urgency)
	return m, err
}
