package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/vestnikbot/vestnik/internal/logger"
)

// PostgresStore keeps ingested news in a PostgreSQL table with a unique
// constraint on the article URL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres store connected")
	return store, nil
}

// initSchema creates the news table if it doesn't exist. Idempotent.
func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news (
		id SERIAL PRIMARY KEY,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL UNIQUE,
		image_url TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		published_to_channel_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_news_url ON news(url);
	`

	if _, err := ps.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (ps *PostgresStore) Exists(ctx context.Context, url string) (bool, error) {
	var count int
	err := ps.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM news WHERE url = $1`, url).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check url: %w", err)
	}
	return count > 0, nil
}

func (ps *PostgresStore) Insert(ctx context.Context, rec *NewsRecord) (bool, error) {
	res, err := ps.db.ExecContext(ctx, `
		INSERT INTO news (category, title, author, description, url, image_url, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (url) DO NOTHING
	`, rec.Category, rec.Title, rec.Author, rec.Description, rec.URL, rec.ImageURL, rec.PublishedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert news: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	// Zero rows means the uniqueness constraint rejected a duplicate: the
	// expected race outcome, not a failure. The assigned id is recovered
	// by the caller via GetByURL.
	return rows > 0, nil
}

const selectColumns = `id, category, title, author, description, url, image_url, published_at, created_at, published_to_channel_at`

func (ps *PostgresStore) GetByURL(ctx context.Context, url string) (*NewsRecord, error) {
	row := ps.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM news WHERE url = $1`, url)
	return scanRecord(row)
}

func (ps *PostgresStore) GetByID(ctx context.Context, id int64) (*NewsRecord, error) {
	row := ps.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM news WHERE id = $1`, id)
	return scanRecord(row)
}

func (ps *PostgresStore) MarkPublished(ctx context.Context, id int64) (bool, error) {
	res, err := ps.db.ExecContext(ctx, `
		UPDATE news SET published_to_channel_at = NOW()
		WHERE id = $1 AND published_to_channel_at IS NULL
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark published: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

func scanRecord(row *sql.Row) (*NewsRecord, error) {
	var rec NewsRecord
	var publishedAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.Category, &rec.Title, &rec.Author, &rec.Description,
		&rec.URL, &rec.ImageURL, &rec.PublishedAt, &rec.CreatedAt, &publishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan news row: %w", err)
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		rec.PublishedToChannelAt = &t
	}
	return &rec, nil
}
