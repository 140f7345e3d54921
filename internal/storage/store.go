package storage

import (
	"context"
	"time"
)

// NewsRecord is the persisted form of an ingested article. Records are
// append-only: created once after successful enrichment, never updated
// except for the publish timestamp, never deleted. URL is globally unique
// and enforces at-most-once ingestion per source article.
type NewsRecord struct {
	ID          int64
	Category    string
	Title       string
	Author      string
	Description string
	URL         string
	ImageURL    string
	PublishedAt string
	CreatedAt   time.Time
	// PublishedToChannelAt is set once when the reviewer approves the
	// record; it guards against replayed review actions.
	PublishedToChannelAt *time.Time
}

// Store is the persistence gate for ingested news.
//
// Insert reports false (not an error) when the URL uniqueness constraint
// rejects a duplicate; that is the expected outcome of a concurrent
// producer race. GetByURL and GetByID return (nil, nil) when no record
// matches.
type Store interface {
	Exists(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, rec *NewsRecord) (bool, error)
	GetByURL(ctx context.Context, url string) (*NewsRecord, error)
	GetByID(ctx context.Context, id int64) (*NewsRecord, error)
	// MarkPublished records the publish transition; it reports false when
	// the record was already published.
	MarkPublished(ctx context.Context, id int64) (bool, error)
	Close() error
}
