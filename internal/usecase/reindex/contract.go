package reindex

import (
	"context"
	"time"

	"github.com/digitalbridge/mongoes/internal/db"
)

// Source pages through the index being copied.
type Source interface {
	OpenScroll(ctx context.Context, q *db.ScrollQuery) (*db.ScrollPage, error)
	Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*db.ScrollPage, error)
	ClearScroll(ctx context.Context, scrollID string) error
}

// Sink receives the transformed documents.
type Sink interface {
	Bulk(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error)
}
