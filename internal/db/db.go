package db

import (
	"context"
	"time"
)

// DocumentStore is the document storage facade used by repositories.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type DocumentStore interface {
	Pinger
	DocumentFinder
	DocumentWriter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentFinder reads documents by id or by page.
type DocumentFinder interface {
	// FindOne returns ErrDocumentNotFound when no document has the id.
	FindOne(ctx context.Context, collection string, id any) (map[string]any, error)
	Find(ctx context.Context, collection string, offset, limit int) ([]map[string]any, error)
	Count(ctx context.Context, collection string) (int, error)
}

// DocumentWriter stores and removes documents.
type DocumentWriter interface {
	// Save inserts or replaces the document stored under id.
	Save(ctx context.Context, collection string, id any, doc map[string]any) error
	Delete(ctx context.Context, collection string, id any) error
}

// ReferenceFetcher is implemented by stores that can load a document straight from a reference,
// without a query against the collection.
type ReferenceFetcher interface {
	FetchReference(ctx context.Context, collection string, id any) (map[string]any, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// SearchIndex is the search service facade.
//
//nolint:interfacebloat // consumers depend on the narrow sub-interfaces
type SearchIndex interface {
	Pinger
	Scroller
	BulkWriter
	Searcher
	IndexAdmin
}

// Scroller pages through a whole index with a server-side cursor.
type Scroller interface {
	OpenScroll(ctx context.Context, q *ScrollQuery) (*ScrollPage, error)
	Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*ScrollPage, error)
	ClearScroll(ctx context.Context, scrollID string) error
}

// BulkWriter indexes many documents in one request.
type BulkWriter interface {
	Bulk(ctx context.Context, index string, items []BulkItem) (*BulkResult, error)
}

// Searcher runs query DSL searches.
type Searcher interface {
	Search(ctx context.Context, index string, body map[string]any) (*SearchResponse, error)
}

// IndexAdmin manages index lifecycle and maintenance.
type IndexAdmin interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DeleteIndex(ctx context.Context, name string) error
	Refresh(ctx context.Context, names ...string) error
	PutMapping(ctx context.Context, def *IndexDefinition) error
	ForceMerge(ctx context.Context, maxSegments int) error
	Stats(ctx context.Context, index string) (map[string]any, error)
}
