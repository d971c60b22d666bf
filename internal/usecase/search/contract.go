package search

import (
	"context"

	"github.com/digitalbridge/mongoes/internal/db"
	domentity "github.com/digitalbridge/mongoes/internal/domain/entity"
)

// Searcher runs query DSL searches against the search service.
type Searcher interface {
	Search(ctx context.Context, index string, body map[string]any) (*db.SearchResponse, error)
}

// IndexAdmin manages indices.
type IndexAdmin interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DeleteIndex(ctx context.Context, name string) error
	Refresh(ctx context.Context, names ...string) error
	PutMapping(ctx context.Context, def *db.IndexDefinition) error
	ForceMerge(ctx context.Context, maxSegments int) error
	Stats(ctx context.Context, index string) (map[string]any, error)
}

// EntityLoader loads stored entities by id, skipping missing ones.
type EntityLoader interface {
	GetMany(ctx context.Context, name string, ids []string) ([]domentity.Entity, error)
}
