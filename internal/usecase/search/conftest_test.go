package search

import (
	"context"

	"github.com/digitalbridge/mongoes/internal/db"
	domentity "github.com/digitalbridge/mongoes/internal/domain/entity"
)

type mockSearcher struct {
	searchFn func(ctx context.Context, index string, body map[string]any) (*db.SearchResponse, error)

	lastIndex string
	lastBody  map[string]any
}

func (m *mockSearcher) Search(ctx context.Context, index string, body map[string]any) (*db.SearchResponse, error) {
	m.lastIndex = index
	m.lastBody = body
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body)
	}
	return &db.SearchResponse{}, nil
}

type mockAdmin struct {
	createFn     func(ctx context.Context, def *db.IndexDefinition) error
	deleteFn     func(ctx context.Context, name string) error
	refreshFn    func(ctx context.Context, names ...string) error
	putMappingFn func(ctx context.Context, def *db.IndexDefinition) error
	mergeFn      func(ctx context.Context, maxSegments int) error
	statsFn      func(ctx context.Context, index string) (map[string]any, error)
}

func (m *mockAdmin) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createFn != nil {
		return m.createFn(ctx, def)
	}
	return nil
}

func (m *mockAdmin) DeleteIndex(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

func (m *mockAdmin) Refresh(ctx context.Context, names ...string) error {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, names...)
	}
	return nil
}

func (m *mockAdmin) PutMapping(ctx context.Context, def *db.IndexDefinition) error {
	if m.putMappingFn != nil {
		return m.putMappingFn(ctx, def)
	}
	return nil
}

func (m *mockAdmin) ForceMerge(ctx context.Context, maxSegments int) error {
	if m.mergeFn != nil {
		return m.mergeFn(ctx, maxSegments)
	}
	return nil
}

func (m *mockAdmin) Stats(ctx context.Context, index string) (map[string]any, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, index)
	}
	return map[string]any{}, nil
}

type mockLoader struct {
	getManyFn func(ctx context.Context, name string, ids []string) ([]domentity.Entity, error)
}

func (m *mockLoader) GetMany(ctx context.Context, name string, ids []string) ([]domentity.Entity, error) {
	return m.getManyFn(ctx, name, ids)
}
