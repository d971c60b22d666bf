package entity

import (
	"context"
	"fmt"
	"testing"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
	"github.com/digitalbridge/mongoes/internal/mapping"
)

// memStore is an in-memory document store keyed by "collection/id".
type memStore struct {
	docs   map[string]map[string]any
	saveFn func(ctx context.Context, collection string, id any, doc map[string]any) error
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]map[string]any{}}
}

func key(collection string, id any) string { return fmt.Sprintf("%s/%v", collection, id) }

func (m *memStore) FindOne(_ context.Context, collection string, id any) (map[string]any, error) {
	doc, ok := m.docs[key(collection, id)]
	if !ok {
		return nil, db.ErrDocumentNotFound
	}
	return doc, nil
}

func (m *memStore) Find(_ context.Context, collection string, offset, limit int) ([]map[string]any, error) {
	var out []map[string]any
	for i := 0; ; i++ {
		doc, ok := m.docs[key(collection, fmt.Sprintf("x%d", i))]
		if !ok {
			break
		}
		if i >= offset && (limit <= 0 || len(out) < limit) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memStore) Count(_ context.Context, collection string) (int, error) {
	n := 0
	prefix := collection + "/"
	for k := range m.docs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Save(ctx context.Context, collection string, id any, doc map[string]any) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, collection, id, doc)
	}
	m.docs[key(collection, id)] = doc
	return nil
}

func (m *memStore) Delete(_ context.Context, collection string, id any) error {
	k := key(collection, id)
	if _, ok := m.docs[k]; !ok {
		return db.ErrDocumentNotFound
	}
	delete(m.docs, k)
	return nil
}

type recordingCache struct {
	invalidated []string
}

func (r *recordingCache) Invalidate(_ context.Context, collection string, id any) {
	r.invalidated = append(r.invalidated, key(collection, id))
}

func newTestRepo(t *testing.T) (*Repo, *memStore, *recordingCache) {
	t.Helper()
	reg, err := asset.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := newMemStore()
	cache := &recordingCache{}
	return New(s, mapping.NewConverter(reg, mapping.NewFetcher(s)), cache), s, cache
}
