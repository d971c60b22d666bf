package refcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain/entity"
)

type mockFetcher struct {
	doc   map[string]any
	err   error
	calls int
}

func (m *mockFetcher) Fetch(_ context.Context, _ entity.Reference) (map[string]any, error) {
	m.calls++
	return m.doc, m.err
}

func (m *mockFetcher) Strategy() string { return "find_one" }

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	delFn func(ctx context.Context, key string) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func newTestCachedFetcher(t *testing.T, inner *mockFetcher) (*CachedFetcher, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cf := New(inner, ms, time.Minute, nil, zap.NewNop())
	return cf, ms
}
