package chi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chirouter "github.com/go-chi/chi/v5"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
	"github.com/digitalbridge/mongoes/internal/mapping"
	entityrepo "github.com/digitalbridge/mongoes/internal/repository/entity"
	entityuc "github.com/digitalbridge/mongoes/internal/usecase/entity"
	healthuc "github.com/digitalbridge/mongoes/internal/usecase/health"
	reindexuc "github.com/digitalbridge/mongoes/internal/usecase/reindex"
	searchuc "github.com/digitalbridge/mongoes/internal/usecase/search"
)

// memStore keeps documents keyed by "collection/id" in insertion order.
type memStore struct {
	docs  map[string]map[string]any
	order []string
	err   error
}

func newMemStore() *memStore { return &memStore{docs: map[string]map[string]any{}} }

func (m *memStore) FindOne(_ context.Context, collection string, id any) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.docs[fmt.Sprintf("%s/%v", collection, id)]
	if !ok {
		return nil, db.ErrDocumentNotFound
	}
	return doc, nil
}

func (m *memStore) Find(_ context.Context, collection string, offset, limit int) ([]map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []map[string]any
	i := 0
	for _, k := range m.order {
		doc, ok := m.docs[k]
		if !ok || !strings.HasPrefix(k, collection+"/") {
			continue
		}
		if i >= offset && len(out) < limit {
			out = append(out, doc)
		}
		i++
	}
	return out, nil
}

func (m *memStore) Count(ctx context.Context, collection string) (int, error) {
	all, err := m.Find(ctx, collection, 0, len(m.order))
	return len(all), err
}

func (m *memStore) Save(_ context.Context, collection string, id any, doc map[string]any) error {
	k := fmt.Sprintf("%s/%v", collection, id)
	if _, ok := m.docs[k]; !ok {
		m.order = append(m.order, k)
	}
	m.docs[k] = doc
	return nil
}

func (m *memStore) Delete(_ context.Context, collection string, id any) error {
	k := fmt.Sprintf("%s/%v", collection, id)
	if _, ok := m.docs[k]; !ok {
		return db.ErrDocumentNotFound
	}
	delete(m.docs, k)
	return nil
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

// mockIndex fakes the search cluster for both search and admin calls.
type mockIndex struct {
	searchFn  func(ctx context.Context, index string, body map[string]any) (*db.SearchResponse, error)
	createFn  func(ctx context.Context, def *db.IndexDefinition) error
	deleteFn  func(ctx context.Context, name string) error
	refreshFn func(ctx context.Context, names ...string) error
	statsFn   func(ctx context.Context, index string) (map[string]any, error)

	created   []string
	refreshed []string
	mapped    []string
	merged    int
}

func (m *mockIndex) Search(ctx context.Context, index string, body map[string]any) (*db.SearchResponse, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, index, body)
	}
	return &db.SearchResponse{}, nil
}

func (m *mockIndex) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	m.created = append(m.created, def.Name)
	if m.createFn != nil {
		return m.createFn(ctx, def)
	}
	return nil
}

func (m *mockIndex) DeleteIndex(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return nil
}

func (m *mockIndex) Refresh(ctx context.Context, names ...string) error {
	m.refreshed = append(m.refreshed, names...)
	if m.refreshFn != nil {
		return m.refreshFn(ctx, names...)
	}
	return nil
}

func (m *mockIndex) PutMapping(_ context.Context, def *db.IndexDefinition) error {
	m.mapped = append(m.mapped, def.Name)
	return nil
}

func (m *mockIndex) ForceMerge(_ context.Context, _ int) error {
	m.merged++
	return nil
}

func (m *mockIndex) Stats(ctx context.Context, index string) (map[string]any, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, index)
	}
	return map[string]any{}, nil
}

// mockScroll serves a single page of hits and records bulk writes.
type mockScroll struct {
	hits     []db.Hit
	total    int64
	scrollFn func() (*db.ScrollPage, error)
	indexed  map[string][]db.BulkItem
}

func (m *mockScroll) OpenScroll(context.Context, *db.ScrollQuery) (*db.ScrollPage, error) {
	total := m.total
	if total == 0 {
		total = int64(len(m.hits))
	}
	return &db.ScrollPage{ScrollID: "s1", Total: total, Hits: m.hits}, nil
}

func (m *mockScroll) Scroll(context.Context, string, time.Duration) (*db.ScrollPage, error) {
	if m.scrollFn != nil {
		return m.scrollFn()
	}
	return &db.ScrollPage{ScrollID: "s1"}, nil
}

func (m *mockScroll) ClearScroll(context.Context, string) error { return nil }

func (m *mockScroll) Bulk(_ context.Context, index string, items []db.BulkItem) (*db.BulkResult, error) {
	if m.indexed == nil {
		m.indexed = map[string][]db.BulkItem{}
	}
	m.indexed[index] = append(m.indexed[index], items...)
	return &db.BulkResult{Indexed: len(items)}, nil
}

type testEnv struct {
	store  *memStore
	index  *mockIndex
	scroll *mockScroll
	router http.Handler
}

// newTestEnv builds a router over in-memory backends. With auth set, the
// default accounts guard the API.
func newTestEnv(t *testing.T, withSearch, auth bool) *testEnv {
	t.Helper()
	reg, err := asset.NewRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env := &testEnv{store: newMemStore(), index: &mockIndex{}, scroll: &mockScroll{}}
	repo := entityrepo.New(env.store, mapping.NewConverter(reg, mapping.NewFetcher(env.store)), nil)
	entities := entityuc.New(repo)

	var opts []Option
	var searchPinger healthuc.Pinger
	if withSearch {
		svc := searchuc.New(env.index, env.index, repo, searchuc.Config{}, nil)
		pipeline := reindexuc.New(env.scroll, env.scroll, nil, reindexuc.WithDefaults(10, time.Minute))
		opts = append(opts,
			WithSearch(svc),
			WithReindex(pipeline, reindexuc.Request{SourceIndex: searchuc.DefaultIndex, DestIndex: searchuc.DefaultAlias}))
		searchPinger = mockPinger{}
	}
	srv := NewServer(entities, healthuc.New(mockPinger{}, searchPinger), nil, opts...)

	var authenticator *Authenticator
	if auth {
		authenticator = testAuthenticator(t)
	} else {
		authenticator = NewAuthenticator(nil, testHierarchy(t))
	}
	r := chirouter.NewRouter()
	r.Use(authenticator.Middleware)
	srv.Register(r, authenticator)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(method, target)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return serve(e, req)
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, http.NoBody)
}

func serve(e *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// seed stores an address, an asset and a note pointing back at it.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	steps := []struct{ target, body string }{
		{"/api/entities/address", `{"id":"ad1","street":"Morris Park Ave","location":{"type":"Point","coordinates":[-73.856077,40.848447]}}`},
		{"/api/entities/assetwrapper", `{"id":"a1","assetName":"Morris Park Bake Shop","cuisine":"Bakery","address":"ad1"}`},
		{"/api/entities/note", `{"id":"n1","text":"great bread","score":5,"asset":"a1"}`},
	}
	for _, s := range steps {
		if rr := e.do(t, http.MethodPost, s.target, s.body); rr.Code != http.StatusCreated {
			t.Fatalf("seed %s: status %d: %s", s.target, rr.Code, rr.Body.String())
		}
	}
}
