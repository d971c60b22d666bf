package reindex

import (
	"context"
	"time"

	"github.com/digitalbridge/mongoes/internal/db"
)

type mockSource struct {
	openFn   func(ctx context.Context, q *db.ScrollQuery) (*db.ScrollPage, error)
	scrollFn func(ctx context.Context, scrollID string, keepAlive time.Duration) (*db.ScrollPage, error)
	clearFn  func(ctx context.Context, scrollID string) error

	cleared []string
}

func (m *mockSource) OpenScroll(ctx context.Context, q *db.ScrollQuery) (*db.ScrollPage, error) {
	return m.openFn(ctx, q)
}

func (m *mockSource) Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*db.ScrollPage, error) {
	if m.scrollFn == nil {
		return &db.ScrollPage{ScrollID: scrollID}, nil
	}
	return m.scrollFn(ctx, scrollID, keepAlive)
}

func (m *mockSource) ClearScroll(ctx context.Context, scrollID string) error {
	m.cleared = append(m.cleared, scrollID)
	if m.clearFn != nil {
		return m.clearFn(ctx, scrollID)
	}
	return nil
}

// pagedSource serves pages in order; the first through OpenScroll.
func pagedSource(total int64, pages ...[]db.Hit) *mockSource {
	i := 0
	next := func() *db.ScrollPage {
		p := &db.ScrollPage{ScrollID: "s1", Total: total}
		if i < len(pages) {
			p.Hits = pages[i]
		}
		i++
		return p
	}
	return &mockSource{
		openFn: func(context.Context, *db.ScrollQuery) (*db.ScrollPage, error) { return next(), nil },
		scrollFn: func(context.Context, string, time.Duration) (*db.ScrollPage, error) {
			return next(), nil
		},
	}
}

type mockSink struct {
	bulkFn func(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error)

	calls [][]db.BulkItem
}

func (m *mockSink) Bulk(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error) {
	m.calls = append(m.calls, items)
	if m.bulkFn != nil {
		return m.bulkFn(ctx, index, items)
	}
	return &db.BulkResult{Indexed: len(items)}, nil
}

func hits(ids ...string) []db.Hit {
	out := make([]db.Hit, 0, len(ids))
	for _, id := range ids {
		out = append(out, db.Hit{Index: "digitalbridge", ID: id, Source: map[string]any{"aName": id}})
	}
	return out
}

func geoHit(id string, lon, lat float64) db.Hit {
	return db.Hit{
		Index: "digitalbridge",
		ID:    id,
		Source: map[string]any{
			"aName": "asset " + id,
			"address": map[string]any{
				"street": "Morris Park Ave",
				"location": map[string]any{
					"type":        "Point",
					"coordinates": []any{lon, lat},
				},
			},
		},
	}
}
