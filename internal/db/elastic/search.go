package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain"
)

type searchHit struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Source map[string]any `json:"_source"`
}

type searchResult struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Total json.RawMessage `json:"total"`
		Hits  []searchHit     `json:"hits"`
	} `json:"hits"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// total reads hits.total in both the object form and the legacy number form.
func (r *searchResult) total() int64 {
	if len(r.Hits.Total) == 0 {
		return 0
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if json.Unmarshal(r.Hits.Total, &obj) == nil {
		return obj.Value
	}
	var n int64
	_ = json.Unmarshal(r.Hits.Total, &n)
	return n
}

func (r *searchResult) hits() []db.Hit {
	hits := make([]db.Hit, len(r.Hits.Hits))
	for i, h := range r.Hits.Hits {
		hits[i] = db.Hit{Index: h.Index, ID: h.ID, Source: h.Source}
	}
	return hits
}

func (r *searchResult) page() *db.ScrollPage {
	return &db.ScrollPage{ScrollID: r.ScrollID, Total: r.total(), Hits: r.hits()}
}

// OpenScroll runs the initial scroll search. The returned page carries the first hits.
func (c *Client) OpenScroll(ctx context.Context, q *db.ScrollQuery) (*db.ScrollPage, error) {
	query := q.Query
	if query == nil {
		query = map[string]any{"match_all": map[string]any{}}
	}
	body, err := jsonBody(map[string]any{"query": query})
	if err != nil {
		return nil, err
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(q.Index),
		c.es.Search.WithBody(body),
		c.es.Search.WithSize(q.Size),
		c.es.Search.WithScroll(q.KeepAlive),
		c.es.Search.WithTrackTotalHits(true),
	)
	var out searchResult
	if err := finish(db.OpScroll, res, err, &out); err != nil {
		return nil, err
	}
	return out.page(), nil
}

// Scroll fetches the next page of an open scroll.
func (c *Client) Scroll(ctx context.Context, scrollID string, keepAlive time.Duration) (*db.ScrollPage, error) {
	res, err := c.es.Scroll(
		c.es.Scroll.WithContext(ctx),
		c.es.Scroll.WithScrollID(scrollID),
		c.es.Scroll.WithScroll(keepAlive),
	)
	var out searchResult
	if err := finish(db.OpScroll, res, err, &out); err != nil {
		return nil, err
	}
	return out.page(), nil
}

// ClearScroll releases a scroll context. An already expired scroll is not an error.
func (c *Client) ClearScroll(ctx context.Context, scrollID string) error {
	if scrollID == "" {
		return nil
	}
	res, err := c.es.ClearScroll(
		c.es.ClearScroll.WithContext(ctx),
		c.es.ClearScroll.WithScrollID(scrollID),
	)
	err = finish(db.OpClearScroll, res, err, nil)
	var se *domain.ServerError
	if errors.As(err, &se) && se.Status == 404 {
		return nil
	}
	return err
}

// Search runs a query DSL body against index.
func (c *Client) Search(ctx context.Context, index string, body map[string]any) (*db.SearchResponse, error) {
	r, err := jsonBody(body)
	if err != nil {
		return nil, err
	}
	opts := []func(*esapi.SearchRequest){
		c.es.Search.WithContext(ctx),
		c.es.Search.WithBody(r),
	}
	if index != "" {
		opts = append(opts, c.es.Search.WithIndex(index))
	}
	res, err := c.es.Search(opts...)
	var out searchResult
	if err := finish(db.OpSearch, res, err, &out); err != nil {
		return nil, err
	}
	return &db.SearchResponse{
		Total:        out.total(),
		Hits:         out.hits(),
		Aggregations: out.Aggregations,
	}, nil
}
