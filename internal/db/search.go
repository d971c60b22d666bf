package db

import (
	"encoding/json"
	"time"
)

// ScrollQuery opens a scroll over an index.
type ScrollQuery struct {
	Index     string
	Query     map[string]any // match_all when nil
	Size      int
	KeepAlive time.Duration
}

// Hit is a single search hit.
type Hit struct {
	Index  string
	ID     string
	Source map[string]any
}

// ScrollPage is one page of a scroll.
type ScrollPage struct {
	ScrollID string
	Total    int64
	Hits     []Hit
}

// BulkItem is one document to index.
type BulkItem struct {
	ID     string
	Source map[string]any
}

// BulkFailure describes an item the server rejected.
type BulkFailure struct {
	ID     string
	Status int
	Reason string
}

// BulkResult summarizes a bulk request.
type BulkResult struct {
	Indexed int
	Failed  []BulkFailure
}

// HasFailures reports whether any item was rejected.
func (r *BulkResult) HasFailures() bool { return len(r.Failed) > 0 }

// SearchResponse is the decoded result of a search.
type SearchResponse struct {
	Total        int64
	Hits         []Hit
	Aggregations map[string]json.RawMessage
}
