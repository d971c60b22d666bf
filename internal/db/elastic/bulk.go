package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/digitalbridge/mongoes/internal/db"
)

type bulkAction struct {
	Index bulkMeta `json:"index"`
}

type bulkMeta struct {
	Index string `json:"_index,omitempty"`
	ID    string `json:"_id,omitempty"`
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// Bulk indexes items into index, one NDJSON index action per item.
func (c *Client) Bulk(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error) {
	if len(items) == 0 {
		return &db.BulkResult{}, nil
	}

	body, err := encodeBulk(index, items)
	if err != nil {
		return nil, err
	}

	res, err := c.es.Bulk(
		bytes.NewReader(body),
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(index),
	)
	var out bulkResponse
	if err := finish(db.OpBulk, res, err, &out); err != nil {
		return nil, err
	}

	result := &db.BulkResult{}
	for _, item := range out.Items {
		for _, r := range item {
			if r.Error == nil && r.Status < 300 {
				result.Indexed++
				continue
			}
			f := db.BulkFailure{ID: r.ID, Status: r.Status}
			if r.Error != nil {
				f.Reason = r.Error.Type + ": " + r.Error.Reason
			}
			result.Failed = append(result.Failed, f)
		}
	}
	return result, nil
}

func encodeBulk(index string, items []db.BulkItem) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, it := range items {
		if err := enc.Encode(bulkAction{Index: bulkMeta{Index: index, ID: it.ID}}); err != nil {
			return nil, fmt.Errorf("encode bulk action %s: %w", it.ID, err)
		}
		if err := enc.Encode(it.Source); err != nil {
			return nil, fmt.Errorf("encode bulk source %s: %w", it.ID, err)
		}
	}
	return buf.Bytes(), nil
}
