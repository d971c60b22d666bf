package elastic

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/digitalbridge/mongoes/internal/db"
)

// allIndices addresses every index when no name is given.
const allIndices = "_all"

// CreateIndex creates an index with the definition's settings and mapping.
func (c *Client) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	body, err := jsonBody(def.Body())
	if err != nil {
		return err
	}
	res, err := c.es.Indices.Create(def.Name,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(body),
	)
	return finish(db.OpCreateIndex, res, err, nil)
}

// DeleteIndex drops an index, or every index when name is empty.
func (c *Client) DeleteIndex(ctx context.Context, name string) error {
	if name == "" {
		name = allIndices
	}
	res, err := c.es.Indices.Delete([]string{name}, c.es.Indices.Delete.WithContext(ctx))
	return finish(db.OpDeleteIndex, res, err, nil)
}

// Refresh makes recent writes searchable. No names refreshes every index.
func (c *Client) Refresh(ctx context.Context, names ...string) error {
	opts := []func(*esapi.IndicesRefreshRequest){c.es.Indices.Refresh.WithContext(ctx)}
	if len(names) > 0 && names[0] != "" {
		opts = append(opts, c.es.Indices.Refresh.WithIndex(names...))
	}
	res, err := c.es.Indices.Refresh(opts...)
	return finish(db.OpRefresh, res, err, nil)
}

// PutMapping adds the definition's fields to an existing index.
func (c *Client) PutMapping(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("put mapping: %w", err)
	}
	body, err := jsonBody(def.Mapping())
	if err != nil {
		return err
	}
	res, err := c.es.Indices.PutMapping([]string{def.Name}, body,
		c.es.Indices.PutMapping.WithContext(ctx),
	)
	return finish(db.OpPutMapping, res, err, nil)
}

// ForceMerge merges the segments of every index down to maxSegments.
func (c *Client) ForceMerge(ctx context.Context, maxSegments int) error {
	res, err := c.es.Indices.Forcemerge(
		c.es.Indices.Forcemerge.WithContext(ctx),
		c.es.Indices.Forcemerge.WithMaxNumSegments(maxSegments),
	)
	return finish(db.OpForceMerge, res, err, nil)
}

// Stats returns the raw indices stats document for index.
func (c *Client) Stats(ctx context.Context, index string) (map[string]any, error) {
	opts := []func(*esapi.IndicesStatsRequest){c.es.Indices.Stats.WithContext(ctx)}
	if index != "" {
		opts = append(opts, c.es.Indices.Stats.WithIndex(index))
	}
	res, err := c.es.Indices.Stats(opts...)
	var out map[string]any
	if err := finish(db.OpStats, res, err, &out); err != nil {
		return nil, err
	}
	return out, nil
}
