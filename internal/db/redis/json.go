package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/digitalbridge/mongoes/internal/db"
)

// rootPath addresses the whole RedisJSON document.
const rootPath = "$"

// writeDocument stores doc as the root JSON value of key.
func (s *Store) writeDocument(ctx context.Context, key string, doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args(rootPath, string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// readDocument loads the root JSON value of key. A missing key is db.ErrDocumentNotFound.
func (s *Store) readDocument(ctx context.Context, key string) (map[string]any, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if rueidis.IsRedisNil(err) || (err == nil && raw == "") {
		return nil, db.ErrDocumentNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	return decodeDocument(key, raw)
}

// readDocuments loads many documents in one JSON.MGET. Keys removed since
// they were listed are skipped, so the result may be shorter than keys.
func (s *Store) readDocuments(ctx context.Context, keys []string) ([]map[string]any, error) {
	if len(keys) == 0 {
		return []map[string]any{}, nil
	}
	cmd := s.b().Arbitrary("JSON.MGET").Keys(keys...).Args(".").Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	docs := make([]map[string]any, 0, len(msgs))
	for i, m := range msgs {
		raw, err := m.ToString()
		if rueidis.IsRedisNil(err) {
			continue
		}
		if err != nil {
			return nil, &db.Error{Op: db.OpJSONGet, Err: err}
		}
		doc, err := decodeDocument(keys[i], raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func decodeDocument(key, raw string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc, nil
}
