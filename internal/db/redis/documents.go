package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"github.com/digitalbridge/mongoes/internal/db"
)

// FindOne loads the document stored under collection/id.
func (s *Store) FindOne(ctx context.Context, collection string, id any) (map[string]any, error) {
	key, err := s.documentKey(collection, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.readDocument(ctx, key)
	if err != nil && !errors.Is(err, db.ErrDocumentNotFound) {
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}
	return doc, err
}

// FetchReference loads a referenced document straight from the key the reference maps to.
func (s *Store) FetchReference(ctx context.Context, collection string, id any) (map[string]any, error) {
	return s.FindOne(ctx, collection, id)
}

// Find returns a page of documents ordered by key.
func (s *Store) Find(ctx context.Context, collection string, offset, limit int) ([]map[string]any, error) {
	keys, err := s.Scan(ctx, s.collectionPattern(collection))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	sort.Strings(keys)

	if offset >= len(keys) {
		return []map[string]any{}, nil
	}
	end := len(keys)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	keys = keys[offset:end]

	docs, err := s.readDocuments(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("json.mget %s: %w", collection, err)
	}
	return docs, nil
}

// Count returns the number of documents in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	keys, err := s.Scan(ctx, s.collectionPattern(collection))
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", collection, err)
	}
	return len(keys), nil
}

// Save replaces the document stored under collection/id.
func (s *Store) Save(ctx context.Context, collection string, id any, doc map[string]any) error {
	key, err := s.documentKey(collection, id)
	if err != nil {
		return err
	}
	if err := s.writeDocument(ctx, key, doc); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Delete removes the document stored under collection/id.
func (s *Store) Delete(ctx context.Context, collection string, id any) error {
	key, err := s.documentKey(collection, id)
	if err != nil {
		return err
	}
	n, err := s.del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if n == 0 {
		return db.ErrDocumentNotFound
	}
	return nil
}

func (s *Store) documentKey(collection string, id any) (string, error) {
	sid, err := cast.ToStringE(id)
	if err != nil || sid == "" {
		return "", fmt.Errorf("%w: %v", db.ErrInvalidID, id)
	}
	return s.prefix + collection + ":" + sid, nil
}

func (s *Store) collectionPattern(collection string) string {
	return s.prefix + collection + ":*"
}
