package mapping

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain/entity"
	"github.com/digitalbridge/mongoes/internal/metrics"
)

// Fetch strategy names, also used as metric labels.
const (
	StrategyDirect  = "direct"
	StrategyFindOne = "find_one"
)

// Fetcher loads the document a reference points at.
// A missing document is reported as (nil, nil).
type Fetcher interface {
	Fetch(ctx context.Context, ref entity.Reference) (map[string]any, error)
	Strategy() string
}

// documentFinder is the part of db.DocumentStore the findOne strategy needs.
type documentFinder interface {
	FindOne(ctx context.Context, collection string, id any) (map[string]any, error)
}

// NewFetcher picks the fetch strategy for store once: direct when the store can
// resolve references itself, findOne against the collection otherwise.
func NewFetcher(store documentFinder) Fetcher {
	if rf, ok := store.(db.ReferenceFetcher); ok {
		return &DirectFetcher{store: rf}
	}
	return &FindOneFetcher{store: store}
}

// DirectFetcher asks the store to dereference directly.
type DirectFetcher struct {
	store db.ReferenceFetcher
}

// Fetch implements Fetcher.
func (f *DirectFetcher) Fetch(ctx context.Context, ref entity.Reference) (map[string]any, error) {
	doc, err := f.store.FetchReference(ctx, ref.Collection, ref.ID)
	return observe(StrategyDirect, ref, doc, err)
}

// Strategy implements Fetcher.
func (f *DirectFetcher) Strategy() string { return StrategyDirect }

// FindOneFetcher queries the referenced collection by id.
type FindOneFetcher struct {
	store documentFinder
}

// Fetch implements Fetcher.
func (f *FindOneFetcher) Fetch(ctx context.Context, ref entity.Reference) (map[string]any, error) {
	doc, err := f.store.FindOne(ctx, ref.Collection, ref.ID)
	return observe(StrategyFindOne, ref, doc, err)
}

// Strategy implements Fetcher.
func (f *FindOneFetcher) Strategy() string { return StrategyFindOne }

func observe(strategy string, ref entity.Reference, doc map[string]any, err error) (map[string]any, error) {
	switch {
	case errors.Is(err, db.ErrDocumentNotFound):
		metrics.ReferenceFetchesTotal.WithLabelValues(strategy, "missing").Inc()
		return nil, nil
	case err != nil:
		metrics.ReferenceFetchesTotal.WithLabelValues(strategy, "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	case doc == nil:
		metrics.ReferenceFetchesTotal.WithLabelValues(strategy, "missing").Inc()
		return nil, nil
	}
	metrics.ReferenceFetchesTotal.WithLabelValues(strategy, "found").Inc()
	return doc, nil
}
