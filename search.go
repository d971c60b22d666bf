package mongoes

import (
	"context"
	"fmt"

	entityuc "github.com/digitalbridge/mongoes/internal/usecase/entity"
	searchuc "github.com/digitalbridge/mongoes/internal/usecase/search"
)

// Facet aggregation names.
const (
	FacetCuisine   = searchuc.AggCuisine
	FacetBorough   = searchuc.AggBorough
	FacetDateRange = searchuc.AggDateRange
)

// Facets maps aggregation name to bucket key to document count. Date range
// keys read "from|to", with "*" for an open bound.
type Facets = map[string]map[string]int64

// SearchService runs asset searches and administers the search index.
// Every method returns ErrSearchDisabled without WithElasticsearch.
type SearchService struct {
	svc      *searchuc.Service
	entities *entityuc.Service
}

func (s *SearchService) enabled() error {
	if s.svc == nil {
		return ErrSearchDisabled
	}
	return nil
}

// Query matches text against asset name and cuisine and returns the
// matching assets loaded from the document store.
func (s *SearchService) Query(ctx context.Context, text string, limit int) ([]View, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	beans, err := s.svc.Search(ctx, text, limit)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	views, err := s.entities.Views(beans)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return views, nil
}

// Facets counts assets per cuisine, borough and month, restricted by
// filters. Date fields take {"from": ..., "to": ...} values, other keys
// take terms.
func (s *SearchService) Facets(ctx context.Context, filters map[string][]any, refresh bool) (Facets, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	expr, err := s.svc.ParseFilters(filters)
	if err != nil {
		return nil, fmt.Errorf("facets: %w", err)
	}
	out, err := s.svc.Facets(ctx, expr, refresh)
	if err != nil {
		return nil, fmt.Errorf("facets: %w", err)
	}
	return out, nil
}

// CreateIndex creates an empty index.
func (s *SearchService) CreateIndex(ctx context.Context, name string) error {
	if err := s.enabled(); err != nil {
		return err
	}
	return s.svc.CreateIndex(ctx, name) //nolint:wrapcheck // usecase names the index
}

// DropIndex deletes an index, or every index when name is empty.
func (s *SearchService) DropIndex(ctx context.Context, name string) error {
	if err := s.enabled(); err != nil {
		return err
	}
	return s.svc.DropIndex(ctx, name) //nolint:wrapcheck // usecase names the index
}

// Refresh refreshes an index, or every index when name is empty.
func (s *SearchService) Refresh(ctx context.Context, name string) error {
	if err := s.enabled(); err != nil {
		return err
	}
	return s.svc.RefreshIndex(ctx, name) //nolint:wrapcheck // usecase names the index
}

// CreateGeoPointMapping maps the flattened asset location as a geo_point
// on the alias index.
func (s *SearchService) CreateGeoPointMapping(ctx context.Context) error {
	if err := s.enabled(); err != nil {
		return err
	}
	return s.svc.CreateGeoPointMapping(ctx) //nolint:wrapcheck // usecase names the index
}

// Optimize force-merges the indices down to one segment.
func (s *SearchService) Optimize(ctx context.Context) error {
	if err := s.enabled(); err != nil {
		return err
	}
	return s.svc.Optimize(ctx) //nolint:wrapcheck // usecase error carries context
}

// Stats returns the total statistics of the asset index.
func (s *SearchService) Stats(ctx context.Context) (map[string]any, error) {
	if err := s.enabled(); err != nil {
		return nil, err
	}
	return s.svc.Stats(ctx) //nolint:wrapcheck // usecase names the index
}
