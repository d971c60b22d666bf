package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/db"
	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
)

// Index settings used by CreateIndex.
const (
	IndexShards   = 5
	IndexReplicas = 1
)

// statsSections must all be present in an index stats report.
var statsSections = []string{"docs", "store", "indexing", "get", "search"}

// CreateIndex creates an empty index with the standard settings.
// The name is lower-cased.
func (s *Service) CreateIndex(ctx context.Context, name string) error {
	def, err := db.NewIndex(strings.ToLower(strings.TrimSpace(name))).
		Shards(IndexShards).
		Replicas(IndexReplicas).
		Build()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := s.admin.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	s.logger.Info("Index created", zap.String("index", def.Name))
	return nil
}

// DropIndex deletes an index. An empty name deletes every index.
// Transport failures carry the delete fault code.
func (s *Service) DropIndex(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	err := s.admin.DeleteIndex(ctx, name)
	if err == nil {
		s.logger.Info("Index dropped", zap.String("index", name))
		return nil
	}
	var te *domain.TransportError
	if errors.As(err, &te) {
		return &domain.TransportError{Op: "drop index " + name, Fault: domain.FaultDeleteFailed, Err: te.Err}
	}
	return fmt.Errorf("drop index %s: %w", name, err)
}

// RefreshIndex refreshes an index, or every index when name is empty.
func (s *Service) RefreshIndex(ctx context.Context, name string) error {
	var names []string
	if name = strings.TrimSpace(name); name != "" {
		names = append(names, name)
	}
	if err := s.admin.Refresh(ctx, names...); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// Optimize merges every index down to one segment.
func (s *Service) Optimize(ctx context.Context) error {
	if err := s.admin.ForceMerge(ctx, 1); err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	s.logger.Info("Indices optimized")
	return nil
}

// Stats returns the total statistics of the asset index.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	raw, err := s.admin.Stats(ctx, s.cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("stats %s: %w", s.cfg.Index, err)
	}
	indices, _ := raw["indices"].(map[string]any)
	index, _ := indices[s.cfg.Index].(map[string]any)
	total, ok := index["total"].(map[string]any)
	if !ok {
		return nil, &domain.ServerError{
			Op: "stats", Fault: domain.FaultIndexMissing,
			Reason: "no statistics for index " + s.cfg.Index,
		}
	}
	for _, section := range statsSections {
		if _, ok := total[section].(map[string]any); !ok {
			return nil, &domain.ServerError{
				Op: "stats", Fault: domain.FaultGeneric,
				Reason: "statistics lack section " + section,
			}
		}
	}
	return total, nil
}

// AssetMapping is the mapping of the reindexed asset documents, with the
// flattened location as a geo_point.
func AssetMapping(index string) (*db.IndexDefinition, error) {
	return db.NewIndex(index).
		Text("address.building").
		GeoPoint(asset.FieldLocation).
		Text("address.street").
		Keyword("address.zipcode").
		Text(asset.FieldAssetName).
		Keyword(asset.FieldBorough).
		Keyword(asset.FieldCuisine).
		Date(asset.FieldLastModified, "").
		Date("notes.date", "strict_date_optional_time").
		Text("notes.note").
		Long("notes.score").
		Keyword("orginalAssetId").
		Build()
}

// CreateGeoPointMapping puts the asset mapping on the reindex destination.
func (s *Service) CreateGeoPointMapping(ctx context.Context) error {
	def, err := AssetMapping(s.cfg.Alias)
	if err != nil {
		return fmt.Errorf("%w: mapping for %s: %w", domain.ErrInvalidInput, s.cfg.Alias, err)
	}
	if err := s.admin.PutMapping(ctx, def); err != nil {
		return fmt.Errorf("put mapping on %s: %w", def.Name, err)
	}
	s.logger.Info("Geo point mapping created", zap.String("index", def.Name))
	return nil
}
