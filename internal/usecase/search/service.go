// Package search runs full-text and facet searches over the asset index and
// administers the search indices.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/domain"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
	domentity "github.com/digitalbridge/mongoes/internal/domain/entity"
)

// Defaults for Config fields left empty.
const (
	DefaultIndex     = "digitalbridge"
	DefaultAlias     = "digitalbridge_alias"
	DefaultLimit     = 10
	MaxLimit         = 1000
	DefaultTermsSize = 10000
)

// Config names the indices the service works on.
type Config struct {
	Index      string   // source index searched and reported on
	Alias      string   // destination of reindex and the geo_point mapping
	DateFields []string // facet keys filtered by date ranges
	TermsSize  int      // bucket count of the terms aggregations
}

func (c *Config) applyDefaults() {
	if c.Index == "" {
		c.Index = DefaultIndex
	}
	if c.Alias == "" {
		c.Alias = DefaultAlias
	}
	if len(c.DateFields) == 0 {
		c.DateFields = []string{asset.FieldLastModified}
	}
	if c.TermsSize <= 0 {
		c.TermsSize = DefaultTermsSize
	}
}

// Service handles asset search and index administration.
type Service struct {
	searcher Searcher
	admin    IndexAdmin
	entities EntityLoader
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a search service.
func New(searcher Searcher, admin IndexAdmin, entities EntityLoader, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		searcher: searcher,
		admin:    admin,
		entities: entities,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// Search matches text against asset name and cuisine and loads the matching
// assets from the document store in hit order.
func (s *Service) Search(ctx context.Context, text string, limit int) ([]domentity.Entity, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: search text is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit must be at most %d", domain.ErrInvalidInput, MaxLimit)
	}

	res, err := s.searcher.Search(ctx, s.cfg.Index, map[string]any{
		"size":    limit,
		"_source": false,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  text,
				"fields": []string{asset.FieldAssetName, asset.FieldCuisine},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.cfg.Index, err)
	}
	if len(res.Hits) == 0 {
		return []domentity.Entity{}, nil
	}

	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	out, err := s.entities.GetMany(ctx, asset.EntityAssetWrapper, ids)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	if len(out) < len(ids) {
		s.logger.Warn("Search hits missing from the document store",
			zap.Int("hits", len(ids)),
			zap.Int("loaded", len(out)))
	}
	return out, nil
}
