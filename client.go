// Package mongoes maps document-store entities with inter-document
// references and mirrors the assets into Elasticsearch for search.
package mongoes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/db"
	dbElastic "github.com/digitalbridge/mongoes/internal/db/elastic"
	dbMongo "github.com/digitalbridge/mongoes/internal/db/mongo"
	dbRedis "github.com/digitalbridge/mongoes/internal/db/redis"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
	"github.com/digitalbridge/mongoes/internal/mapping"
	"github.com/digitalbridge/mongoes/internal/metrics"
	entityrepo "github.com/digitalbridge/mongoes/internal/repository/entity"
	"github.com/digitalbridge/mongoes/internal/repository/refcache"
	entityuc "github.com/digitalbridge/mongoes/internal/usecase/entity"
	reindexuc "github.com/digitalbridge/mongoes/internal/usecase/reindex"
	searchuc "github.com/digitalbridge/mongoes/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the mongoes SDK entry point.
type Client struct {
	store     db.DocumentStore
	cache     *dbRedis.Store
	entitySvc *entityuc.Service
	searchSvc *searchuc.Service
	pipeline  *reindexuc.Pipeline
	logger    *zap.Logger
}

// New creates a Client and waits for the document store to answer.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(context.Background(), cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("mongoes: database not ready: %w", err)
	}

	var index db.SearchIndex
	if len(cfg.searchAddrs) > 0 {
		es, err := dbElastic.NewClient(dbElastic.Config{
			Addrs:      cfg.searchAddrs,
			Username:   cfg.searchUsername,
			Password:   cfg.searchPassword,
			MaxRetries: cfg.searchMaxRetries,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("mongoes: create search client: %w", err)
		}
		index = es
	}

	var cache *dbRedis.Store
	if len(cfg.cacheAddrs) > 0 {
		cache, err = dbRedis.NewStore(dbRedis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("mongoes: create reference cache: %w", err)
		}
	}

	c, err := wireClient(store, index, cache, cfg)
	if err != nil {
		store.Close()
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.DocumentStore, error) {
	switch cfg.driver {
	case DriverMongo:
		s, err := dbMongo.NewStore(dbMongo.Config{URI: cfg.uri, Database: cfg.database})
		if err != nil {
			return nil, fmt.Errorf("mongoes: create mongo store: %w", err)
		}
		return s, nil
	case DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Password:  cfg.password,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("mongoes: create redis store: %w", err)
		}
		return s, nil
	case "":
		return nil, errors.New("mongoes: document store required (use WithMongo or WithRedis)")
	default:
		return nil, fmt.Errorf("mongoes: unknown driver %q", cfg.driver)
	}
}

// wireClient builds the services over connected backends. index and cache may be nil.
func wireClient(store db.DocumentStore, index db.SearchIndex, cache *dbRedis.Store, cfg *clientConfig) (*Client, error) {
	registry, err := asset.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("mongoes: entity registry: %w", err)
	}

	metrics.Register()

	fetcher := mapping.NewFetcher(store)
	var repo *entityrepo.Repo
	if cache != nil {
		cached := refcache.New(fetcher, cache, cfg.cacheTTL, metrics.ReferenceCacheTotal, cfg.logger)
		repo = entityrepo.New(store, mapping.NewConverter(registry, cached), cached)
	} else {
		repo = entityrepo.New(store, mapping.NewConverter(registry, fetcher), nil)
	}
	cfg.logger.Debug("Reference fetch strategy", zap.String("strategy", fetcher.Strategy()))

	c := &Client{
		store:     store,
		cache:     cache,
		entitySvc: entityuc.New(repo).WithPagination(cfg.defaultPageSize, cfg.maxPageSize),
		logger:    cfg.logger,
	}
	if index == nil {
		return c, nil
	}

	c.searchSvc = searchuc.New(index, index, repo, searchuc.Config{
		Index:      cfg.index,
		Alias:      cfg.alias,
		DateFields: cfg.dateFields,
	}, cfg.logger)

	pipelineOpts := []reindexuc.Option{reindexuc.WithDefaults(cfg.pageSize, cfg.keepAlive)}
	if cfg.legacy {
		pipelineOpts = append(pipelineOpts, reindexuc.WithLegacyTermination())
	}
	c.pipeline = reindexuc.New(index, index, cfg.logger, pipelineOpts...)
	return c, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
	if c.cache != nil {
		c.cache.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Entities returns the entity CRUD service.
func (c *Client) Entities() *EntityService {
	return &EntityService{svc: c.entitySvc}
}

// Search returns the search and index administration service.
func (c *Client) Search() *SearchService {
	return &SearchService{svc: c.searchSvc, entities: c.entitySvc}
}

// ReindexRequest describes a reindex run. Empty indexes default to the
// configured index (source) and alias (destination).
type ReindexRequest struct {
	SourceIndex string
	SourceType  string
	DestIndex   string
	DestType    string
	PageSize    int
	KeepAlive   time.Duration
}

// ReindexResult summarizes a reindex run.
type ReindexResult struct {
	RunID       string
	Pages       int
	Hits        int
	Indexed     int
	Failed      int
	FailedPages int
	Duration    time.Duration
}

// Reindex copies the source index into the destination, flattening each
// asset location into a geo_point. On a scroll failure the partial result
// is returned together with the error.
func (c *Client) Reindex(ctx context.Context, req ReindexRequest) (*ReindexResult, error) {
	if c.pipeline == nil {
		return nil, ErrSearchDisabled
	}
	cfg := c.searchSvc.Config()
	if req.SourceIndex == "" {
		req.SourceIndex = cfg.Index
	}
	if req.DestIndex == "" {
		req.DestIndex = cfg.Alias
	}

	res, err := c.pipeline.Run(ctx, reindexuc.Request{
		SourceIndex: req.SourceIndex,
		SourceType:  req.SourceType,
		DestIndex:   req.DestIndex,
		DestType:    req.DestType,
		PageSize:    req.PageSize,
		KeepAlive:   req.KeepAlive,
	})
	if res == nil {
		return nil, fmt.Errorf("reindex: %w", err)
	}
	out := &ReindexResult{
		RunID:       res.RunID,
		Pages:       res.Pages,
		Hits:        res.Hits,
		Indexed:     res.Indexed,
		Failed:      res.Failed,
		FailedPages: res.FailedPages,
		Duration:    res.Duration,
	}
	if err != nil {
		return out, fmt.Errorf("reindex: %w", err)
	}
	return out, nil
}
