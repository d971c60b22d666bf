package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/digitalbridge/mongoes/internal/config"
	"github.com/digitalbridge/mongoes/internal/db"
	dbElastic "github.com/digitalbridge/mongoes/internal/db/elastic"
	dbMongo "github.com/digitalbridge/mongoes/internal/db/mongo"
	dbRedis "github.com/digitalbridge/mongoes/internal/db/redis"
	"github.com/digitalbridge/mongoes/internal/domain/asset"
	"github.com/digitalbridge/mongoes/internal/domain/role"
	logpkg "github.com/digitalbridge/mongoes/internal/logger"
	"github.com/digitalbridge/mongoes/internal/mapping"
	"github.com/digitalbridge/mongoes/internal/metrics"
	entityrepo "github.com/digitalbridge/mongoes/internal/repository/entity"
	"github.com/digitalbridge/mongoes/internal/repository/refcache"
	chiTransport "github.com/digitalbridge/mongoes/internal/transport/chi"
	entityuc "github.com/digitalbridge/mongoes/internal/usecase/entity"
	healthuc "github.com/digitalbridge/mongoes/internal/usecase/health"
	reindexuc "github.com/digitalbridge/mongoes/internal/usecase/reindex"
	searchuc "github.com/digitalbridge/mongoes/internal/usecase/search"
	"github.com/digitalbridge/mongoes/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mongoes API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("search", cfg.Search.Enabled()),
	)

	store, err := newStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.Register()

	registry, err := asset.NewRegistry()
	if err != nil {
		logger.Fatal("Invalid entity registry", zap.Error(err))
	}

	// Fetch strategy follows the store: direct for Redis, findOne for MongoDB.
	fetcher := mapping.NewFetcher(store)
	var repo *entityrepo.Repo
	healthOpts := []healthuc.Option{healthuc.WithTimeout(time.Duration(cfg.HTTP.HealthTimeoutSec) * time.Second)}
	if cfg.Cache.Enabled {
		cacheStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create reference cache", zap.Error(err))
		}
		defer cacheStore.Close()
		healthOpts = append(healthOpts, healthuc.WithCheck("cache", cacheStore))

		cached := refcache.New(fetcher, cacheStore,
			time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.ReferenceCacheTotal, logger)
		repo = entityrepo.New(store, mapping.NewConverter(registry, cached), cached)
	} else {
		repo = entityrepo.New(store, mapping.NewConverter(registry, fetcher), nil)
	}
	logger.Info("Entity mapping ready",
		zap.Strings("entities", registry.Names()),
		zap.String("fetch_strategy", fetcher.Strategy()),
		zap.Bool("reference_cache", cfg.Cache.Enabled),
	)

	entitySvc := entityuc.New(repo).WithPagination(cfg.HTTP.DefaultPageSize, cfg.HTTP.MaxPageSize)

	var serverOpts []chiTransport.Option
	var searchPinger healthuc.Pinger
	var searchSvc *searchuc.Service
	if cfg.Search.Enabled() {
		es, err := dbElastic.NewClient(dbElastic.Config{
			Addrs:      cfg.Search.Addrs,
			Username:   cfg.Search.Username,
			Password:   cfg.Search.Password,
			MaxRetries: cfg.Search.MaxRetries,
		})
		if err != nil {
			logger.Fatal("Failed to create search client", zap.Error(err))
		}
		searchPinger = es

		searchSvc = searchuc.New(es, es, repo, searchuc.Config{
			Index:      cfg.Search.Index,
			Alias:      cfg.Search.Alias,
			DateFields: cfg.Search.DateFields,
		}, logger)

		keepAlive := time.Duration(cfg.Search.ScrollKeepAliveSec) * time.Second
		pipelineOpts := []reindexuc.Option{reindexuc.WithDefaults(cfg.Search.PageSize, keepAlive)}
		if cfg.Search.LegacyTermination() {
			pipelineOpts = append(pipelineOpts, reindexuc.WithLegacyTermination())
		}
		pipeline := reindexuc.New(es, es, logger, pipelineOpts...)

		serverOpts = append(serverOpts,
			chiTransport.WithSearch(searchSvc),
			chiTransport.WithReindex(pipeline, reindexuc.Request{
				SourceIndex: cfg.Search.Index,
				SourceType:  cfg.Search.Type,
				DestIndex:   cfg.Search.Alias,
				DestType:    cfg.Search.Type,
			}),
		)
	}

	healthSvc := healthuc.New(store, searchPinger, healthOpts...)

	hierarchy, err := role.ParseHierarchy(cfg.Auth.RoleHierarchy)
	if err != nil {
		logger.Fatal("Invalid role hierarchy", zap.Error(err))
	}
	accounts := make([]chiTransport.Account, 0, len(cfg.Auth.Users))
	for _, u := range cfg.Auth.Users {
		accounts = append(accounts, chiTransport.Account{Name: u.Name, Password: u.Password, Roles: u.Roles})
	}
	auth := chiTransport.NewAuthenticator(accounts, hierarchy)
	if !auth.Enabled() {
		logger.Warn("No API users configured, authentication disabled")
	}

	server := chiTransport.NewServer(entitySvc, healthSvc, logger, serverOpts...)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(auth.Middleware)
	r.Use(metrics.Middleware())
	server.Register(r, auth)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	stopOptimize := make(chan struct{})
	if searchSvc != nil && cfg.Search.OptimizeInterval > 0 {
		go runOptimize(searchSvc, time.Duration(cfg.Search.OptimizeInterval)*time.Minute, stopOptimize, logger)
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	close(stopOptimize)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newStore(cfg config.DatabaseConfig) (db.DocumentStore, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		s, err := dbMongo.NewStore(dbMongo.Config{URI: cfg.URI, Database: cfg.Name})
		if err != nil {
			return nil, fmt.Errorf("mongo store: %w", err)
		}
		return s, nil
	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Password:  cfg.Password,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// runOptimize force-merges the indices on every tick until stop is closed.
func runOptimize(svc *searchuc.Service, every time.Duration, stop <-chan struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), every)
			if err := svc.Optimize(ctx); err != nil {
				logger.Error("Scheduled optimize failed", zap.Error(err))
			}
			cancel()
		}
	}
}
