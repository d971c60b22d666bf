package mongoes

import (
	"time"

	"go.uber.org/zap"
)

// Supported document store drivers.
const (
	DriverMongo = "mongo"
	DriverRedis = "redis"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver    string
	uri       string
	database  string
	addrs     []string
	password  string
	keyPrefix string

	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	searchAddrs      []string
	searchUsername   string
	searchPassword   string
	searchMaxRetries int
	index            string
	alias            string
	dateFields       []string

	pageSize  int
	keepAlive time.Duration
	legacy    bool

	defaultPageSize int
	maxPageSize     int

	readinessTimeout time.Duration
	logger           *zap.Logger
}

// WithMongo stores entities in a MongoDB database.
func WithMongo(uri, database string) Option {
	return func(c *clientConfig) {
		c.driver = DriverMongo
		c.uri = uri
		c.database = database
	}
}

// WithRedis stores entities as RedisJSON documents. References are then
// resolved directly instead of through a collection query.
func WithRedis(password string, addrs ...string) Option {
	return func(c *clientConfig) {
		c.driver = DriverRedis
		c.addrs = addrs
		c.password = password
	}
}

// WithKeyPrefix namespaces the Redis keys.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) { c.keyPrefix = prefix }
}

// WithReferenceCache caches referenced documents in Redis for ttl.
func WithReferenceCache(password string, ttl time.Duration, addrs ...string) Option {
	return func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cachePassword = password
		c.cacheTTL = ttl
	}
}

// WithElasticsearch enables search, facets, reindex and index administration.
func WithElasticsearch(username, password string, addrs ...string) Option {
	return func(c *clientConfig) {
		c.searchAddrs = addrs
		c.searchUsername = username
		c.searchPassword = password
	}
}

// WithSearchRetries bounds retries of failed search requests.
func WithSearchRetries(n int) Option {
	return func(c *clientConfig) { c.searchMaxRetries = n }
}

// WithIndex sets the asset index and the alias reindex writes to.
func WithIndex(index, alias string) Option {
	return func(c *clientConfig) {
		c.index = index
		c.alias = alias
	}
}

// WithDateFields names the fields facet filters treat as date ranges.
func WithDateFields(fields ...string) Option {
	return func(c *clientConfig) { c.dateFields = fields }
}

// WithScroll sets the reindex page size and scroll keep-alive.
func WithScroll(pageSize int, keepAlive time.Duration) Option {
	return func(c *clientConfig) {
		c.pageSize = pageSize
		c.keepAlive = keepAlive
	}
}

// WithLegacyTermination makes reindex stop at the first page that is not
// larger than the page size.
func WithLegacyTermination() Option {
	return func(c *clientConfig) { c.legacy = true }
}

// WithPagination sets the default and maximum entity page sizes.
func WithPagination(defaultPageSize, maxPageSize int) Option {
	return func(c *clientConfig) {
		c.defaultPageSize = defaultPageSize
		c.maxPageSize = maxPageSize
	}
}

// WithReadinessTimeout bounds how long New waits for the document store.
func WithReadinessTimeout(d time.Duration) Option {
	return func(c *clientConfig) { c.readinessTimeout = d }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
