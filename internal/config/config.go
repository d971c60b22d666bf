package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/digitalbridge/mongoes/internal/domain/role"
)

// Supported document store drivers.
const (
	DriverMongo = "mongo"
	DriverRedis = "redis"
)

// Config holds the mongoes configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	Users         []UserConfig `yaml:"users"`
	RoleHierarchy string       `yaml:"role_hierarchy"`
}

// UserConfig is one API account.
type UserConfig struct {
	Name     string   `yaml:"name"`
	Password string   `yaml:"password"`
	Roles    []string `yaml:"roles"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port             int `yaml:"port"`
	ReadTimeoutSec   int `yaml:"read_timeout_sec"`
	WriteTimeoutSec  int `yaml:"write_timeout_sec"`
	ShutdownSec      int `yaml:"shutdown_timeout_sec"`
	DefaultPageSize  int `yaml:"default_page_size"`
	MaxPageSize      int `yaml:"max_page_size"`
	HealthTimeoutSec int `yaml:"health_timeout_sec"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // mongo, redis (default: mongo)
	URI              string   `yaml:"uri"`    // mongo
	Name             string   `yaml:"name"`   // mongo database
	Addrs            []string `yaml:"addrs"`  // redis
	Password         string   `yaml:"password"`
	KeyPrefix        string   `yaml:"key_prefix"` // redis
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds the reference cache settings.
type CacheConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLSec   int      `yaml:"ttl_sec"`
}

// SearchConfig holds Elasticsearch settings.
type SearchConfig struct {
	Addrs              []string `yaml:"addrs"`
	Username           string   `yaml:"username"`
	Password           string   `yaml:"password"`
	MaxRetries         int      `yaml:"max_retries"`
	Index              string   `yaml:"index"`
	Type               string   `yaml:"type"`
	Alias              string   `yaml:"alias"`
	PageSize           int      `yaml:"page_size"`
	ScrollKeepAliveSec int      `yaml:"scroll_keep_alive_sec"`
	DateFields         []string `yaml:"date_fields"`
	OptimizeInterval   int      `yaml:"optimize_interval_min"` // 0 disables the schedule
	StopOnPartialPage  *bool    `yaml:"stop_on_partial_page"`  // false keeps the legacy rule
}

// Enabled reports whether a search service is configured.
func (s SearchConfig) Enabled() bool { return len(s.Addrs) > 0 }

// LegacyTermination reports whether reindex keeps the legacy stop rule.
func (s SearchConfig) LegacyTermination() bool {
	return s.StopOnPartialPage != nil && !*s.StopOnPartialPage
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references, then
// applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.DefaultPageSize <= 0 {
		c.HTTP.DefaultPageSize = 20
	}
	if c.HTTP.MaxPageSize <= 0 {
		c.HTTP.MaxPageSize = 100
	}
	if c.HTTP.HealthTimeoutSec <= 0 {
		c.HTTP.HealthTimeoutSec = 2
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
	if c.Database.Name == "" {
		c.Database.Name = "digitalbridge"
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "mongoes:"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 300
	}
	if c.Search.Index == "" {
		c.Search.Index = "digitalbridge"
	}
	if c.Search.Type == "" {
		c.Search.Type = "assetwrapper"
	}
	if c.Search.Alias == "" {
		c.Search.Alias = "digitalbridge_alias"
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 1000
	}
	if c.Search.ScrollKeepAliveSec <= 0 {
		c.Search.ScrollKeepAliveSec = 300
	}
	if len(c.Search.DateFields) == 0 {
		c.Search.DateFields = []string{"lDate"}
	}
	if c.Auth.RoleHierarchy == "" {
		c.Auth.RoleHierarchy = role.DefaultHierarchy
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for the mongo driver")
		}
	case DriverRedis:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverMongo, DriverRedis, c.Database.Driver)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when the cache is enabled")
	}
	if _, err := role.ParseHierarchy(c.Auth.RoleHierarchy); err != nil {
		return fmt.Errorf("auth.role_hierarchy: %w", err)
	}
	seen := map[string]bool{}
	for i, u := range c.Auth.Users {
		if u.Name == "" || u.Password == "" {
			return fmt.Errorf("auth.users[%d] needs a name and a password", i)
		}
		if seen[u.Name] {
			return fmt.Errorf("auth.users: duplicate user %q", u.Name)
		}
		seen[u.Name] = true
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
