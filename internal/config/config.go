// Package config loads the service configuration from an optional
// config.toml, an optional environment overlay, and LADING_* variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/lading/internal/corpus"
	"github.com/JaimeStill/lading/pkg/cache"
	"github.com/JaimeStill/lading/pkg/database"
	"github.com/JaimeStill/lading/pkg/embedding"
	"github.com/JaimeStill/lading/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLadingEnv             = "LADING_ENV"
	EnvLadingLogLevel        = "LADING_LOG_LEVEL"
	EnvLadingShutdownTimeout = "LADING_SHUTDOWN_TIMEOUT"
	EnvLadingVersion         = "LADING_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "LADING_DB_HOST",
	Port:            "LADING_DB_PORT",
	Name:            "LADING_DB_NAME",
	User:            "LADING_DB_USER",
	Password:        "LADING_DB_PASSWORD",
	SSLMode:         "LADING_DB_SSL_MODE",
	MaxOpenConns:    "LADING_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LADING_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LADING_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LADING_DB_CONN_TIMEOUT",
}

var cacheEnv = &cache.Env{
	Backend:     "LADING_CACHE_BACKEND",
	Addr:        "LADING_CACHE_ADDR",
	Password:    "LADING_CACHE_PASSWORD",
	DB:          "LADING_CACHE_DB",
	Namespace:   "LADING_CACHE_NAMESPACE",
	DialTimeout: "LADING_CACHE_DIAL_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:          "LADING_STORAGE_BACKEND",
	ContainerName:    "LADING_STORAGE_CONTAINER_NAME",
	ConnectionString: "LADING_STORAGE_CONNECTION_STRING",
	MaxRetries:       "LADING_STORAGE_MAX_RETRIES",
}

var embeddingEnv = &embedding.Env{
	BaseURL:       "LADING_EMBEDDING_BASE_URL",
	APIKey:        "LADING_EMBEDDING_API_KEY",
	Model:         "LADING_EMBEDDING_MODEL",
	Dimensions:    "LADING_EMBEDDING_DIMENSIONS",
	Timeout:       "LADING_EMBEDDING_TIMEOUT",
	RatePerSecond: "LADING_EMBEDDING_RATE_PER_SECOND",
	Burst:         "LADING_EMBEDDING_BURST",
}

var corpusEnv = &corpus.ConfigEnv{
	SnapshotKey:       "LADING_CORPUS_SNAPSHOT_KEY",
	SearchThreshold:   "LADING_CORPUS_SEARCH_THRESHOLD",
	DescribeThreshold: "LADING_CORPUS_DESCRIBE_THRESHOLD",
	DefaultLimit:      "LADING_CORPUS_DEFAULT_LIMIT",
	MaxLimit:          "LADING_CORPUS_MAX_LIMIT",
	ImportConcurrency: "LADING_CORPUS_IMPORT_CONCURRENCY",
}

// Config is the root configuration for the lading service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Cache           cache.Config     `toml:"cache"`
	Storage         storage.Config   `toml:"storage"`
	Embedding       embedding.Config `toml:"embedding"`
	API             APIConfig        `toml:"api"`
	Corpus          corpus.Config    `toml:"corpus"`
	LogLevel        string           `toml:"log_level"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the LADING_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLadingEnv); env != "" {
		return env
	}
	return "local"
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads the same sources as Load but finalizes only the
// database section.
func LoadDatabase() (*database.Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize database config: %w", err)
	}

	return &cfg.Database, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Cache.Merge(&overlay.Cache)
	c.Storage.Merge(&overlay.Storage)
	c.Embedding.Merge(&overlay.Embedding)
	c.API.Merge(&overlay.API)
	c.Corpus.Merge(&overlay.Corpus)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Embedding.Finalize(embeddingEnv); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Corpus.Finalize(corpusEnv); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLadingLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvLadingShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLadingVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func read() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLadingEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
