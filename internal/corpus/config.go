package corpus

import (
	"fmt"
	"os"
	"strconv"
)

// Default similarity thresholds. Callers pick one per use case.
const (
	DefaultSearchThreshold   = 0.3
	DefaultDescribeThreshold = 0.4
)

// Config holds corpus search and import settings.
type Config struct {
	SnapshotKey       string  `toml:"snapshot_key"`
	SearchThreshold   float64 `toml:"search_threshold"`
	DescribeThreshold float64 `toml:"describe_threshold"`
	DefaultLimit      int     `toml:"default_limit"`
	MaxLimit          int     `toml:"max_limit"`
	ImportConcurrency int     `toml:"import_concurrency"`
}

// ConfigEnv maps environment variable names for corpus configuration.
type ConfigEnv struct {
	SnapshotKey       string
	SearchThreshold   string
	DescribeThreshold string
	DefaultLimit      string
	MaxLimit          string
	ImportConcurrency string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.SnapshotKey != "" {
		c.SnapshotKey = overlay.SnapshotKey
	}
	if overlay.SearchThreshold != 0 {
		c.SearchThreshold = overlay.SearchThreshold
	}
	if overlay.DescribeThreshold != 0 {
		c.DescribeThreshold = overlay.DescribeThreshold
	}
	if overlay.DefaultLimit != 0 {
		c.DefaultLimit = overlay.DefaultLimit
	}
	if overlay.MaxLimit != 0 {
		c.MaxLimit = overlay.MaxLimit
	}
	if overlay.ImportConcurrency != 0 {
		c.ImportConcurrency = overlay.ImportConcurrency
	}
}

func (c *Config) loadDefaults() {
	if c.SnapshotKey == "" {
		c.SnapshotKey = "snapshots/corpus.jsonl"
	}
	if c.SearchThreshold == 0 {
		c.SearchThreshold = DefaultSearchThreshold
	}
	if c.DescribeThreshold == 0 {
		c.DescribeThreshold = DefaultDescribeThreshold
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 5
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = 20
	}
	if c.ImportConcurrency <= 0 {
		c.ImportConcurrency = 4
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if env.SnapshotKey != "" {
		if v := os.Getenv(env.SnapshotKey); v != "" {
			c.SnapshotKey = v
		}
	}
	if env.SearchThreshold != "" {
		if v := os.Getenv(env.SearchThreshold); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.SearchThreshold = f
			}
		}
	}
	if env.DescribeThreshold != "" {
		if v := os.Getenv(env.DescribeThreshold); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.DescribeThreshold = f
			}
		}
	}
	if env.DefaultLimit != "" {
		if v := os.Getenv(env.DefaultLimit); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DefaultLimit = n
			}
		}
	}
	if env.MaxLimit != "" {
		if v := os.Getenv(env.MaxLimit); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxLimit = n
			}
		}
	}
	if env.ImportConcurrency != "" {
		if v := os.Getenv(env.ImportConcurrency); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.ImportConcurrency = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.SearchThreshold <= 0 || c.SearchThreshold > 1 {
		return fmt.Errorf("search_threshold must be in (0, 1]")
	}
	if c.DescribeThreshold <= 0 || c.DescribeThreshold > 1 {
		return fmt.Errorf("describe_threshold must be in (0, 1]")
	}
	if c.DefaultLimit > c.MaxLimit {
		return fmt.Errorf("default_limit cannot exceed max_limit")
	}
	if c.ImportConcurrency < 1 {
		return fmt.Errorf("import_concurrency must be positive")
	}
	return nil
}
