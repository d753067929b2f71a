// Package cache provides a key-value cache with TTL and prefix invalidation.
// Backends satisfy the Cache interface; Reader layers JSON encoding and
// fill deduplication on top of any backend.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/lading/pkg/lifecycle"
)

// Cache is the minimal contract a backend must satisfy.
type Cache interface {
	// Get returns the stored value and true, or false when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. A non-positive ttl stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPrefix removes every key beginning with prefix and reports how many were removed.
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// System is a Cache with lifecycle hooks.
type System interface {
	Cache
	Start(lc *lifecycle.Coordinator) error
}

// New creates the backend selected by cfg.Backend.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Backend {
	case BackendRedis:
		return NewRedis(cfg, logger), nil
	case BackendMemory:
		return NewMemory(logger), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key joins parts with ":" to form a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}
