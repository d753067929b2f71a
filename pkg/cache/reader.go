package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadTimeout bounds a shared load started by Fetch.
const LoadTimeout = 30 * time.Second

// Reader adds JSON encoding and fill deduplication to a Cache.
// Cache failures are logged and degrade to direct loads; they never fail a read.
type Reader struct {
	cache       Cache
	logger      *slog.Logger
	flight      singleflight.Group
	loadTimeout time.Duration
}

// NewReader wraps c.
func NewReader(c Cache, logger *slog.Logger) *Reader {
	return &Reader{
		cache:       c,
		logger:      logger.With("system", "cache-reader"),
		loadTimeout: LoadTimeout,
	}
}

// Invalidate removes every entry under each prefix. Failures are logged
// and left to expire by TTL.
func (r *Reader) Invalidate(ctx context.Context, prefixes ...string) {
	for _, p := range prefixes {
		n, err := r.cache.DeleteByPrefix(ctx, p)
		if err != nil {
			r.logger.Error("cache invalidation failed", "prefix", p, "error", err)
			continue
		}
		r.logger.Debug("cache invalidated", "prefix", p, "removed", n)
	}
}

// Fetch returns the cached value for key, or calls load, stores the result
// for ttl, and returns it. Concurrent misses on the same key share one load.
func Fetch[T any](ctx context.Context, r *Reader, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T

	if raw, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		var v T
		err := json.Unmarshal(raw, &v)
		if err == nil {
			return v, nil
		}
		r.logger.Warn("cache decode failed", "key", key, "error", err)
	}

	// The shared load outlives any one caller; each caller stops waiting
	// when its own context ends.
	ch := r.flight.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()

		v, err := load(lctx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(v)
		if err != nil {
			r.logger.Warn("cache encode failed", "key", key, "error", err)
			return v, nil
		}
		if err := r.cache.Set(lctx, key, raw, ttl); err != nil {
			r.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
