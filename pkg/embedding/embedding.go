// Package embedding turns text into fixed-dimension vectors through an
// ordered list of strategies. The first strategy that succeeds wins; a
// failing strategy is logged and the next one is tried without retry.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// ErrNoStrategy is returned when a Chain has no strategy that produced a vector.
var ErrNoStrategy = errors.New("no embedding strategy succeeded")

// Strategy produces an embedding for a single text.
type Strategy interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Result is the outcome of a Chain evaluation.
type Result struct {
	Vector   []float64
	Strategy string
	// Fallback reports whether an earlier strategy failed before Strategy succeeded.
	Fallback bool
}

// Embedder is the consumer-side contract satisfied by *Chain.
type Embedder interface {
	Embed(ctx context.Context, text string) (Result, error)
	Dimensions() int
}

// Chain evaluates strategies in order.
type Chain struct {
	strategies []Strategy
	dimensions int
	logger     *slog.Logger
}

// NewChain builds a Chain. Vectors whose length differs from dimensions are
// treated as strategy failures.
func NewChain(dimensions int, logger *slog.Logger, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		dimensions: dimensions,
		logger:     logger.With("system", "embedding"),
	}
}

// New assembles the configured chain: the HTTP provider when a base URL is
// set, always followed by the hash fallback.
func New(cfg *Config, logger *slog.Logger) *Chain {
	strategies := make([]Strategy, 0, 2)
	if cfg.BaseURL != "" {
		strategies = append(strategies, NewProvider(cfg))
	}
	strategies = append(strategies, NewHash(cfg.Dimensions))
	return NewChain(cfg.Dimensions, logger, strategies...)
}

func (c *Chain) Dimensions() int {
	return c.dimensions
}

func (c *Chain) Embed(ctx context.Context, text string) (Result, error) {
	fallback := false
	for _, s := range c.strategies {
		vec, err := s.Embed(ctx, text)
		if err == nil && len(vec) != c.dimensions {
			err = fmt.Errorf("dimension mismatch: got %d, want %d", len(vec), c.dimensions)
		}
		if err != nil {
			c.logger.Warn("embedding strategy failed", "strategy", s.Name(), "error", err)
			fallback = true
			continue
		}
		return Result{Vector: vec, Strategy: s.Name(), Fallback: fallback}, nil
	}
	return Result{}, ErrNoStrategy
}

// Cosine returns the cosine similarity of a and b, or 0 when either is a
// zero vector or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
