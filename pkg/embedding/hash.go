package embedding

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// HashStrategyName identifies the deterministic offline strategy.
const HashStrategyName = "hash"

// Hash is a feature-hashing embedder. Each lowercase token and adjacent
// token pair is hashed into a signed bucket; the result is L2-normalized.
// Identical text always yields an identical vector.
type Hash struct {
	dimensions int
}

func NewHash(dimensions int) *Hash {
	return &Hash{dimensions: dimensions}
}

func (h *Hash) Name() string {
	return HashStrategyName
}

func (h *Hash) Embed(_ context.Context, text string) ([]float64, error) {
	return h.Vector(text), nil
}

// Vector is Embed without the Strategy signature.
func (h *Hash) Vector(text string) []float64 {
	vec := make([]float64, h.dimensions)
	if h.dimensions == 0 {
		return vec
	}

	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	normalize(vec)
	return vec
}

func (h *Hash) add(vec []float64, feature string, weight float64) {
	sum := xxhash.Sum64String(feature)
	idx := sum % uint64(h.dimensions)
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

// tokenize keeps interior dots so hazard divisions like "4.1" stay whole.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})

	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "."); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func normalize(vec []float64) {
	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
}
