// Package suggest resolves freight classification suggestions. Suggestions
// are ephemeral: nothing here writes to the link store, and a caller accepts
// a suggestion by creating a link explicitly.
package suggest

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/lading/internal/corpus"
)

// Corpus is the reference corpus surface the suggester reads.
type Corpus interface {
	HazardTable
	Search(ctx context.Context, req corpus.SearchRequest) (*corpus.SearchResponse, error)
}

// System defines the public contract for classification suggestions.
type System interface {
	Handler() *Handler

	// Suggest resolves a structured request through the saved, hazmat, and
	// density paths in that order.
	Suggest(ctx context.Context, req Request) (*Response, error)

	// Describe looks up a free-text description against the reference corpus.
	Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error)
}

type service struct {
	resolver          *Resolver
	corpus            Corpus
	describeThreshold float64
	logger            *slog.Logger
}

// New creates the suggestion system. describeThreshold is the minimum
// similarity applied to free-text descriptions.
func New(approved ApprovedLinks, ref Corpus, describeThreshold float64, logger *slog.Logger) System {
	return &service{
		resolver:          NewResolver(approved, ref, logger),
		corpus:            ref,
		describeThreshold: describeThreshold,
		logger:            logger.With("system", "suggest"),
	}
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Suggest(ctx context.Context, req Request) (*Response, error) {
	in, err := req.Validate()
	if err != nil {
		return nil, err
	}

	resp, err := s.resolver.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info(
		"suggestion resolved",
		"source", resp.Source,
		"freight_class", resp.Suggestion.FreightClass,
		"sku", in.SKU,
	)
	return resp, nil
}
