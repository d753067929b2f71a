package api

import (
	"github.com/JaimeStill/lading/internal/classifications"
	"github.com/JaimeStill/lading/internal/config"
	"github.com/JaimeStill/lading/internal/corpus"
	"github.com/JaimeStill/lading/internal/links"
	"github.com/JaimeStill/lading/internal/products"
	"github.com/JaimeStill/lading/internal/suggest"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Products        products.System
	Classifications classifications.System
	Links           links.System
	Corpus          corpus.System
	Suggest         suggest.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	db := runtime.Database.Connection()

	productsSystem := products.New(
		db,
		runtime.Reader,
		runtime.Logger,
		runtime.Pagination,
	)

	// Classification edits change the joined rows that link reads cache.
	classificationsSystem := classifications.New(
		db,
		runtime.Reader,
		[]string{links.CachePrefix},
		runtime.Logger,
		runtime.Pagination,
	)

	linksSystem := links.New(
		db,
		runtime.Reader,
		runtime.Logger,
		runtime.Pagination,
	)

	corpusSystem := corpus.New(
		db,
		runtime.Storage,
		runtime.Embedder,
		runtime.Reader,
		cfg.Corpus,
		runtime.Logger,
		runtime.Pagination,
	)

	suggestSystem := suggest.New(
		linksSystem,
		corpusSystem,
		cfg.Corpus.DescribeThreshold,
		runtime.Logger,
	)

	return &Domain{
		Products:        productsSystem,
		Classifications: classificationsSystem,
		Links:           linksSystem,
		Corpus:          corpusSystem,
		Suggest:         suggestSystem,
	}
}
