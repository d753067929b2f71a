package corpus

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/pkg/pagination"
)

// CachePrefix is the key prefix of every cached corpus read.
const CachePrefix = "corpus:"

// System defines the public contract for the reference corpus.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error)
	Find(ctx context.Context, id uuid.UUID) (*Entry, error)

	// Search ranks entries against free text. It never writes.
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)

	// LookupHazardClass returns the hazard class recorded for a UN number in
	// the hazard table, or ErrNotFound.
	LookupHazardClass(ctx context.Context, unNumber string) (string, error)

	Create(ctx context.Context, cmd CreateCommand) (*Entry, error)
	// Import loads a JSON-lines snapshot from blob storage.
	Import(ctx context.Context, cmd ImportCommand) (*ImportResult, error)
	// Upload stores a reference source file and registers it as an entry.
	Upload(ctx context.Context, cmd UploadCommand) (*Entry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
