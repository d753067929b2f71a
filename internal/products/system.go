package products

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/pkg/pagination"
)

// UnclassifiedPrefix is the cache key prefix of the unclassified product view.
// Link writes invalidate it.
const UnclassifiedPrefix = "products:unclassified:"

// System defines the public contract for product catalog operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Product], error)

	Find(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// Unclassified lists active products with no approved link, served
	// from cache for up to two minutes.
	Unclassified(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Product], error)
}
