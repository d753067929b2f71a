package links

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/pkg/pagination"
)

// CachePrefix is the key prefix of every cached link read.
const CachePrefix = "links:"

// System defines the public contract for link storage and approval.
type System interface {
	Handler() *Handler

	// List returns joined rows newest first. Only page.Limit and page.Offset apply.
	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Row], error)

	Find(ctx context.Context, id uuid.UUID) (*Row, error)

	// FindApprovedBySKU returns the most recently approved link for the
	// product with the given SKU, or ErrNotFound.
	FindApprovedBySKU(ctx context.Context, sku string) (*Row, error)

	// HazardClassForUN returns the hazmat class of the most recently approved
	// classification linked to any product carrying the UN number, or ErrNotFound.
	HazardClassForUN(ctx context.Context, unNumber string) (string, error)

	Create(ctx context.Context, cmd CreateCommand) (*Row, error)
	Update(ctx context.Context, cmd UpdateCommand) (*Row, error)
	// Delete removes the link and returns the row as it was before deletion.
	Delete(ctx context.Context, id uuid.UUID) (*Row, error)
}
