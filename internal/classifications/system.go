package classifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/pkg/pagination"
)

// System defines the public contract for classification administration.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Classification], error)

	Find(ctx context.Context, id uuid.UUID) (*Classification, error)
	Create(ctx context.Context, cmd Command) (*Classification, error)
	// Update replaces every field. Changing IsHazmat on a classification
	// referenced by any link returns ErrInUse.
	Update(ctx context.Context, id uuid.UUID, cmd Command) (*Classification, error)
	// Delete removes an unreferenced classification; referenced ones return ErrInUse.
	Delete(ctx context.Context, id uuid.UUID) error
}
