package classifications

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/pkg/cache"
	"github.com/JaimeStill/lading/pkg/pagination"
	"github.com/JaimeStill/lading/pkg/query"
	"github.com/JaimeStill/lading/pkg/repository"
)

type repo struct {
	db          *sql.DB
	cache       *cache.Reader
	invalidates []string
	logger      *slog.Logger
	pagination  pagination.Config
}

// New creates a classification repository implementing the System interface.
// Every successful write invalidates the cache prefixes in invalidates.
func New(
	db *sql.DB,
	reader *cache.Reader,
	invalidates []string,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:          db,
		cache:       reader,
		invalidates: invalidates,
		logger:      logger.With("system", "classifications"),
		pagination:  pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Classification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Description", "NMFCCode")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Limit, page.Offset)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Limit, page.Offset)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Classification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Create(ctx context.Context, cmd Command) (*Classification, error) {
	n, err := cmd.validate()
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO freight_classifications(
			description, nmfc_code, nmfc_sub, freight_class, is_hazmat,
			hazmat_class, packing_group, min_density, max_density
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		` + returning

	c, err := repository.QueryOne(ctx, r.db, q, n.args(), scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("classification created",
		"id", c.ID,
		"nmfc_code", c.NMFCCode,
		"freight_class", c.FreightClass,
		"is_hazmat", c.IsHazmat,
	)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd Command) (*Classification, error) {
	n, err := cmd.validate()
	if err != nil {
		return nil, err
	}

	q := `
		UPDATE freight_classifications
		SET description = $1, nmfc_code = $2, nmfc_sub = $3, freight_class = $4, is_hazmat = $5,
			hazmat_class = $6, packing_group = $7, min_density = $8, max_density = $9,
			updated_at = NOW()
		WHERE id = $10
		` + returning

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		var current bool
		err := tx.QueryRowContext(ctx,
			"SELECT is_hazmat FROM freight_classifications WHERE id = $1 FOR UPDATE", id,
		).Scan(&current)
		if err != nil {
			return Classification{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		if current != n.IsHazmat {
			referenced, err := repository.Exists(ctx, tx,
				"SELECT EXISTS(SELECT 1 FROM product_freight_links WHERE classification_id = $1)", id,
			)
			if err != nil {
				return Classification{}, fmt.Errorf("check classification references: %w", err)
			}
			if referenced {
				return Classification{}, ErrInUse
			}
		}

		return repository.QueryOne(ctx, tx, q, append(n.args(), id), scanClassification)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.cache.Invalidate(ctx, r.invalidates...)
	r.logger.Info("classification updated", "id", c.ID, "freight_class", c.FreightClass)
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM freight_classifications WHERE id = $1", id)
	if repository.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.cache.Invalidate(ctx, r.invalidates...)
	r.logger.Info("classification deleted", "id", id)
	return nil
}
