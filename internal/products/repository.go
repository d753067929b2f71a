package products

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/pkg/cache"
	"github.com/JaimeStill/lading/pkg/pagination"
	"github.com/JaimeStill/lading/pkg/query"
	"github.com/JaimeStill/lading/pkg/repository"
)

// UnclassifiedTTL bounds how long the unclassified view may be served from cache.
const UnclassifiedTTL = 2 * time.Minute

type repo struct {
	db         *sql.DB
	cache      *cache.Reader
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a product repository implementing the System interface.
func New(
	db *sql.DB,
	reader *cache.Reader,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		cache:      reader,
		logger:     logger.With("system", "products"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Product], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "SKU", "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	return r.page(ctx, qb, page)
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Product, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProduct)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	q, args := query.NewBuilder(projection).BuildSingle("SKU", strings.TrimSpace(sku))

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProduct)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Unclassified(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[Product], error) {
	page.Normalize(r.pagination)
	key := UnclassifiedPrefix + strconv.Itoa(page.Limit) + ":" + strconv.Itoa(page.Offset)

	return cache.Fetch(ctx, r.cache, key, UnclassifiedTTL,
		func(ctx context.Context) (*pagination.PageResult[Product], error) {
			active := true
			qb := query.
				NewBuilder(projection, defaultSort).
				WhereEquals("IsActive", &active).
				Where(unclassifiedClause)

			return r.page(ctx, qb, page)
		},
	)
}

func (r *repo) page(
	ctx context.Context,
	qb *query.Builder,
	page pagination.PageRequest,
) (*pagination.PageResult[Product], error) {
	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Limit, page.Offset)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Limit, page.Offset)
	return &result, nil
}
