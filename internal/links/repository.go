package links

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/lading/internal/products"
	"github.com/JaimeStill/lading/pkg/cache"
	"github.com/JaimeStill/lading/pkg/pagination"
	"github.com/JaimeStill/lading/pkg/query"
	"github.com/JaimeStill/lading/pkg/repository"
)

// ListTTL bounds how long link reads may be served from cache.
const ListTTL = 5 * time.Minute

const (
	productStateQ = `SELECT sku, is_hazardous FROM products WHERE id = $1`

	classificationStateQ = `SELECT is_hazmat FROM freight_classifications WHERE id = $1`

	duplicateQ = `SELECT EXISTS(
		SELECT 1 FROM product_freight_links WHERE product_id = $1 AND classification_id = $2
	)`

	insertQ = `
		INSERT INTO product_freight_links(
			product_id, classification_id, override_freight_class, override_packaging,
			confidence_score, link_source, is_approved, approved_by, approved_at, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CASE WHEN $7::boolean THEN NOW() END, $9)
		RETURNING id`

	linkStateQ = `
		SELECT p.sku, p.is_hazardous, fc.is_hazmat, l.is_approved
		FROM product_freight_links l
		JOIN products p ON p.id = l.product_id
		JOIN freight_classifications fc ON fc.id = l.classification_id
		WHERE l.id = $1
		FOR UPDATE OF l`

	updateQ = `
		UPDATE product_freight_links SET
			override_freight_class = COALESCE($1, override_freight_class),
			override_packaging = COALESCE($2, override_packaging),
			confidence_score = COALESCE($3, confidence_score),
			is_approved = COALESCE($4::boolean, is_approved),
			approved_by = CASE
				WHEN $4::boolean IS NULL THEN COALESCE($5, approved_by)
				WHEN $4::boolean THEN COALESCE($5, approved_by)
				ELSE NULL
			END,
			approved_at = CASE
				WHEN $4::boolean IS NULL THEN approved_at
				WHEN $4::boolean THEN NOW()
				ELSE NULL
			END,
			updated_at = NOW()
		WHERE id = $6`

	hazardClassQ = `
		SELECT fc.hazmat_class
		FROM product_freight_links l
		JOIN products p ON p.id = l.product_id
		JOIN freight_classifications fc ON fc.id = l.classification_id
		WHERE p.un_number = $1 AND l.is_approved AND fc.hazmat_class IS NOT NULL
		ORDER BY l.approved_at DESC NULLS LAST
		LIMIT 1`
)

type repo struct {
	db         *sql.DB
	cache      *cache.Reader
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a link repository implementing the System interface.
func New(
	db *sql.DB,
	reader *cache.Reader,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		cache:      reader,
		logger:     logger.With("system", "links"),
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
) (*pagination.PageResult[Row], error) {
	page.Normalize(r.pagination)
	key := CachePrefix + "list:" + filters.key() + ":" +
		strconv.Itoa(page.Limit) + ":" + strconv.Itoa(page.Offset)

	return cache.Fetch(ctx, r.cache, key, ListTTL,
		func(ctx context.Context) (*pagination.PageResult[Row], error) {
			qb := query.NewBuilder(projection, defaultSort)
			filters.Apply(qb)

			countSQL, countArgs := qb.BuildCount()
			var total int
			if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
				return nil, fmt.Errorf("count links: %w", err)
			}

			pageSQL, pageArgs := qb.BuildPage(page.Limit, page.Offset)
			items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRow)
			if err != nil {
				return nil, fmt.Errorf("query links: %w", err)
			}

			result := pagination.NewPageResult(items, total, page.Limit, page.Offset)
			return &result, nil
		},
	)
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Row, error) {
	row, err := cache.Fetch(ctx, r.cache, CachePrefix+"id:"+id.String(), ListTTL,
		func(ctx context.Context) (*Row, error) {
			return optional(r.findRow(ctx, r.db, id, false))
		},
	)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func (r *repo) FindApprovedBySKU(ctx context.Context, sku string) (*Row, error) {
	sku = strings.TrimSpace(sku)

	row, err := cache.Fetch(ctx, r.cache, CachePrefix+"sku:"+sku, ListTTL,
		func(ctx context.Context) (*Row, error) {
			approved := true
			q, args := query.
				NewBuilder(projection,
					query.SortField{Field: "ApprovedAt", Descending: true},
					query.SortField{Field: "CreatedAt", Descending: true},
				).
				WhereEquals("ProductSKU", &sku).
				WhereEquals("IsApproved", &approved).
				BuildPage(1, 0)

			return optional(repository.QueryOne(ctx, r.db, q, args, scanRow))
		},
	)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func (r *repo) HazardClassForUN(ctx context.Context, unNumber string) (string, error) {
	class, err := cache.Fetch(ctx, r.cache, CachePrefix+"un:"+unNumber, ListTTL,
		func(ctx context.Context) (string, error) {
			var hc string
			err := r.db.QueryRowContext(ctx, hazardClassQ, unNumber).Scan(&hc)
			if errors.Is(err, sql.ErrNoRows) {
				return "", nil
			}
			return hc, err
		},
	)
	if err != nil {
		return "", fmt.Errorf("hazard class for %s: %w", unNumber, err)
	}
	if class == "" {
		return "", ErrNotFound
	}
	return class, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Row, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	row, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Row, error) {
		var sku string
		var hazardous bool
		if err := tx.QueryRowContext(ctx, productStateQ, cmd.ProductID).Scan(&sku, &hazardous); err != nil {
			return Row{}, repository.MapError(err, ErrProductNotFound, ErrDuplicate)
		}

		var hazmat bool
		if err := tx.QueryRowContext(ctx, classificationStateQ, cmd.ClassificationID).Scan(&hazmat); err != nil {
			return Row{}, repository.MapError(err, ErrClassificationNotFound, ErrDuplicate)
		}

		exists, err := repository.Exists(ctx, tx, duplicateQ, cmd.ProductID, cmd.ClassificationID)
		if err != nil {
			return Row{}, fmt.Errorf("check duplicate link: %w", err)
		}
		if exists {
			return Row{}, ErrDuplicate
		}

		if err := checkSafety(sku, hazardous, hazmat, cmd.IsApproved); err != nil {
			return Row{}, err
		}

		var approvedBy *string
		if cmd.IsApproved {
			approvedBy = cmd.ApprovedBy
		}

		var id uuid.UUID
		err = tx.QueryRowContext(ctx, insertQ,
			cmd.ProductID,
			cmd.ClassificationID,
			cmd.OverrideFreightClass,
			cmd.OverridePackaging,
			cmd.ConfidenceScore,
			string(cmd.LinkSource),
			cmd.IsApproved,
			approvedBy,
			cmd.CreatedBy,
		).Scan(&id)
		if err != nil {
			return Row{}, mapInsertError(err)
		}

		return r.findRow(ctx, tx, id, false)
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx)
	r.logger.Info("link created",
		"id", row.ID,
		"product_id", row.ProductID,
		"classification_id", row.ClassificationID,
		"link_source", row.LinkSource,
		"approved", row.IsApproved,
	)
	return &row, nil
}

func (r *repo) Update(ctx context.Context, cmd UpdateCommand) (*Row, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	row, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Row, error) {
		var sku string
		var hazardous, hazmat, approved bool
		if err := tx.QueryRowContext(ctx, linkStateQ, cmd.ID).Scan(&sku, &hazardous, &hazmat, &approved); err != nil {
			return Row{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		if cmd.IsApproved != nil && *cmd.IsApproved {
			if err := checkSafety(sku, hazardous, hazmat, true); err != nil {
				return Row{}, err
			}
		}

		// An approver is only recorded on a link that is approved after this update.
		approvedBy := cmd.ApprovedBy
		if cmd.IsApproved != nil {
			approved = *cmd.IsApproved
		}
		if !approved && approvedBy != nil {
			r.logger.Debug("approvedBy ignored on pending link", "id", cmd.ID)
			approvedBy = nil
		}

		err := repository.ExecExpectOne(ctx, tx, updateQ,
			cmd.OverrideFreightClass,
			cmd.OverridePackaging,
			cmd.ConfidenceScore,
			cmd.IsApproved,
			approvedBy,
			cmd.ID,
		)
		if err != nil {
			return Row{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}

		return r.findRow(ctx, tx, cmd.ID, false)
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx)
	r.logger.Info("link updated", "id", row.ID, "approved", row.IsApproved)
	return &row, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) (*Row, error) {
	row, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Row, error) {
		row, err := r.findRow(ctx, tx, id, true)
		if err != nil {
			return Row{}, err
		}

		if err := repository.ExecExpectOne(ctx, tx,
			"DELETE FROM product_freight_links WHERE id = $1", id,
		); err != nil {
			return Row{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}
		return row, nil
	})
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx)
	r.logger.Info("link deleted", "id", id, "product_id", row.ProductID)
	return &row, nil
}

func (r *repo) findRow(ctx context.Context, q repository.Querier, id uuid.UUID, lock bool) (Row, error) {
	stmt, args := query.NewBuilder(projection).BuildSingle("ID", id)
	if lock {
		stmt += " FOR UPDATE OF l"
	}

	row, err := repository.QueryOne(ctx, q, stmt, args, scanRow)
	if err != nil {
		return Row{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return row, nil
}

// invalidate drops every cached link read and the unclassified product view.
func (r *repo) invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx, CachePrefix, products.UnclassifiedPrefix)
}

// optional converts a not-found result into a nil row so misses can be cached.
func optional(row Row, err error) (*Row, error) {
	if errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func mapInsertError(err error) error {
	if repository.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	if repository.IsForeignKeyViolation(err) {
		if strings.Contains(repository.ConstraintName(err), "product_id") {
			return ErrProductNotFound
		}
		return ErrClassificationNotFound
	}
	return fmt.Errorf("insert link: %w", err)
}
