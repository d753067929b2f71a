package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JaimeStill/lading/internal/freight"
	"github.com/JaimeStill/lading/pkg/cache"
	"github.com/JaimeStill/lading/pkg/embedding"
	"github.com/JaimeStill/lading/pkg/pagination"
	"github.com/JaimeStill/lading/pkg/query"
	"github.com/JaimeStill/lading/pkg/repository"
	"github.com/JaimeStill/lading/pkg/storage"
)

// CacheTTL bounds how long corpus lookups may be served from cache.
const CacheTTL = 5 * time.Minute

const (
	insertQ = `
		INSERT INTO reference_documents(
			id, title, category, content, un_number, hazard_class, packing_group,
			proper_shipping_name, part, source_key, page_count, embedding, embedding_strategy
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + columns

	hazardClassQ = `
		SELECT hazard_class FROM reference_documents
		WHERE un_number = $1 AND category = 'hazard-table' AND hazard_class IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT 1`
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	embedder   embedding.Embedder
	cache      *cache.Reader
	cfg        Config
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a corpus repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	embedder embedding.Embedder,
	reader *cache.Reader,
	cfg Config,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		embedder:   embedder,
		cache:      reader,
		cfg:        cfg,
		logger:     logger.With("system", "corpus"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Entry], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "ProperShippingName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count corpus entries: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Limit, page.Offset)
	entries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, entryScanner(pgtype.NewMap()))
	if err != nil {
		return nil, fmt.Errorf("query corpus entries: %w", err)
	}

	result := pagination.NewPageResult(entries, total, page.Limit, page.Offset)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Entry, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, entryScanner(pgtype.NewMap()))
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

func (r *repo) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	q, err := req.query(r.cfg)
	if err != nil {
		return nil, err
	}

	if un, ok := freight.FindUNNumber(q.Text); ok {
		entries, err := r.unCandidates(ctx, un, req.Category)
		if err != nil {
			return nil, err
		}

		q.UNNumber = un
		if results := Rank(q, entries); len(results) > 0 {
			return newSearchResponse(q, StrategyUNNumber, results), nil
		}

		r.logger.Debug("no corpus match for un number", "un_number", un)
		q.UNNumber = ""
	}

	res, err := r.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	q.Vector = res.Vector
	q.Strategy = res.Strategy

	entries, err := r.index(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	resp := newSearchResponse(q, res.Strategy, Rank(q, entries))
	resp.Fallback = res.Fallback
	return resp, nil
}

func (r *repo) LookupHazardClass(ctx context.Context, unNumber string) (string, error) {
	un, ok := freight.ParseUNNumber(unNumber)
	if !ok {
		return "", fmt.Errorf("%w: malformed unNumber %q", ErrInvalid, unNumber)
	}

	class, err := cache.Fetch(ctx, r.cache, CachePrefix+"hazard:"+un, CacheTTL,
		func(ctx context.Context) (string, error) {
			var hc string
			err := r.db.QueryRowContext(ctx, hazardClassQ, un).Scan(&hc)
			if errors.Is(err, sql.ErrNoRows) {
				return "", nil
			}
			return hc, err
		},
	)
	if err != nil {
		return "", fmt.Errorf("lookup hazard class for %s: %w", un, err)
	}
	if class == "" {
		return "", ErrNotFound
	}
	return class, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Entry, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	res, err := r.embed(ctx, cmd)
	if err != nil {
		return nil, err
	}

	m := pgtype.NewMap()
	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Entry, error) {
		return r.insert(ctx, tx, m, pending{
			id:       uuid.New(),
			cmd:      cmd,
			vector:   res.Vector,
			strategy: res.Strategy,
		})
	})
	if err != nil {
		return nil, err
	}

	r.cache.Invalidate(ctx, CachePrefix)
	r.logger.Info("corpus entry created",
		"id", e.ID,
		"category", e.Category,
		"strategy", e.EmbeddingStrategy,
	)
	return &e, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx,
			"DELETE FROM reference_documents WHERE id = $1", id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	// Snapshot blobs are shared by every imported entry; only uploaded
	// sources belong to a single entry.
	if e.SourceKey != nil && strings.HasPrefix(*e.SourceKey, sourcesPrefix) {
		if delErr := r.storage.Delete(ctx, *e.SourceKey); delErr != nil {
			r.logger.Warn("blob delete failed after DB delete", "key", *e.SourceKey, "error", delErr)
		}
	}

	r.cache.Invalidate(ctx, CachePrefix)
	r.logger.Info("corpus entry deleted", "id", id)
	return nil
}

func (r *repo) index(ctx context.Context, category Category) ([]Entry, error) {
	qb := query.NewBuilder(projection, defaultSort)
	if category != "" {
		c := string(category)
		qb.WhereEquals("Category", &c)
	}

	q, args := qb.Build()
	entries, err := repository.QueryMany(ctx, r.db, q, args, entryScanner(pgtype.NewMap()))
	if err != nil {
		return nil, fmt.Errorf("load corpus index: %w", err)
	}
	return entries, nil
}

func (r *repo) unCandidates(ctx context.Context, un string, category Category) ([]Entry, error) {
	pattern, ok := freight.UNNumberPattern(un)
	if !ok {
		return nil, fmt.Errorf("%w: malformed unNumber %q", ErrInvalid, un)
	}

	qb := query.
		NewBuilder(projection, defaultSort).
		Where("(rd.un_number = $%d OR rd.title ~* $%d OR rd.content ~* $%d)", un, pattern, pattern)
	if category != "" {
		c := string(category)
		qb.WhereEquals("Category", &c)
	}

	q, args := qb.Build()
	entries, err := repository.QueryMany(ctx, r.db, q, args, entryScanner(pgtype.NewMap()))
	if err != nil {
		return nil, fmt.Errorf("query corpus by un number: %w", err)
	}
	return entries, nil
}

type pending struct {
	id        uuid.UUID
	cmd       CreateCommand
	sourceKey *string
	pageCount *int
	vector    []float64
	strategy  string
}

func (r *repo) embed(ctx context.Context, cmd CreateCommand) (embedding.Result, error) {
	res, err := r.embedder.Embed(ctx, cmd.indexText())
	if err != nil {
		return res, fmt.Errorf("embed %q: %w", cmd.Title, err)
	}
	return res, nil
}

func (r *repo) insert(ctx context.Context, q repository.Querier, m *pgtype.Map, p pending) (Entry, error) {
	vec, err := encodeVector(m, p.vector)
	if err != nil {
		return Entry{}, err
	}

	md := p.cmd.Metadata
	args := []any{
		p.id,
		p.cmd.Title,
		string(p.cmd.Category),
		p.cmd.Content,
		md.UNNumber,
		md.HazardClass,
		md.PackingGroup,
		md.ProperShippingName,
		md.Part,
		p.sourceKey,
		p.pageCount,
		vec,
		p.strategy,
	}

	e, err := repository.QueryOne(ctx, q, insertQ, args, entryScanner(m))
	if err != nil {
		return Entry{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return e, nil
}
