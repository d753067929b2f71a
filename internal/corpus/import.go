package corpus

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/lading/pkg/embedding"
	"github.com/JaimeStill/lading/pkg/repository"
	"github.com/JaimeStill/lading/pkg/storage"
)

const (
	sourcesPrefix = "sources/"
	maxLineBytes  = 1 << 20
)

// ImportCommand names the snapshot blob to load. An empty Key uses the
// configured snapshot key. Replace removes entries previously imported
// from the same key in the same transaction.
type ImportCommand struct {
	Key     string `json:"key"`
	Replace bool   `json:"replace"`
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	Key      string `json:"key"`
	Imported int    `json:"imported"`
	Replaced int64  `json:"replaced"`
	// Strategies counts entries per embedding strategy.
	Strategies map[string]int `json:"strategies"`
}

// UploadCommand is a reference source file and the entry describing it.
// Content is the searchable text; the file itself is stored as-is.
type UploadCommand struct {
	CreateCommand
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
}

func (r *repo) Import(ctx context.Context, cmd ImportCommand) (*ImportResult, error) {
	key := strings.TrimSpace(cmd.Key)
	if key == "" {
		key = r.cfg.SnapshotKey
	}

	cmds, err := r.readSnapshot(ctx, key)
	if err != nil {
		return nil, err
	}

	results := make([]embedding.Result, len(cmds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.ImportConcurrency)
	for i, c := range cmds {
		g.Go(func() error {
			res, err := r.embed(gctx, c)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &ImportResult{Key: key, Strategies: make(map[string]int)}
	m := pgtype.NewMap()

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if cmd.Replace {
			res, err := tx.ExecContext(ctx, "DELETE FROM reference_documents WHERE source_key = $1", key)
			if err != nil {
				return struct{}{}, fmt.Errorf("replace snapshot entries: %w", err)
			}
			if out.Replaced, err = res.RowsAffected(); err != nil {
				return struct{}{}, err
			}
		}

		for i, c := range cmds {
			_, err := r.insert(ctx, tx, m, pending{
				id:        uuid.New(),
				cmd:       c,
				sourceKey: &key,
				vector:    results[i].Vector,
				strategy:  results[i].Strategy,
			})
			if err != nil {
				return struct{}{}, fmt.Errorf("insert %q: %w", c.Title, err)
			}
			out.Strategies[results[i].Strategy]++
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}
	out.Imported = len(cmds)

	r.cache.Invalidate(ctx, CachePrefix)

	if len(out.Strategies) > 1 {
		r.logger.Warn("corpus import mixed embedding strategies", "key", key, "strategies", out.Strategies)
	}
	r.logger.Info("corpus imported",
		"key", key,
		"imported", out.Imported,
		"replaced", out.Replaced,
	)
	return out, nil
}

// readSnapshot parses a JSON-lines snapshot. Blank lines are skipped; any
// malformed line fails the whole import.
func (r *repo) readSnapshot(ctx context.Context, key string) ([]CreateCommand, error) {
	rc, err := r.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
		}
		if errors.Is(err, storage.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return nil, fmt.Errorf("download snapshot: %w", err)
	}
	defer rc.Close()

	var cmds []CreateCommand
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for line := 1; sc.Scan(); line++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var c CreateCommand
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalid, line, err)
		}
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cmds = append(cmds, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	if len(cmds) == 0 {
		return nil, fmt.Errorf("%w: snapshot %s has no entries", ErrInvalid, key)
	}
	return cmds, nil
}

func (r *repo) Upload(ctx context.Context, cmd UploadCommand) (*Entry, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalid)
	}

	res, err := r.embed(ctx, cmd.CreateCommand)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := buildSourceKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload source blob: %w", err)
	}

	m := pgtype.NewMap()
	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Entry, error) {
		return r.insert(ctx, tx, m, pending{
			id:        id,
			cmd:       cmd.CreateCommand,
			sourceKey: &key,
			pageCount: cmd.PageCount,
			vector:    res.Vector,
			strategy:  res.Strategy,
		})
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	r.cache.Invalidate(ctx, CachePrefix)
	r.logger.Info("corpus source uploaded",
		"id", e.ID,
		"key", key,
		"category", e.Category,
		"size", len(cmd.Data),
	)
	return &e, nil
}

func buildSourceKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("%s%s/%s", sourcesPrefix, id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		name = "source"
	}
	return url.PathEscape(name)
}
