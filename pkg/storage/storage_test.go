package storage_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/pkg/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryRoundTrip(t *testing.T) {
	s := storage.NewMemory(discardLogger())
	ctx := context.Background()

	require.NoError(t, s.Upload(ctx, "snapshots/corpus.jsonl", strings.NewReader(`{"title":"UN1203"}`), "application/x-ndjson"))

	ok, err := s.Exists(ctx, "snapshots/corpus.jsonl")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, "snapshots/corpus.jsonl")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, `{"title":"UN1203"}`, string(data))

	require.NoError(t, s.Delete(ctx, "snapshots/corpus.jsonl"))
	_, err = s.Download(ctx, "snapshots/corpus.jsonl")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "snapshots/corpus.jsonl"), storage.ErrNotFound)
}

func TestKeyValidation(t *testing.T) {
	s := storage.NewMemory(discardLogger())
	ctx := context.Background()

	tests := []struct {
		key  string
		want error
	}{
		{"", storage.ErrEmptyKey},
		{"../etc/passwd", storage.ErrInvalidKey},
		{"sources/../../x", storage.ErrInvalidKey},
		{"/abs", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := s.Exists(ctx, tt.key)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := s.Exists(ctx, "sources/erg..2024.pdf")
	assert.NoError(t, err)
}

func TestMapHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, storage.MapHTTPStatus(storage.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, storage.MapHTTPStatus(storage.ErrInvalidKey))
	assert.Equal(t, http.StatusInternalServerError, storage.MapHTTPStatus(io.ErrUnexpectedEOF))
}

func TestConfig(t *testing.T) {
	assert.Error(t, (&storage.Config{}).Finalize(nil), "azure requires connection string")

	cfg := &storage.Config{Backend: storage.BackendMemory}
	require.NoError(t, cfg.Finalize(nil))
	assert.Equal(t, "corpus", cfg.ContainerName)
	assert.Equal(t, 3, cfg.MaxRetries)

	assert.Error(t, (&storage.Config{Backend: "s3"}).Finalize(nil))
	assert.Error(t, (&storage.Config{Backend: storage.BackendMemory, MaxRetries: -1}).Finalize(nil))
}
