package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory(discardLogger()).(*memoryCache)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "links:all", []byte("v"), time.Minute))

	got, ok, err := c.Get(ctx, "links:all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "links:all")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, c.entries)
}

func TestMemoryNoTTL(t *testing.T) {
	c := NewMemory(discardLogger()).(*memoryCache)
	now := time.Now()
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))

	now = now.Add(24 * time.Hour)
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryDeleteByPrefix(t *testing.T) {
	c := NewMemory(discardLogger())
	ctx := context.Background()

	for _, k := range []string{"links:a", "links:b", "products:unclassified:0", "corpus:x"} {
		require.NoError(t, c.Set(ctx, k, []byte("v"), time.Minute))
	}

	n, err := c.DeleteByPrefix(ctx, "links:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok, _ := c.Get(ctx, "links:a")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "corpus:x")
	assert.True(t, ok)
}

func TestMemoryCopiesValues(t *testing.T) {
	c := NewMemory(discardLogger())
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, time.Minute))
	buf[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}
