package lifecycle_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/pkg/lifecycle"
)

func TestReadyAfterStartup(t *testing.T) {
	lc := lifecycle.New()

	var ran atomic.Bool
	lc.OnStartup(func() { ran.Store(true) })

	assert.False(t, lc.Ready())
	lc.WaitForStartup()

	assert.True(t, ran.Load())
	assert.True(t, lc.Ready())
	assert.NoError(t, lc.Err())
}

func TestFailBlocksReadiness(t *testing.T) {
	lc := lifecycle.New()
	boom := errors.New("ping failed")
	lc.OnStartup(func() { lc.Fail(boom) })

	lc.WaitForStartup()

	assert.False(t, lc.Ready())
	assert.ErrorIs(t, lc.Err(), boom)
}

func TestShutdownRunsHooks(t *testing.T) {
	lc := lifecycle.New()

	var closed atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		closed.Store(true)
	})

	require.NoError(t, lc.Shutdown(time.Second))
	assert.True(t, closed.Load())
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()
	release := make(chan struct{})
	defer close(release)

	lc.OnShutdown(func() { <-release })

	assert.Error(t, lc.Shutdown(10*time.Millisecond))
}
