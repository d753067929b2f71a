package infrastructure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/internal/config"
	"github.com/JaimeStill/lading/internal/infrastructure"
	"github.com/JaimeStill/lading/pkg/cache"
	"github.com/JaimeStill/lading/pkg/database"
	"github.com/JaimeStill/lading/pkg/embedding"
	"github.com/JaimeStill/lading/pkg/storage"
)

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "lading",
			User:            "lading",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Cache:     cache.Config{Backend: cache.BackendMemory},
		Storage:   storage.Config{Backend: storage.BackendMemory, ContainerName: "corpus"},
		Embedding: embedding.Config{Dimensions: 32, Timeout: "1s"},
		LogLevel:  "warn",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	require.NoError(t, err)
	defer infra.Database.Connection().Close()

	assert.NotNil(t, infra.Lifecycle)
	assert.NotNil(t, infra.Logger)
	assert.NotNil(t, infra.Cache)
	assert.NotNil(t, infra.Reader)
	assert.NotNil(t, infra.Storage)
	assert.Equal(t, 32, infra.Embedder.Dimensions())
}

func TestNewUnknownBackends(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "memcached"
	_, err := infrastructure.New(cfg)
	assert.ErrorContains(t, err, "cache init failed")

	cfg = validConfig()
	cfg.Storage = storage.Config{Backend: storage.BackendAzure, ConnectionString: "not-a-connection-string"}
	_, err = infrastructure.New(cfg)
	assert.ErrorContains(t, err, "storage init failed")
}

func TestStartWithMemoryBackends(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	require.NoError(t, err)

	require.NoError(t, infra.Cache.Start(infra.Lifecycle))
	require.NoError(t, infra.Storage.Start(infra.Lifecycle))
	infra.Lifecycle.WaitForStartup()
	assert.True(t, infra.Lifecycle.Ready())

	require.NoError(t, infra.Lifecycle.Shutdown(time.Second))
	infra.Database.Connection().Close()
}
