package database_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/lading/pkg/database"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &database.Config{User: "lading"}
	require.NoError(t, cfg.Finalize(nil))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "lading", cfg.Name)
	assert.Equal(t, 15*time.Minute, cfg.ConnMaxLifetimeDuration())
	assert.Equal(t, 5*time.Second, cfg.ConnTimeoutDuration())
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_PORT", "6543")

	cfg := &database.Config{User: "lading"}
	require.NoError(t, cfg.Finalize(&database.Env{Host: "TEST_DB_HOST", Port: "TEST_DB_PORT"}))

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
}

func TestConfigValidation(t *testing.T) {
	assert.Error(t, (&database.Config{}).Finalize(nil))
	assert.Error(t, (&database.Config{User: "u", MaxOpenConns: 2, MaxIdleConns: 4}).Finalize(nil))
	assert.Error(t, (&database.Config{User: "u", ConnTimeout: "soon"}).Finalize(nil))
}

func TestConfigURL(t *testing.T) {
	cfg := &database.Config{User: "lading", Password: "p@ss", Host: "db", Port: 5432, Name: "freight", SSLMode: "disable"}
	assert.Equal(t, "postgres://lading:p%40ss@db:5432/freight?sslmode=disable", cfg.URL())
}

func TestConfigMerge(t *testing.T) {
	cfg := &database.Config{Host: "a", Port: 1, User: "u"}
	cfg.Merge(&database.Config{Host: "b"})

	assert.Equal(t, "b", cfg.Host)
	assert.Equal(t, 1, cfg.Port)
	assert.Equal(t, "u", cfg.User)
}
