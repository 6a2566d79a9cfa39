package config

import (
	"testing"
	"time"

	"github.com/gabapcia/tokenwatch/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()

	t.Setenv("BIRDEYE_API_KEY", "test-key")
	t.Setenv("GCS_ACCESS_TOKEN", "test-token")
}

func TestLoad(t *testing.T) {
	t.Run("should resolve defaults around the required settings", func(t *testing.T) {
		setBaseEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-key", cfg.APIKey)
		assert.Equal(t, "solana", cfg.Chain)
		assert.Equal(t, StorageBackendGCS, cfg.StorageBackend)
		assert.Equal(t, "birdeye-tracker-bucket", cfg.GCSBucket)
		assert.Equal(t, 1*time.Second, cfg.ReconnectDelay)
		assert.Equal(t, 30*time.Second, cfg.ReconnectMaxDelay)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 8080, cfg.HealthPort)
	})

	t.Run("should fail without an api key", func(t *testing.T) {
		t.Setenv("BIRDEYE_API_KEY", "")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("should fail on an unknown storage backend", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("STORAGE_BACKEND", "s3")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidation)
	})

	t.Run("should fail when the gcs backend has no credential", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GCS_ACCESS_TOKEN", "")

		_, err := Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidation)
	})

	t.Run("should not require a gcs credential for the filesystem backend", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("GCS_ACCESS_TOKEN", "")
		t.Setenv("STORAGE_BACKEND", StorageBackendFilesystem)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, StorageBackendFilesystem, cfg.StorageBackend)
	})
}
