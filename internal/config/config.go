// Package config resolves the process configuration from environment
// variables. Configuration errors are fatal by design: retrying with a bad
// credential or an unusable storage target can never succeed, so the process
// must fail loudly at startup instead of entering its reconnect loop.
package config

import (
	"time"

	"github.com/gabapcia/tokenwatch/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// Storage backend identifiers accepted by StorageBackend.
const (
	StorageBackendGCS        = "gcs"
	StorageBackendFilesystem = "fs"
)

// Config is the fully resolved process configuration.
type Config struct {
	// Feed connection
	APIKey string `envconfig:"BIRDEYE_API_KEY" required:"true"`
	Chain  string `envconfig:"BIRDEYE_CHAIN" default:"solana"`

	// Object storage. The GCS credential is required whenever the gcs backend
	// is selected: uploads without it can only ever fail, so its absence is a
	// startup error rather than a stream of runtime 401s.
	StorageBackend  string `envconfig:"STORAGE_BACKEND" default:"gcs" validate:"oneof=gcs fs"`
	GCSBucket       string `envconfig:"GCS_BUCKET_NAME" default:"birdeye-tracker-bucket"`
	GCSAccessToken  string `envconfig:"GCS_ACCESS_TOKEN" validate:"required_if=StorageBackend gcs"`
	LocalStorageDir string `envconfig:"LOCAL_STORAGE_DIR" default:"./data"`

	// Optional Redis-backed idempotency guard; empty address disables it.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Reconnect backoff bounds
	ReconnectDelay    time.Duration `envconfig:"RECONNECT_DELAY" default:"1s"`
	ReconnectMaxDelay time.Duration `envconfig:"RECONNECT_MAX_DELAY" default:"30s"`

	// Observability
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`
	HealthPort       int    `envconfig:"PORT" default:"8080"`
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
