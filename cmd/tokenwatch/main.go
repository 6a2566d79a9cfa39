package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gabapcia/tokenwatch/internal/config"
	"github.com/gabapcia/tokenwatch/internal/handlers/cli"
	"github.com/gabapcia/tokenwatch/internal/handlers/httpserver"
	"github.com/gabapcia/tokenwatch/internal/infra/feed/birdeye"
	"github.com/gabapcia/tokenwatch/internal/infra/storage/fs"
	"github.com/gabapcia/tokenwatch/internal/infra/storage/gcs"
	redisstorage "github.com/gabapcia/tokenwatch/internal/infra/storage/redis"
	"github.com/gabapcia/tokenwatch/internal/pkg/logger"
	"github.com/gabapcia/tokenwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/tokenwatch/internal/pkg/telemetry"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
	"github.com/gabapcia/tokenwatch/internal/tracker"
	"github.com/gabapcia/tokenwatch/internal/txarchive"
)

const serviceName = "tokenwatch"

// newObjectStorage selects the blob store backend from configuration.
func newObjectStorage(cfg config.Config) (txarchive.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendFilesystem:
		return fs.New(cfg.LocalStorageDir)
	default:
		return gcs.New(cfg.GCSBucket, cfg.GCSAccessToken), nil
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		return err
	}
	defer logger.Sync()

	storage, err := newObjectStorage(cfg)
	if err != nil {
		return err
	}

	archiveOpts := make([]txarchive.Option, 0, 1)
	if cfg.RedisAddr != "" {
		redisClient, err := redisstorage.NewClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		archiveOpts = append(archiveOpts, txarchive.WithIdempotencyGuard(redisClient))
	}

	var (
		registry = tokenregistry.New()
		archive  = txarchive.New(storage, archiveOpts...)
		dialer   = birdeye.New(cfg.Chain, cfg.APIKey)
	)

	session := tracker.New(dialer, registry, archive,
		tracker.WithReconnectRetry(retry.New(
			retry.WithUnlimitedAttempts(),
			retry.WithDelay(cfg.ReconnectDelay),
			retry.WithMaxDelay(cfg.ReconnectMaxDelay),
		)),
	)

	health := httpserver.New(cfg.HealthPort, session)

	return cli.Run(ctx, session, registry, health)
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
