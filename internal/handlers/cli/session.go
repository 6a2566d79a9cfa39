package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabapcia/tokenwatch/internal/handlers/httpserver"
	"github.com/gabapcia/tokenwatch/internal/pkg/logger"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
	"github.com/gabapcia/tokenwatch/internal/tracker"

	"github.com/urfave/cli/v3"
)

// healthShutdownTimeout bounds how long the health server gets to drain on exit.
const healthShutdownTimeout = 5 * time.Second

// startSessionCommand returns the CLI command running the full tracking
// session: feed connection, subscription management, and transaction
// archiving, plus the health endpoint.
//
// Usage example:
//
//	tokenwatch start --token So11111111111111111111111111111111111111112
//
// The process runs indefinitely until it receives an interrupt (SIGINT or
// SIGTERM). Watch sets are session-scoped, so --token is the only way to
// start with a non-empty one.
func startSessionCommand(t tracker.Service, reg tokenregistry.Service, health *httpserver.Server) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Connects to the feed, subscribes to new listings, and archives swap transactions.",
		Usage:       "Runs the tracking session. Terminates gracefully on Ctrl+C or termination signals.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "token",
				Usage: "Token address to watch from the start (repeatable)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			for _, address := range c.StringSlice("token") {
				if _, err := reg.Track(ctx, address); err != nil {
					return err
				}
			}

			go func() {
				if err := health.Start(); err != nil {
					logger.Error(ctx, "health server failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), healthShutdownTimeout)
				defer cancel()

				if err := health.Shutdown(shutdownCtx); err != nil {
					logger.Error(ctx, "health server shutdown failed", "error", err)
				}
			}()

			return t.Start(ctx)
		},
	}
}
