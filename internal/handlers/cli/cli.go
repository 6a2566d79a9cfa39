package cli

import (
	"context"
	"os"

	"github.com/gabapcia/tokenwatch/internal/handlers/httpserver"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
	"github.com/gabapcia/tokenwatch/internal/tracker"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the tokenwatch CLI application.
//
// It registers the available commands, currently:
//
//   - `start`: Connects to the feed and runs the tracking session.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - t: The tracker service implementation run by the start command.
//   - reg: The token registry used to seed the watch set before connecting.
//   - health: The HTTP health server run alongside the session.
func Run(ctx context.Context, t tracker.Service, reg tokenregistry.Service, health *httpserver.Server) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "tokenwatch",
		Description:           "Command-line interface for running the tokenwatch stream-to-storage session.",
		Usage:                 "tokenwatch [command] [flags]",
		Commands: []*cli.Command{
			startSessionCommand(t, reg, health),
		},
	}

	return app.Run(ctx, os.Args)
}
