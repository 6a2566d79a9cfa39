package cli

import (
	"context"
	"os"
	"testing"

	"github.com/gabapcia/tokenwatch/internal/handlers/httpserver"
	"github.com/gabapcia/tokenwatch/internal/pkg/logger"
	"github.com/gabapcia/tokenwatch/internal/pkg/validator"
	"github.com/gabapcia/tokenwatch/internal/tokenregistry"
	"github.com/gabapcia/tokenwatch/internal/tracker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init(logger.WithLevel("error"))
}

// stubTracker returns a fixed result from Start so the session exits
// immediately instead of connecting anywhere.
type stubTracker struct {
	err error
}

func (s stubTracker) Start(context.Context) error {
	return s.err
}

func (s stubTracker) State() tracker.State {
	return tracker.StateDisconnected
}

func setArgs(t *testing.T, args ...string) {
	t.Helper()

	original := os.Args
	t.Cleanup(func() { os.Args = original })
	os.Args = args
}

func newHealthServer(t tracker.Service) *httpserver.Server {
	// Port 0 binds an ephemeral port, keeping parallel test runs apart.
	return httpserver.New(0, t)
}

func TestRun(t *testing.T) {
	t.Run("should print help without starting a session", func(t *testing.T) {
		setArgs(t, "tokenwatch", "--help")

		tr := stubTracker{err: assert.AnError}
		err := Run(t.Context(), tr, tokenregistry.New(), newHealthServer(tr))

		assert.NoError(t, err)
	})

	t.Run("should run the session and propagate its result", func(t *testing.T) {
		setArgs(t, "tokenwatch", "start")

		tr := stubTracker{err: assert.AnError}
		err := Run(t.Context(), tr, tokenregistry.New(), newHealthServer(tr))

		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("should seed the watch set from token flags", func(t *testing.T) {
		setArgs(t, "tokenwatch", "start",
			"--token", "So11111111111111111111111111111111111111112",
			"--token", "TOKEN123",
		)

		reg := tokenregistry.New()
		tr := stubTracker{}
		err := Run(t.Context(), tr, reg, newHealthServer(tr))

		require.NoError(t, err)
		assert.Equal(t, 2, reg.Size())
	})

	t.Run("should reject an empty token flag", func(t *testing.T) {
		setArgs(t, "tokenwatch", "start", "--token", "")

		tr := stubTracker{}
		err := Run(t.Context(), tr, tokenregistry.New(), newHealthServer(tr))

		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidation)
	})
}
