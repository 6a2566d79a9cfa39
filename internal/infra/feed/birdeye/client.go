// Package birdeye implements the tracker's feed ports on top of the Birdeye
// public websocket API using gorilla/websocket.
package birdeye

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gabapcia/tokenwatch/internal/tracker"

	"github.com/gorilla/websocket"
)

// defaultBaseURL is the Birdeye websocket entrypoint; the chain segment is
// appended at dial time.
const defaultBaseURL = "wss://public-api.birdeye.so/socket"

// subprotocol required by the Birdeye socket endpoint.
const subprotocol = "echo-protocol"

// config holds the tunable connection settings.
type config struct {
	baseURL          string
	handshakeTimeout time.Duration
	writeTimeout     time.Duration
	pingInterval     time.Duration
	pongTimeout      time.Duration
}

// Option configures the Birdeye client.
type Option func(*config)

// WithBaseURL overrides the websocket entrypoint. Intended for tests pointing
// at a local server.
func WithBaseURL(u string) Option {
	return func(c *config) {
		c.baseURL = u
	}
}

// WithHandshakeTimeout bounds the websocket handshake. Default: 10 seconds.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *config) {
		c.handshakeTimeout = d
	}
}

// WithWriteTimeout bounds each outbound frame write. Default: 10 seconds.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) {
		c.writeTimeout = d
	}
}

// WithPingInterval sets how often ping frames are sent to keep the
// connection alive across idle stretches. Default: 30 seconds.
func WithPingInterval(d time.Duration) Option {
	return func(c *config) {
		c.pingInterval = d
	}
}

// client dials Birdeye websocket sessions for a fixed chain and credential.
type client struct {
	chain  string
	apiKey string
	cfg    config
}

// Ensure compile-time compliance with the tracker's dialer port.
var _ tracker.FeedDialer = (*client)(nil)

// New creates a Birdeye feed dialer for the given chain (e.g. "solana") and
// API key. Credential validity is not checked here; a bad key surfaces as a
// handshake failure on the first Dial.
func New(chain, apiKey string, opts ...Option) *client {
	cfg := config{
		baseURL:          defaultBaseURL,
		handshakeTimeout: 10 * time.Second,
		writeTimeout:     10 * time.Second,
		pingInterval:     30 * time.Second,
		pongTimeout:      75 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		chain:  chain,
		apiKey: apiKey,
		cfg:    cfg,
	}
}

// endpoint builds the chain-scoped websocket URL with the API key credential.
func (c *client) endpoint() string {
	return fmt.Sprintf("%s/%s?x-api-key=%s", c.cfg.baseURL, c.chain, url.QueryEscape(c.apiKey))
}

// Dial establishes a fresh websocket session. Each call returns an
// independent stream with its own keepalive loop.
func (c *client) Dial(ctx context.Context) (tracker.FeedStream, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.handshakeTimeout,
		Subprotocols:     []string{subprotocol},
	}

	conn, resp, err := dialer.DialContext(ctx, c.endpoint(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("birdeye websocket dial: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("birdeye websocket dial: %w", err)
	}

	return newStream(conn, c.cfg), nil
}
