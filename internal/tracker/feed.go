package tracker

import (
	"context"
	"errors"
)

// ErrConnectionClosed is the sentinel FeedStream implementations wrap when
// the underlying transport drops. Any Receive or Send failure makes the
// tracker abandon the stream and reconnect, so the sentinel mainly serves
// logging and tests.
var ErrConnectionClosed = errors.New("feed connection closed")

// FeedStream is a live bidirectional message channel to the feed. Inbound
// messages are raw text frames; outbound messages are subscription control
// frames.
//
// Receive and Send must honor context cancellation. Implementations are
// expected to be safe for one concurrent reader plus one concurrent writer.
type FeedStream interface {
	// Receive blocks until the next inbound message arrives, the context is
	// done, or the connection fails.
	Receive(ctx context.Context) ([]byte, error)

	// Send writes one outbound message to the feed. The feed's subscription
	// protocol is fire-and-forget: a nil return means the message was
	// written to the transport, not that the feed acknowledged it.
	Send(ctx context.Context, message []byte) error

	// Close tears down the connection. It is safe to call after a failure.
	Close() error
}

// FeedDialer establishes fresh feed connections. The tracker dials once at
// startup and again after every connection loss; each Dial must return an
// independent, ready-to-use stream.
type FeedDialer interface {
	Dial(ctx context.Context) (FeedStream, error)
}
