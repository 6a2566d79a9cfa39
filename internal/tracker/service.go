// Package tracker runs the stream session: it connects to the feed, declares
// the current subscriptions, consumes inbound messages, grows the watch set
// on new listings, archives transactions, and reconnects with capped
// exponential backoff whenever the connection drops.
package tracker

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/gabapcia/tokenwatch/internal/feed"
	"github.com/gabapcia/tokenwatch/internal/pkg/logger"
	"github.com/gabapcia/tokenwatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/tokenwatch/internal/txarchive"

	"github.com/google/uuid"
)

// Default reconnect backoff bounds. Attempts are unlimited: the service is
// expected to run indefinitely under a process supervisor, so it never gives
// up on its own.
const (
	defaultReconnectDelay    = 1 * time.Second
	defaultReconnectMaxDelay = 30 * time.Second
)

var ErrServiceAlreadyStarted = errors.New("service already started")

// TokenRegistry is the watch-set port consumed by the tracker.
type TokenRegistry interface {
	// Track registers a token address, reporting whether the set grew.
	Track(ctx context.Context, address string) (bool, error)

	// SubscriptionBatches yields a snapshot of the watch set in feed-sized
	// batches.
	SubscriptionBatches() iter.Seq[[]string]

	// Size reports how many addresses are currently watched.
	Size() int
}

// TransactionArchiver is the persistence port consumed by the tracker.
type TransactionArchiver interface {
	Archive(ctx context.Context, tx feed.Transaction) error
}

// Service defines the interface for the stream session.
type Service interface {
	// Start runs the session until ctx is canceled. It blocks: connection
	// losses are handled internally with backoff and never surface as
	// errors. The only non-nil return happens when a second Start is
	// attempted on a running service.
	Start(ctx context.Context) error

	// State reports the current lifecycle state.
	State() State
}

// service is the concrete implementation of the Service interface.
type service struct {
	mu        sync.Mutex
	isStarted bool

	dialer   FeedDialer
	registry TokenRegistry
	archiver TransactionArchiver

	reconnect retry.Retry
	state     *stateHolder

	// archiveWG tracks in-flight asynchronous archive operations so Start
	// can drain them before returning.
	archiveWG sync.WaitGroup
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

// config holds the optional settings applied by New.
type config struct {
	reconnect retry.Retry
}

// Option configures the tracker service.
type Option func(*config)

// WithReconnectRetry overrides the reconnect policy. The default retries
// forever with exponential backoff between 1 and 30 seconds.
func WithReconnectRetry(r retry.Retry) Option {
	return func(c *config) {
		c.reconnect = r
	}
}

// New creates a tracker session binding the feed dialer, the token registry,
// and the transaction archiver together.
func New(dialer FeedDialer, registry TokenRegistry, archiver TransactionArchiver, opts ...Option) *service {
	cfg := config{
		reconnect: retry.New(
			retry.WithUnlimitedAttempts(),
			retry.WithDelay(defaultReconnectDelay),
			retry.WithMaxDelay(defaultReconnectMaxDelay),
		),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		dialer:    dialer,
		registry:  registry,
		archiver:  archiver,
		reconnect: cfg.reconnect,
		state:     newStateHolder(),
	}
}

// State reports the tracker's current lifecycle state.
func (s *service) State() State {
	return s.state.get()
}

// Start runs connect/subscribe/stream cycles until ctx is canceled.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isStarted {
		s.mu.Unlock()
		return ErrServiceAlreadyStarted
	}
	s.isStarted = true
	s.mu.Unlock()

	defer func() {
		s.archiveWG.Wait()
		s.state.set(StateTerminated)

		s.mu.Lock()
		s.isStarted = false
		s.mu.Unlock()
	}()

	for {
		stream, err := s.connect(ctx)
		if err != nil {
			// Only context cancellation escapes the unlimited retry loop.
			return nil
		}

		if err := s.subscribe(ctx, stream); err != nil {
			_ = stream.Close()
			if ctx.Err() != nil {
				return nil
			}

			s.state.set(StateReconnecting)
			logger.Warn(ctx, "subscription declaration failed; reconnecting", "error", err)
			continue
		}

		s.state.set(StateStreaming)
		logger.Info(ctx, "feed session established", "watched.tokens", s.registry.Size())

		err = s.consume(ctx, stream)
		_ = stream.Close()

		if ctx.Err() != nil {
			return nil
		}

		s.state.set(StateReconnecting)
		logger.Warn(ctx, "feed connection lost; reconnecting", "error", err)
	}
}

// connect dials the feed under the configured backoff policy.
func (s *service) connect(ctx context.Context) (FeedStream, error) {
	s.state.set(StateConnecting)

	var stream FeedStream
	err := s.reconnect.Execute(ctx, func() error {
		st, err := s.dialer.Dial(ctx)
		if err != nil {
			logger.Warn(ctx, "feed dial failed", "error", err)
			return err
		}

		stream = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stream, nil
}

// subscribe declares the new-listing subscription and the full current set of
// transaction subscription batches on a fresh connection.
func (s *service) subscribe(ctx context.Context, stream FeedStream) error {
	s.state.set(StateSubscribing)

	if err := stream.Send(ctx, feed.NewListingSubscription()); err != nil {
		return err
	}

	return s.declareTransactionSubscriptions(ctx, stream)
}

// declareTransactionSubscriptions re-sends the whole watch set in batches.
//
// The feed's subscription model has no incremental add: interest is declared
// for the entire set every time it grows. Redundant control messages are the
// price for never diverging from the intended watch set.
func (s *service) declareTransactionSubscriptions(ctx context.Context, stream FeedStream) error {
	for batch := range s.registry.SubscriptionBatches() {
		msg, err := feed.TransactionSubscription(batch)
		if err != nil {
			return err
		}

		if err := stream.Send(ctx, msg); err != nil {
			return err
		}

		logger.Debug(ctx, "transaction subscription declared", "batch.size", len(batch))
	}

	return nil
}

// consume is the steady-state loop: it reads inbound messages one at a time
// and dispatches them until the context is done or the connection fails.
func (s *service) consume(ctx context.Context, stream FeedStream) error {
	for {
		raw, err := stream.Receive(ctx)
		if err != nil {
			return err
		}

		event, err := feed.Decode(raw)
		if err != nil {
			// Decode failures are non-fatal: skip the message, keep the stream.
			logger.Warn(ctx, "skipping undecodable feed message", "error", err)
			continue
		}

		switch e := event.(type) {
		case feed.NewListing:
			if err := s.handleNewListing(ctx, stream, e); err != nil {
				return err
			}
		case feed.Transaction:
			s.dispatchArchive(ctx, e)
		}
	}
}

// handleNewListing grows the watch set and, when it actually grew, re-declares
// the full transaction subscription without leaving the streaming state. Send
// failures propagate so the session reconnects.
func (s *service) handleNewListing(ctx context.Context, stream FeedStream, listing feed.NewListing) error {
	changed, err := s.registry.Track(ctx, listing.TokenAddress)
	if err != nil {
		logger.Warn(ctx, "ignoring unusable new listing",
			"token.address", listing.TokenAddress,
			"error", err,
		)
		return nil
	}

	if !changed {
		return nil
	}

	logger.Info(ctx, "new token listed",
		"token.address", listing.TokenAddress,
		"watched.tokens", s.registry.Size(),
	)

	return s.declareTransactionSubscriptions(ctx, stream)
}

// dispatchArchive persists the transaction without blocking reception of the
// next inbound message. Each record is self-contained: a failure is logged
// and abandoned, never affecting other records.
func (s *service) dispatchArchive(ctx context.Context, tx feed.Transaction) {
	archiveID := uuid.Must(uuid.NewV7()).String()

	s.archiveWG.Add(1)
	go func() {
		defer s.archiveWG.Done()

		err := s.archiver.Archive(ctx, tx)
		switch {
		case err == nil:
			logger.Debug(ctx, "transaction archived",
				"archive.id", archiveID,
				"token.address", tx.ToAddress,
			)
		case errors.Is(err, txarchive.ErrTransactionAlreadyArchived):
			logger.Debug(ctx, "transaction already archived; skipping",
				"archive.id", archiveID,
				"token.address", tx.ToAddress,
			)
		default:
			// No retry at this layer: the loss is visible through logs only.
			logger.Error(ctx, "failed to archive transaction",
				"archive.id", archiveID,
				"token.address", tx.ToAddress,
				"error", err,
			)
		}
	}()
}
