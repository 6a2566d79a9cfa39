// Package txarchive materializes decoded transaction events into canonical
// records and persists each one as a pretty-printed JSON object in a blob
// store, keyed by token address and block timestamp.
package txarchive

import (
	"context"
	"fmt"
	"time"

	"github.com/gabapcia/tokenwatch/internal/feed"
)

// defaultClaimTTL bounds how long an idempotency claim on a storage key is
// held before another writer may take it over.
const defaultClaimTTL = 24 * time.Hour

// ObjectStorage is the blob store port. Writes are unconditional: an existing
// object at the same key is replaced.
type ObjectStorage interface {
	// Put writes data under the given key, creating or replacing the object.
	//
	// ctx controls cancellation and deadlines for the underlying I/O.
	Put(ctx context.Context, key string, data []byte) error
}

// Service defines the interface for archiving decoded transaction events.
type Service interface {
	// Archive converts the transaction into its canonical record and writes
	// it to the blob store.
	//
	// Returns:
	//   - nil when the record was written.
	//   - ErrTransactionAlreadyArchived when an idempotency guard reports the
	//     record's key as already claimed; nothing is written.
	//   - Any storage error, unretried. Retry policy belongs to the caller,
	//     and a failed record never affects subsequent ones.
	Archive(ctx context.Context, tx feed.Transaction) error
}

// service is the concrete implementation of the Service interface.
type service struct {
	storage ObjectStorage

	idempotencyGuard IdempotencyGuard
	claimTTL         time.Duration
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

// config holds the optional settings applied by New.
type config struct {
	idempotencyGuard IdempotencyGuard
	claimTTL         time.Duration
}

// Option configures the archive service.
type Option func(*config)

// WithIdempotencyGuard installs a guard that claims each storage key before
// writing, so same-second transactions for the same token are archived once.
// Without a guard the sink keeps plain overwrite semantics.
func WithIdempotencyGuard(g IdempotencyGuard) Option {
	return func(c *config) {
		c.idempotencyGuard = g
	}
}

// WithClaimTTL sets how long idempotency claims are held. Default: 24 hours.
func WithClaimTTL(d time.Duration) Option {
	return func(c *config) {
		c.claimTTL = d
	}
}

// New creates an archive service writing to the given blob store.
func New(storage ObjectStorage, opts ...Option) *service {
	cfg := config{
		idempotencyGuard: nopIdempotencyGuard{},
		claimTTL:         defaultClaimTTL,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		storage:          storage,
		idempotencyGuard: cfg.idempotencyGuard,
		claimTTL:         cfg.claimTTL,
	}
}

// Archive materializes the transaction and persists its payload under the
// derived storage key.
func (s *service) Archive(ctx context.Context, tx feed.Transaction) error {
	record := materialize(tx)
	key := record.StorageKey()

	data, err := record.prettyPayload()
	if err != nil {
		return fmt.Errorf("serializing transaction payload: %w", err)
	}

	if err := s.idempotencyGuard.ClaimTransaction(ctx, key, s.claimTTL); err != nil {
		return err
	}

	if err := s.storage.Put(ctx, key, data); err != nil {
		return fmt.Errorf("writing transaction object %q: %w", key, err)
	}

	return nil
}
