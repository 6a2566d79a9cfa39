// Package tokenregistry owns the watch set of token addresses subscribed for
// transaction monitoring and partitions it into feed-sized subscription
// batches.
package tokenregistry

import (
	"context"
	"iter"
	"sync"

	"github.com/gabapcia/tokenwatch/internal/feed"
	"github.com/gabapcia/tokenwatch/internal/pkg/validator"
)

// Service defines the interface for maintaining the set of watched token
// addresses and producing subscription batches from it.
type Service interface {
	// Track registers a token address for transaction monitoring.
	//
	// Parameters:
	//   - ctx: controls cancellation and timeout.
	//   - address: the token address to watch.
	//
	// Returns:
	//   - true when the address was not yet watched and the set grew.
	//   - false when the address was already present (no-op).
	//   - An error if validation of the address fails.
	Track(ctx context.Context, address string) (bool, error)

	// SubscriptionBatches partitions a snapshot of the current watch set
	// into consecutive batches of at most feed.MaxAddressesPerSubscription
	// addresses each, in stable insertion order.
	//
	// The sequence is finite and lazily produced. Calling it again after the
	// set has grown reflects the updated set; sequences obtained earlier are
	// unaffected.
	SubscriptionBatches() iter.Seq[[]string]

	// Size returns the number of distinct addresses currently watched.
	Size() int
}

// trackedToken is the validated form of a Track request.
type trackedToken struct {
	Address string `validate:"required"` // Token address to be watched
}

// service is the concrete implementation of the Service interface. The mutex
// serializes access so that CLI seeding and the stream loop can share one
// registry safely.
type service struct {
	mu  sync.Mutex
	set *watchSet
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

// New creates an empty token registry. Watch sets are session-scoped: the
// registry starts empty on every process start and never shrinks.
func New() *service {
	return &service{
		set: newWatchSet(),
	}
}

// Track validates the address and inserts it into the watch set if absent.
func (s *service) Track(_ context.Context, address string) (bool, error) {
	token := trackedToken{Address: address}
	if err := validator.Validate(token); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.set.add(token.Address), nil
}

// SubscriptionBatches snapshots the watch set and chunks it into feed-sized
// batches.
func (s *service) SubscriptionBatches() iter.Seq[[]string] {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.set.chunks(feed.MaxAddressesPerSubscription)
}

// Size returns the current number of watched addresses.
func (s *service) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.set.size()
}
