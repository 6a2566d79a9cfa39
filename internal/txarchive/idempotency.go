package txarchive

import (
	"context"
	"errors"
	"time"
)

// ErrTransactionAlreadyArchived is returned by IdempotencyGuard
// implementations when the storage key has already been claimed, meaning the
// record was (or is being) archived by an earlier operation.
var ErrTransactionAlreadyArchived = errors.New("transaction already archived")

// IdempotencyGuard coordinates exclusive ownership of a storage key so that
// transactions landing on the same key (same token, same second) are written
// once instead of silently overwriting each other.
type IdempotencyGuard interface {
	// ClaimTransaction attempts to claim the given storage key for the
	// duration of ttl.
	//
	// Returns:
	//   - nil when the claim succeeded and the caller may write the record.
	//   - ErrTransactionAlreadyArchived when the key is already claimed.
	//   - Any other error for infrastructure failures.
	ClaimTransaction(ctx context.Context, storageKey string, ttl time.Duration) error
}

// nopIdempotencyGuard is the default guard: every claim succeeds, restoring
// the plain last-write-wins overwrite behavior.
type nopIdempotencyGuard struct{}

// ClaimTransaction always grants the claim without tracking anything.
func (nopIdempotencyGuard) ClaimTransaction(_ context.Context, _ string, _ time.Duration) error {
	return nil
}
