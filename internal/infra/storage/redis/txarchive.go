package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/gabapcia/tokenwatch/internal/txarchive"
)

// txClaimPrefix is the base key prefix for archive idempotency claims.
const txClaimPrefix = "txarchive"

// txClaimKey returns the Redis key holding the claim for a storage key.
//
// Format: "txarchive:claim:{storageKey}"
func txClaimKey(storageKey string) string {
	return fmt.Sprintf("%s:claim:%s", txClaimPrefix, storageKey)
}

// ClaimTransaction implements the txarchive.IdempotencyGuard interface using
// SET NX with a TTL: the first caller owns the storage key for the claim
// duration, later callers get ErrTransactionAlreadyArchived.
//
// Parameters:
//   - ctx: context used for cancellation and timeout control.
//   - storageKey: the derived object key being archived.
//   - ttl: how long the claim is held before expiring.
//
// Returns:
//   - nil when the claim was acquired.
//   - txarchive.ErrTransactionAlreadyArchived when the key is already claimed.
//   - An error if the Redis command fails.
func (c *client) ClaimTransaction(ctx context.Context, storageKey string, ttl time.Duration) error {
	claimed, err := c.conn.SetNX(ctx, txClaimKey(storageKey), time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		return err
	}

	if !claimed {
		return txarchive.ErrTransactionAlreadyArchived
	}

	return nil
}

// Compile-time assertion to ensure *client satisfies the txarchive.IdempotencyGuard interface
var _ txarchive.IdempotencyGuard = new(client)
