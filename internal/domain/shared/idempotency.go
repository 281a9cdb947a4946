package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have been claimed by a caller.
// The scan-and-deduct path claims the client scan nonce before touching the
// ledger so a retried delivery cannot start a second deduction.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl.
	// Returns true if the key was newly claimed, false if it was already held.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks whether key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the key can be retried, used when the
	// claimed operation failed without effect.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
