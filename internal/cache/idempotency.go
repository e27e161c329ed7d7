// Package cache holds the Idempotency-Key stores used to reject replayed payment requests.
package cache

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys for a TTL.
type IdempotencyStore interface {
	// MarkProcessed returns true if key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release forgets key so a failed request can be retried with it.
	Release(ctx context.Context, key string) error
	Close() error
}
