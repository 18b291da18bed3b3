// Package dedupe provides the bounded recent-history store the notification
// consumer uses for duplicate suppression and explicit retry counting. Both
// concerns are keyed by event id (or a payload hash when no event id can be
// parsed) and expire after a TTL, keeping the history window bounded.
package dedupe

import (
	"context"
	"time"
)

// Store tracks processed event ids and delivery attempts.
type Store interface {
	// Reserve claims a key for processing. It returns false when the key is
	// already claimed, which marks the delivery as a duplicate. The claim
	// expires after ttl.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a claim after a failed delivery so a redelivery of the
	// same event can retry the notification.
	Release(ctx context.Context, key string) error

	// IncrAttempts increments and returns the delivery attempt counter for a
	// key. The counter expires after ttl so abandoned messages do not leak.
	IncrAttempts(ctx context.Context, key string, ttl time.Duration) (int, error)
}
