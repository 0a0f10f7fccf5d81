// Package layer defines the storage abstraction behind each cache tier.
//
// Implementations MUST be byte-for-byte transparent: Get must return
// exactly the same []byte previously passed to Set for a key (no prepended
// metadata, no re-encoding, no mutation). The engine frames values itself
// and treats anything it cannot decode as corruption to be deleted.
//
// All implementations must be safe for concurrent use.
package layer

import (
	"context"
	"time"
)

// Layer is a minimal byte store with TTLs.
type Layer interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// IO/remote failures return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. Stores without per-entry TTL
	// may ignore it (logical expiry is enforced by the engine's envelope).
	// Cost may be ignored when unsupported. Returns ok=false when the
	// store rejected the write under pressure; that is not an error.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Delete removes a key (best-effort; deleting a missing key is not
	// an error).
	Delete(ctx context.Context, key string) error

	// Clear drops every entry in the store.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// PatternLayer is a Layer that can enumerate keys matching a glob pattern
// ('*' and '?', redis MATCH semantics). Layers without this capability are
// fully cleared on pattern invalidation instead.
type PatternLayer interface {
	Layer
	Keys(ctx context.Context, pattern string) ([]string, error)
}
