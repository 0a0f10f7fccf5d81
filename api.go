package tiercache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/tiercache/codec"
	"github.com/unkn0wn-root/tiercache/layer"
)

// Codec re-exports codec.Codec so callers configuring Options don't need a
// second import for the common case.
type Codec[V any] = c.Codec[V]

// SetCostFunc computes the cost passed to layers that support cost-based
// admission (Ristretto). raw is the full envelope written to the store.
type SetCostFunc func(key string, raw []byte) int64

// FetchFunc loads a value from the source of truth on a cache miss.
type FetchFunc[V any] func(ctx context.Context) (V, error)

// WarmItem is one entry of a bulk warming run. TTL <= 0 resolves through
// the category table / global default exactly like Set.
type WarmItem[V any] struct {
	Key   string
	Value V
	TTL   time.Duration
}

// Cache is the tiered cache contract. All operations are safe for
// concurrent use. Layer failures never escape Get/Set/Delete; they are
// logged, counted under the failing layer's error metric and treated as
// misses. Only GetOrSet propagates errors from the caller's fetch
// function, since those represent the real data source failing.
type Cache[V any] interface {
	// Get traverses the selected layers in priority order and returns the
	// first hit, promoting it into faster layers unless disabled via
	// WithoutPromotion. ok=false means no layer held the key.
	Get(ctx context.Context, key string, opts ...Option) (v V, ok bool, err error)

	// Set writes the value to all selected layers concurrently,
	// best-effort. ttl <= 0 resolves through the category table (see
	// WithCategory) and then the global default. A negative ttl is
	// rejected with ErrInvalidTTL.
	Set(ctx context.Context, key string, value V, ttl time.Duration, opts ...Option) error

	// Delete removes the key from all selected layers, best-effort.
	Delete(ctx context.Context, key string, opts ...Option) error

	// GetOrSet is cache-aside: Get, and on miss invoke fetch, store the
	// result and return it. Fetch errors propagate and nothing is written.
	GetOrSet(ctx context.Context, key string, fetch FetchFunc[V], ttl time.Duration, opts ...Option) (V, error)

	// InvalidatePattern removes every key matching a glob pattern.
	// Pattern-capable layers enumerate and delete matches individually;
	// all other layers clear themselves entirely (stale data is worse
	// than a cold cache). Returns the number of individually deleted keys.
	InvalidatePattern(ctx context.Context, pattern string, opts ...Option) (int, error)

	// Warm stores items in sequential batches of batchSize, with all sets
	// inside a batch running concurrently. Partial success is fine;
	// re-running is idempotent. batchSize <= 0 uses a default of 100.
	Warm(ctx context.Context, items []WarmItem[V], batchSize int, opts ...Option) error

	// Stats returns a snapshot of per-layer and aggregate counters.
	Stats() Stats

	// ResetStats zeroes all counters. The engine never schedules resets
	// itself; hosts wanting windowed ratios call this on their own timer.
	ResetStats()

	Enabled() bool

	// Close drains and closes every layer. Idempotent.
	Close(ctx context.Context) error
}

// LayerConfig binds a name to a layer handle. Position in Options.Layers
// is the read priority (index 0 is consulted first) and is fixed for the
// lifetime of the cache. Pattern-delete capability is detected from the
// handle implementing layer.PatternLayer.
type LayerConfig struct {
	Name  string
	Layer layer.Layer
}

// Options tune the engine. Layers and Codec are required; everything else
// has defaults.
type Options[V any] struct {
	// Layers in read-priority order, fastest first.
	Layers []LayerConfig
	Codec  Codec[V]

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// DefaultTTL is the global fallback when neither an explicit ttl nor
	// a category default applies. 0 => 10m. Negative is a config error.
	DefaultTTL time.Duration

	// TTLByCategory overlays DefaultTTLTable. Values must be positive.
	TTLByCategory map[string]time.Duration

	ComputeSetCost SetCostFunc // default: constant 1

	// CoalesceFetches collapses concurrent GetOrSet misses on the same
	// key into a single fetch (singleflight). Off by default: without it
	// racing callers each hit the origin independently.
	CoalesceFetches bool

	Disabled bool // default false (enabled)
}

// New validates opts eagerly and builds the engine. Malformed layer
// lists, missing codecs and invalid TTL configuration fail here, never at
// call time.
func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
