// Package tiercache implements a tiered cache engine: an ordered chain of
// byte stores (in-process hot cache, bounded-eviction cache, distributed
// cache) behind a single get/set/delete/invalidate contract.
//
// Components:
//   - layer.Layer: byte store with TTL (e.g. BigCache, Ristretto, Redis).
//     Layers nearer the front of the configured list are faster/smaller and
//     are always consulted first.
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Logger/Hooks: pluggable observability; nop by default.
//
// Reads traverse layers in priority order and stop at the first hit; the
// value is then promoted into every faster layer so subsequent lookups
// resolve from the front. Writes and deletes fan out to all layers
// concurrently with all-settled semantics: a failing layer is logged and
// counted, never fatal. The cache is not a system of record, so partial
// write success is acceptable and consistency between layers is eventual.
//
// Entries are framed by a small versioned envelope carrying insertion and
// expiry timestamps, which gives every layer a uniform logical TTL even
// when the underlying store has none (BigCache). Corrupt or expired frames
// are deleted on read and reported as misses.
//
// Cache-aside pattern:
//
//	v, err := cache.GetOrSet(ctx, key, func(ctx context.Context) (User, error) {
//	    return loadUserFromDB(ctx, id)
//	}, 0, tiercache.WithCategory("database"))
package tiercache
