package tiercache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/tiercache/internal/wire"
	"github.com/unkn0wn-root/tiercache/layer"
)

const defaultWarmBatch = 100

type activeLayer struct {
	name    string
	store   layer.Layer
	pattern layer.PatternLayer // nil when the store can't enumerate keys
}

type cache[V any] struct {
	layers []activeLayer
	index  map[string]int // name -> position in layers
	codec  Codec[V]
	log    Logger
	hooks  Hooks

	enabled bool

	defaultTTL     time.Duration
	ttlByCat       map[string]time.Duration
	computeSetCost SetCostFunc

	stats *collector

	coalesce bool
	flight   singleflight.Group

	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if len(opts.Layers) == 0 {
		return nil, fmt.Errorf("tiercache: at least one layer is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("tiercache: codec is required")
	}
	if opts.DefaultTTL < 0 {
		return nil, fmt.Errorf("tiercache: negative default ttl %v", opts.DefaultTTL)
	}

	c := &cache[V]{
		layers: make([]activeLayer, 0, len(opts.Layers)),
		index:  make(map[string]int, len(opts.Layers)),
		codec:  opts.Codec,
	}
	for i, lc := range opts.Layers {
		if lc.Name == "" {
			return nil, fmt.Errorf("tiercache: layer %d has no name", i)
		}
		if lc.Layer == nil {
			return nil, fmt.Errorf("tiercache: layer %q has a nil handle", lc.Name)
		}
		if _, dup := c.index[lc.Name]; dup {
			return nil, fmt.Errorf("tiercache: duplicate layer name %q", lc.Name)
		}
		al := activeLayer{name: lc.Name, store: lc.Layer}
		if pl, ok := lc.Layer.(layer.PatternLayer); ok {
			al.pattern = pl
		}
		c.index[lc.Name] = i
		c.layers = append(c.layers, al)
	}

	c.ttlByCat = DefaultTTLTable()
	for cat, d := range opts.TTLByCategory {
		if d <= 0 {
			return nil, fmt.Errorf("tiercache: non-positive ttl %v for category %q", d, cat)
		}
		c.ttlByCat[cat] = d
	}

	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, defaultGlobalTTL)

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(_ string, _ []byte) int64 { return 1 }
	}

	names := make([]string, len(c.layers))
	for i, al := range c.layers {
		names[i] = al.name
	}
	c.stats = newCollector(names)

	c.coalesce = opts.CoalesceFetches
	c.enabled = !opts.Disabled
	return c, nil
}

func (c *cache[V]) Enabled() bool { return c.enabled }

// selectLayers resolves per-call layer restrictions against the
// configured list. With WithLayers the caller's order is honored;
// otherwise configured priority order applies.
func (c *cache[V]) selectLayers(co callOptions) []activeLayer {
	if co.layers == nil && co.skip == nil {
		return c.layers
	}
	var out []activeLayer
	if co.layers != nil {
		for _, n := range co.layers {
			i, ok := c.index[n]
			if !ok {
				c.log.Debug("unknown layer in call options", Fields{"layer": n})
				continue
			}
			if !co.skipped(n) {
				out = append(out, c.layers[i])
			}
		}
		return out
	}
	for _, al := range c.layers {
		if !co.skipped(al.name) {
			out = append(out, al)
		}
	}
	return out
}

func (c *cache[V]) Get(ctx context.Context, key string, opts ...Option) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	co := applyOptions(opts)
	targets := c.selectLayers(co)

	for i, al := range targets {
		raw, ok, err := al.store.Get(ctx, key)
		if err != nil {
			// a failing layer reads as a miss; keep traversing
			c.stats.miss(al.name)
			c.stats.error(al.name)
			c.hooks.LayerError(al.name, "get", key, err)
			c.log.Warn("layer read failed", Fields{"layer": al.name, "key": key, "err": err})
			continue
		}
		if !ok {
			c.stats.miss(al.name)
			continue
		}

		entry, err := wire.Decode(raw)
		if err != nil {
			c.selfHeal(ctx, al, key, "corrupt")
			c.stats.miss(al.name)
			continue
		}
		if entry.Expired(time.Now()) {
			c.selfHeal(ctx, al, key, "expired")
			c.stats.miss(al.name)
			continue
		}
		v, err := c.codec.Decode(entry.Payload)
		if err != nil {
			c.selfHeal(ctx, al, key, "decode")
			c.stats.miss(al.name)
			continue
		}

		c.stats.hit(al.name)
		if co.promote && i > 0 {
			c.promote(ctx, key, raw, entry, al.name, targets[:i])
		}
		return v, true, nil
	}
	return zero, false, nil
}

// selfHeal drops an entry the engine can no longer trust.
func (c *cache[V]) selfHeal(ctx context.Context, al activeLayer, key, reason string) {
	_ = al.store.Delete(ctx, key)
	c.hooks.SelfHeal(al.name, key, reason)
	c.log.Debug("self-healed entry", Fields{"layer": al.name, "key": key, "reason": reason})
}

// promote copies a hit into every layer in front of the hit layer, with
// the remaining TTL so the copy does not outlive the original.
// Best-effort: failures are counted and logged, never surfaced.
func (c *cache[V]) promote(ctx context.Context, key string, raw []byte, entry wire.Entry, from string, upstream []activeLayer) {
	ttl := entry.RemainingTTL(time.Now())
	cost := c.computeSetCost(key, raw)
	for _, al := range upstream {
		ok, err := al.store.Set(ctx, key, raw, cost, ttl)
		if err != nil {
			c.stats.error(al.name)
			c.hooks.LayerError(al.name, "set", key, err)
			c.log.Warn("promotion write failed", Fields{"layer": al.name, "key": key, "err": err})
			continue
		}
		if !ok {
			c.hooks.SetRejected(al.name, key)
			continue
		}
		c.stats.set(al.name)
		c.hooks.Promoted(key, from, al.name)
	}
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration, opts ...Option) error {
	if !c.enabled {
		return nil
	}
	co := applyOptions(opts)
	ttl, err := c.resolveTTL(ttl, co.category)
	if err != nil {
		return err
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	raw := wire.Encode(time.Now(), ttl, payload)
	c.fanOut(ctx, c.selectLayers(co), "set", key, func(ctx context.Context, al activeLayer) error {
		ok, err := al.store.Set(ctx, key, raw, c.computeSetCost(key, raw), ttl)
		if err != nil {
			return err
		}
		if !ok {
			c.hooks.SetRejected(al.name, key)
			c.log.Debug("set rejected by layer", Fields{"layer": al.name, "key": key})
			return nil
		}
		c.stats.set(al.name)
		return nil
	})
	return nil
}

func (c *cache[V]) Delete(ctx context.Context, key string, opts ...Option) error {
	if !c.enabled {
		return nil
	}
	co := applyOptions(opts)
	c.fanOut(ctx, c.selectLayers(co), "delete", key, func(ctx context.Context, al activeLayer) error {
		if err := al.store.Delete(ctx, key); err != nil {
			return err
		}
		c.stats.delete(al.name)
		return nil
	})
	return nil
}

// fanOut runs op against every layer concurrently and waits for all of
// them to settle. Per-layer failures are absorbed: counted, logged,
// reported to hooks.
func (c *cache[V]) fanOut(ctx context.Context, targets []activeLayer, op, key string, fn func(context.Context, activeLayer) error) {
	var wg sync.WaitGroup
	for _, al := range targets {
		wg.Add(1)
		go func(al activeLayer) {
			defer wg.Done()
			if err := fn(ctx, al); err != nil {
				c.stats.error(al.name)
				c.hooks.LayerError(al.name, op, key, err)
				c.log.Warn("layer write failed", Fields{"layer": al.name, "op": op, "key": key, "err": err})
			}
		}(al)
	}
	wg.Wait()
}

func (c *cache[V]) GetOrSet(ctx context.Context, key string, fetch FetchFunc[V], ttl time.Duration, opts ...Option) (V, error) {
	var zero V
	if c.enabled {
		if v, ok, _ := c.Get(ctx, key, opts...); ok {
			return v, nil
		}
	}
	if !c.coalesce {
		return c.fetchAndStore(ctx, key, fetch, ttl, opts)
	}
	// collapse racing misses on the same key into one origin fetch
	v, err, _ := c.flight.Do(key, func() (any, error) {
		return c.fetchAndStore(ctx, key, fetch, ttl, opts)
	})
	if err != nil {
		return zero, err
	}
	return v.(V), nil
}

func (c *cache[V]) fetchAndStore(ctx context.Context, key string, fetch FetchFunc[V], ttl time.Duration, opts []Option) (V, error) {
	var zero V
	v, err := fetch(ctx)
	if err != nil {
		// source-of-truth failure; propagate, write nothing
		return zero, err
	}
	if err := c.Set(ctx, key, v, ttl, opts...); err != nil {
		c.log.Warn("cache-aside store failed", Fields{"key": key, "err": err})
	}
	return v, nil
}

func (c *cache[V]) InvalidatePattern(ctx context.Context, pattern string, opts ...Option) (int, error) {
	if !c.enabled {
		return 0, nil
	}
	co := applyOptions(opts)
	targets := c.selectLayers(co)

	var removed atomic.Int64
	var wg sync.WaitGroup
	for _, al := range targets {
		wg.Add(1)
		go func(al activeLayer) {
			defer wg.Done()
			if al.pattern == nil {
				// can't enumerate: clear the whole layer rather than
				// leave stale matches behind
				if err := al.store.Clear(ctx); err != nil {
					c.stats.error(al.name)
					c.hooks.LayerError(al.name, "clear", pattern, err)
					c.log.Warn("layer clear failed", Fields{"layer": al.name, "pattern": pattern, "err": err})
					return
				}
				c.stats.clear(al.name)
				c.hooks.PatternClear(al.name, pattern)
				c.log.Info("layer cleared for pattern invalidation", Fields{"layer": al.name, "pattern": pattern})
				return
			}

			keys, err := al.pattern.Keys(ctx, pattern)
			if err != nil {
				c.stats.error(al.name)
				c.hooks.LayerError(al.name, "keys", pattern, err)
				c.log.Warn("pattern enumeration failed", Fields{"layer": al.name, "pattern": pattern, "err": err})
				return
			}
			n := 0
			for _, k := range keys {
				if err := al.store.Delete(ctx, k); err != nil {
					c.stats.error(al.name)
					c.hooks.LayerError(al.name, "delete", k, err)
					continue
				}
				c.stats.delete(al.name)
				n++
			}
			removed.Add(int64(n))
			c.log.Info("pattern invalidation", Fields{"layer": al.name, "pattern": pattern, "removed": n})
		}(al)
	}
	wg.Wait()
	return int(removed.Load()), nil
}

func (c *cache[V]) Warm(ctx context.Context, items []WarmItem[V], batchSize int, opts ...Option) error {
	if !c.enabled || len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = defaultWarmBatch
	}

	var mu sync.Mutex
	var errs []error

	for start := 0; start < len(items); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		// all sets within a batch run concurrently; batches run
		// sequentially to bound pressure on the backing stores
		var wg sync.WaitGroup
		for _, it := range items[start:end] {
			wg.Add(1)
			go func(it WarmItem[V]) {
				defer wg.Done()
				if err := c.Set(ctx, it.Key, it.Value, it.TTL, opts...); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("warm %q: %w", it.Key, err))
					mu.Unlock()
				}
			}(it)
		}
		wg.Wait()
	}

	if len(errs) > 0 {
		return &WarmError{Failed: len(errs), Total: len(items), Errs: errs}
	}
	return nil
}

func (c *cache[V]) Stats() Stats { return c.stats.snapshot() }

func (c *cache[V]) ResetStats() { c.stats.reset() }

func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		var errs []error
		for _, al := range c.layers {
			if err := al.store.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("close layer %q: %w", al.name, err))
			}
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}
