package tiercache

import (
	"sync"
	"sync/atomic"
	"time"
)

// LayerStats is a snapshot of one layer's counters. HitRatio is
// hits/(hits+misses), 0 when the layer has seen no lookups.
type LayerStats struct {
	Hits     uint64
	Misses   uint64
	Sets     uint64
	Deletes  uint64
	Errors   uint64
	Clears   uint64 // full clears forced by pattern invalidation
	HitRatio float64
}

// Stats is a point-in-time snapshot of all counters since the last reset.
// Per traversal, every layer visited before the hit is charged one miss
// and the hit layer one hit; layers after the hit are not charged.
type Stats struct {
	Layers   map[string]LayerStats
	Hits     uint64
	Misses   uint64
	HitRatio float64
	ResetAt  time.Time
}

type layerCounters struct {
	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
	errors  atomic.Uint64
	clears  atomic.Uint64
}

// collector holds per-layer counters. Counters are plain atomics; Reset
// is not atomic across layers, which is fine for advisory statistics.
type collector struct {
	names  []string
	byName map[string]*layerCounters

	mu      sync.Mutex
	resetAt time.Time
}

func newCollector(names []string) *collector {
	c := &collector{
		names:   names,
		byName:  make(map[string]*layerCounters, len(names)),
		resetAt: time.Now(),
	}
	for _, n := range names {
		c.byName[n] = &layerCounters{}
	}
	return c
}

func (c *collector) hit(layer string)    { c.byName[layer].hits.Add(1) }
func (c *collector) miss(layer string)   { c.byName[layer].misses.Add(1) }
func (c *collector) set(layer string)    { c.byName[layer].sets.Add(1) }
func (c *collector) delete(layer string) { c.byName[layer].deletes.Add(1) }
func (c *collector) error(layer string)  { c.byName[layer].errors.Add(1) }
func (c *collector) clear(layer string)  { c.byName[layer].clears.Add(1) }

func ratio(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

func (c *collector) snapshot() Stats {
	c.mu.Lock()
	resetAt := c.resetAt
	c.mu.Unlock()

	s := Stats{
		Layers:  make(map[string]LayerStats, len(c.names)),
		ResetAt: resetAt,
	}
	for _, n := range c.names {
		lc := c.byName[n]
		ls := LayerStats{
			Hits:    lc.hits.Load(),
			Misses:  lc.misses.Load(),
			Sets:    lc.sets.Load(),
			Deletes: lc.deletes.Load(),
			Errors:  lc.errors.Load(),
			Clears:  lc.clears.Load(),
		}
		ls.HitRatio = ratio(ls.Hits, ls.Misses)
		s.Layers[n] = ls
		s.Hits += ls.Hits
		s.Misses += ls.Misses
	}
	s.HitRatio = ratio(s.Hits, s.Misses)
	return s
}

func (c *collector) reset() {
	for _, lc := range c.byName {
		lc.hits.Store(0)
		lc.misses.Store(0)
		lc.sets.Store(0)
		lc.deletes.Store(0)
		lc.errors.Store(0)
		lc.clears.Store(0)
	}
	c.mu.Lock()
	c.resetAt = time.Now()
	c.mu.Unlock()
}
