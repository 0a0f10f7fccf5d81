// Package memory provides a dependency-free in-process layer: a
// mutex-guarded map with lazy expiry, an optional janitor goroutine and
// glob-style key enumeration. It is pattern-capable, which makes it the
// go-to layer for tests and small single-process deployments.
package memory

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/unkn0wn-root/tiercache/layer"
)

type entry struct {
	val []byte
	exp time.Time // zero => no expiry
}

type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry

	maxEntries int

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ layer.PatternLayer = (*Memory)(nil)

type Config struct {
	// MaxEntries caps the map size; writes against a full store are
	// rejected (ok=false), mirroring admission-based stores. 0 = unbounded.
	MaxEntries int
	// SweepInterval runs a janitor that prunes expired entries so memory
	// is reclaimed without waiting for reads. 0 disables the janitor;
	// expiry is still enforced lazily on Get.
	SweepInterval time.Duration
}

func New(cfg Config) *Memory {
	m := &Memory{
		entries:    make(map[string]entry),
		maxEntries: cfg.MaxEntries,
	}
	if cfg.SweepInterval > 0 {
		m.ticker = time.NewTicker(cfg.SweepInterval)
		m.stopCh = make(chan struct{})
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for {
				select {
				case <-m.ticker.C:
					m.sweep()
				case <-m.stopCh:
					return
				}
			}
		}()
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		m.mu.Lock()
		// re-check under the write lock; a fresh Set may have raced us
		if cur, ok := m.entries[key]; ok && !cur.exp.IsZero() && time.Now().After(cur.exp) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.val, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		if _, exists := m.entries[key]; !exists {
			return false, nil // full; reject new keys, allow overwrites
		}
	}
	m.entries[key] = entry{val: value, exp: exp}
	return true, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

// Keys returns live keys matching a glob pattern ('*', '?'). Cache keys
// contain no '/', so path.Match gives redis-MATCH-like semantics.
func (m *Memory) Keys(_ context.Context, pattern string) ([]string, error) {
	now := time.Now()
	var out []string
	m.mu.RLock()
	for k, e := range m.entries {
		if !e.exp.IsZero() && now.After(e.exp) {
			continue
		}
		if ok, err := path.Match(pattern, k); err != nil {
			m.mu.RUnlock()
			return nil, err
		} else if ok {
			out = append(out, k)
		}
	}
	m.mu.RUnlock()
	return out, nil
}

func (m *Memory) Close(_ context.Context) error {
	m.once.Do(func() {
		if m.stopCh != nil {
			close(m.stopCh)
			m.ticker.Stop()
			m.wg.Wait()
		}
	})
	return nil
}

// Len reports the number of stored entries, expired ones included until
// the next sweep or read touches them.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) sweep() {
	cutoff := time.Now()
	m.mu.Lock()
	for k, e := range m.entries {
		if !e.exp.IsZero() && e.exp.Before(cutoff) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
}
