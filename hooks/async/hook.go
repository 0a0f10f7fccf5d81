// Package asynchook decouples hook delivery from the cache hot path:
// events are queued and replayed by worker goroutines, and dropped when
// the queue is full rather than blocking the caller.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery: 10, // sample: ~every 10th self-heal
//	})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := tiercache.New[User](tiercache.Options[User]{
//	    Layers: layers,
//	    Codec:  codec.JSON[User]{},
//	    Hooks:  hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/tiercache"
)

type Hooks struct {
	inner tiercache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ tiercache.Hooks = (*Hooks)(nil)

func New(inner tiercache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) LayerError(layer, op, key string, err error) {
	h.try(func() { h.inner.LayerError(layer, op, key, err) })
}
func (h *Hooks) SelfHeal(layer, key, reason string) {
	h.try(func() { h.inner.SelfHeal(layer, key, reason) })
}
func (h *Hooks) Promoted(key, from, to string) {
	h.try(func() { h.inner.Promoted(key, from, to) })
}
func (h *Hooks) SetRejected(layer, key string) {
	h.try(func() { h.inner.SetRejected(layer, key) })
}
func (h *Hooks) PatternClear(layer, pattern string) {
	h.try(func() { h.inner.PatternClear(layer, pattern) })
}
