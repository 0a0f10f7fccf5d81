// Package ristretto adapts dgraph-io/ristretto as the bounded-eviction
// layer: cost-based admission and eviction keep the store within MaxCost.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/tiercache/layer"
)

type Layer struct {
	c *rc.Cache
}

var _ layer.Layer = (*Layer)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Per-entry cost is supplied by the engine on every Set.
}

func New(cfg Config) (*Layer, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Layer{c: c}, nil
}

func (l *Layer) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		l.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (l *Layer) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	return l.c.SetWithTTL(key, value, cost, ttl), nil
}

func (l *Layer) Delete(_ context.Context, key string) error {
	l.c.Del(key)
	return nil
}

func (l *Layer) Clear(_ context.Context) error {
	l.c.Clear()
	return nil
}

func (l *Layer) Close(_ context.Context) error {
	l.c.Wait()
	l.c.Close()
	return nil
}

// Metrics exposes ristretto's own counters for hosts that want them; not
// part of the layer contract.
func (l *Layer) Metrics() *rc.Metrics { return l.c.Metrics }
