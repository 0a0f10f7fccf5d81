// Package bigcache adapts allegro/bigcache as the hot in-process layer:
// zero-GC storage tuned by max entry size and a global life window.
package bigcache

import (
	"context"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/tiercache/layer"
)

type Layer struct {
	c *bc.BigCache
}

var _ layer.Layer = (*Layer)(nil)

type Config struct {
	// LifeWindow is the store's own default TTL; bigcache has no
	// per-entry TTL, so the engine's envelope enforces shorter logical
	// TTLs at read time.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Layer, error) {
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Layer{c: c}, nil
}

func (l *Layer) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := l.c.Get(key)
	if err == bc.ErrEntryNotFound {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (l *Layer) Set(_ context.Context, key string, value []byte, _ int64, _ time.Duration) (bool, error) {
	// per-entry TTL unsupported; LifeWindow applies
	return true, l.c.Set(key, value)
}

func (l *Layer) Delete(_ context.Context, key string) error {
	if err := l.c.Delete(key); err != nil && err != bc.ErrEntryNotFound {
		return err
	}
	return nil
}

func (l *Layer) Clear(_ context.Context) error {
	return l.c.Reset()
}

func (l *Layer) Close(_ context.Context) error {
	return l.c.Close()
}
