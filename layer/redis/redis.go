// Package redis adapts redis/go-redis as the distributed layer. It is the
// only production layer that can enumerate keys, so pattern invalidation
// stays targeted here while in-process layers fall back to a full clear.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/tiercache/layer"
)

var ErrNilClient = errors.New("redis layer: nil client")

const scanCount = 256

type Layer struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ layer.PatternLayer = (*Layer)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this layer exclusively owns the client
}

func New(cfg Config) (*Layer, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Layer{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (l *Layer) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := l.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (l *Layer) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0 // non-positive TTL means "no expiry" here
	}
	if err := l.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Layer) Delete(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, key).Err()
}

// Clear flushes the whole database. The engine only calls this on layers
// that cannot enumerate keys, which redis can, so in practice Clear runs
// only when a host explicitly wants a full flush.
func (l *Layer) Clear(ctx context.Context) error {
	return l.rdb.FlushDB(ctx).Err()
}

// Keys collects all keys matching a glob pattern via SCAN, never KEYS, so
// enumeration does not block the server.
func (l *Layer) Keys(ctx context.Context, pattern string) ([]string, error) {
	var out []string
	iter := l.rdb.Scan(ctx, 0, pattern, scanCount).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close releases the underlying client only when this layer owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (l *Layer) Close(context.Context) error {
	if l.closeClient {
		if err := l.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
