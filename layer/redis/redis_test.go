package redis

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func setupLayer(t *testing.T) (*Layer, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	l, err := New(Config{Client: client, CloseClient: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = l.Close(context.Background()) })
	return l, mr
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	l, _ := setupLayer(t)

	if _, ok, err := l.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := l.Set(ctx, "k", []byte("v"), 1, time.Minute); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := l.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(b, []byte("v")) {
		t.Fatalf("Get: ok=%v err=%v b=%q", ok, err, b)
	}
	if err := l.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := l.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	l, mr := setupLayer(t)

	if _, err := l.Set(ctx, "k", []byte("v"), 1, time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Second)
	if _, ok, _ := l.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after server-side expiry")
	}
}

func TestNoExpiryForZeroTTL(t *testing.T) {
	ctx := context.Background()
	l, mr := setupLayer(t)

	if _, err := l.Set(ctx, "k", []byte("v"), 1, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(time.Hour)
	if _, ok, _ := l.Get(ctx, "k"); !ok {
		t.Fatalf("ttl=0 entry must not expire")
	}
}

func TestKeysScan(t *testing.T) {
	ctx := context.Background()
	l, _ := setupLayer(t)

	for _, k := range []string{"ns:1", "ns:2", "other:1"} {
		if _, err := l.Set(ctx, k, []byte("v"), 1, 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	got, err := l.Keys(ctx, "ns:*")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "ns:1" || got[1] != "ns:2" {
		t.Fatalf("Keys: %v", got)
	}
}

func TestClearFlushes(t *testing.T) {
	ctx := context.Background()
	l, _ := setupLayer(t)

	for _, k := range []string{"a", "b"} {
		if _, err := l.Set(ctx, k, []byte("v"), 1, 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if err := l.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if _, ok, _ := l.Get(ctx, k); ok {
			t.Fatalf("key %s survived Clear", k)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	l, err := New(Config{Client: client, CloseClient: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := l.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
