package memory

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"
)

func TestBasicOps(t *testing.T) {
	ctx := context.Background()
	m := New(Config{})
	defer m.Close(ctx)

	if _, ok, err := m.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	if ok, err := m.Set(ctx, "k", []byte("v"), 1, time.Minute); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := m.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(b, []byte("v")) {
		t.Fatalf("Get: ok=%v err=%v b=%q", ok, err, b)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestLazyExpiry(t *testing.T) {
	ctx := context.Background()
	m := New(Config{})
	defer m.Close(ctx)

	if _, err := m.Set(ctx, "k", []byte("v"), 1, 30*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if m.Len() != 0 {
		t.Fatalf("expired entry should be pruned on read")
	}
}

func TestJanitorSweep(t *testing.T) {
	ctx := context.Background()
	m := New(Config{SweepInterval: 20 * time.Millisecond})
	defer m.Close(ctx)

	if _, err := m.Set(ctx, "k", []byte("v"), 1, 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for m.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("janitor did not prune expired entry")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMaxEntries(t *testing.T) {
	ctx := context.Background()
	m := New(Config{MaxEntries: 2})
	defer m.Close(ctx)

	for _, k := range []string{"a", "b"} {
		if ok, _ := m.Set(ctx, k, []byte("v"), 1, 0); !ok {
			t.Fatalf("Set %s rejected below cap", k)
		}
	}
	if ok, err := m.Set(ctx, "c", []byte("v"), 1, 0); err != nil || ok {
		t.Fatalf("full store must reject new keys, ok=%v err=%v", ok, err)
	}
	// overwrites are still allowed
	if ok, _ := m.Set(ctx, "a", []byte("v2"), 1, 0); !ok {
		t.Fatalf("overwrite should be admitted at cap")
	}
}

func TestKeysPattern(t *testing.T) {
	ctx := context.Background()
	m := New(Config{})
	defer m.Close(ctx)

	for _, k := range []string{"user:1", "user:2", "order:1"} {
		if _, err := m.Set(ctx, k, []byte("v"), 1, 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	got, err := m.Keys(ctx, "user:*")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "user:1" || got[1] != "user:2" {
		t.Fatalf("Keys: %v", got)
	}

	// expired entries are not enumerated
	if _, err := m.Set(ctx, "user:3", []byte("v"), 1, 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	got, err = m.Keys(ctx, "user:*")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expired key leaked into enumeration: %v", got)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	m := New(Config{})
	defer m.Close(ctx)

	for _, k := range []string{"a", "b", "c"} {
		if _, err := m.Set(ctx, k, []byte("v"), 1, 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("Clear should empty the store, len=%d", m.Len())
	}
}

func TestCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	m := New(Config{SweepInterval: 10 * time.Millisecond})
	if err := m.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
