package tiercache

import (
	"strings"
	"testing"
)

func TestBuildKeyNoParams(t *testing.T) {
	if got := BuildKey("user", "42", nil); got != "user:42" {
		t.Fatalf("got %q", got)
	}
	if got := BuildKey("user", "42", map[string]any{}); got != "user:42" {
		t.Fatalf("empty bag should equal nil bag, got %q", got)
	}
}

func TestBuildKeyOrderInsensitive(t *testing.T) {
	k1 := BuildKey("ns", "id", map[string]any{"b": 2, "a": 1})
	k2 := BuildKey("ns", "id", map[string]any{"a": 1, "b": 2})
	if k1 != k2 {
		t.Fatalf("insertion order changed the key: %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "ns:id:") {
		t.Fatalf("unexpected shape %q", k1)
	}
	// fixed-width digest suffix
	if suffix := k1[len("ns:id:"):]; len(suffix) != 16 {
		t.Fatalf("digest should be 16 hex chars, got %q", suffix)
	}
}

func TestBuildKeyParamsChangeKey(t *testing.T) {
	base := BuildKey("ns", "id", map[string]any{"a": 1})
	if other := BuildKey("ns", "id", map[string]any{"a": 2}); other == base {
		t.Fatalf("different values must give different keys")
	}
	if other := BuildKey("ns", "id", map[string]any{"b": 1}); other == base {
		t.Fatalf("different param names must give different keys")
	}
	if other := BuildKey("ns", "id", map[string]any{"a": 1, "b": 2}); other == base {
		t.Fatalf("extra params must change the key")
	}
}
