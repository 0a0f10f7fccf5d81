package util

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// ParamDigest returns a short stable digest of an unordered parameter bag:
// keys are sorted, serialized as k=v pairs and hashed, so equal bags in
// any insertion order digest identically.
func ParamDigest(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, params[k])
	}
	sum := sha256.Sum256([]byte(strings.Join(pairs, ",")))
	return fmt.Sprintf("%x", sum)[:16] // first 16 hex chars
}
