package tiercache

import (
	"github.com/unkn0wn-root/tiercache/internal/util"
)

// BuildKey derives a cache key from a namespace, an identifier and an
// unordered parameter bag. Empty params yield "namespace:identifier";
// otherwise a short stable digest of the sorted bag is appended, so equal
// parameter sets in any insertion order produce the same key.
func BuildKey(namespace, identifier string, params map[string]any) string {
	k := namespace + ":" + identifier
	if len(params) == 0 {
		return k
	}
	return k + ":" + util.ParamDigest(params)
}
