package tiercache

// Hooks are lightweight callbacks for high-signal events. Implementations
// MUST be cheap and non-blocking; the engine calls them on hot paths.
// Wrap with hooks/async if an implementation may block.
type Hooks interface {
	// A layer operation failed. op ∈ {"get", "set", "delete", "clear", "keys"}.
	// The failure was absorbed (counted + treated as miss/no-op).
	LayerError(layer, op, key string, err error)

	// An entry was deleted by the engine on read.
	// reason ∈ {"corrupt", "expired", "decode"}
	SelfHeal(layer, key, reason string)

	// A hit in a slower layer was copied into a faster one.
	Promoted(key, fromLayer, toLayer string)

	// A layer returned ok=false on Set (backpressure/admission).
	SetRejected(layer, key string)

	// A non-enumerable layer was fully cleared to satisfy a pattern
	// invalidation. Expect a cold cache on that layer afterwards.
	PatternClear(layer, pattern string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) LayerError(string, string, string, error) {}
func (NopHooks) SelfHeal(string, string, string)          {}
func (NopHooks) Promoted(string, string, string)          {}
func (NopHooks) SetRejected(string, string)               {}
func (NopHooks) PatternClear(string, string)              {}
