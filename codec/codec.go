// Package codec defines value (de)serialization for tiercache. The engine
// only ever moves []byte through its layers; a Codec turns the caller's
// typed values into those bytes and back, so storage formats can be
// swapped without touching orchestration logic.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
