// Package codec defines how stored response snapshots are serialized for the
// byte store. A Codec must round-trip: Decode(Encode(v)) yields an equal value.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
