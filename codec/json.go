package codec

import "encoding/json"

// JSON serializes values with encoding/json. The zero value is ready to use.
// This is the default codec; snapshots stay human-inspectable in the store.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
