// Package manifest tracks which cache generations exist and which request
// keys each one holds. Byte stores are flat and cannot enumerate, so purging
// a stale generation requires this ledger.
package manifest

import (
	"context"
)

// Manifest abstracts where the generation ledger lives.
// Use LocalManifest (default) for in-process state, or RedisManifest for
// multi-replica / restart persistence alongside a redis-backed store.
type Manifest interface {
	// Add records that key is a member of generation. Idempotent.
	Add(ctx context.Context, generation, key string) error
	// Keys returns all recorded member keys of generation; missing => empty.
	Keys(ctx context.Context, generation string) ([]string, error)
	// Generations returns all known generation names with the given prefix,
	// sorted ascending for deterministic iteration.
	Generations(ctx context.Context, prefix string) ([]string, error)
	// Drop forgets a generation and all its membership records.
	Drop(ctx context.Context, generation string) error
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
