// Package store provides the keyed persistence port the draft layer writes
// through, with in-memory and SQLite implementations. The wizard core never
// touches a storage medium directly.
package store

import "context"

// KV is the storage capability the draft layer depends on. Implementations
// return sentinel.ErrNotFound (optionally wrapped) for missing keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
