// Package store defines the primitive surface this system requires from a
// physical store, and provides the Pebble-backed implementation used for
// both the source and target stores. Everything above this package treats a
// store as opaque: get/put/delete/scan/increment/count.
package store

import "errors"

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// KV is one row returned by Scan.
type KV struct {
	Key   string
	Value []byte
}

// Store is the primitive contract. Implementations must make Increment
// atomic; none of the other operations carry cross-key guarantees, which is
// exactly the gap the fan-out writer lives with.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	// Scan returns all rows whose key starts with prefix, in key order.
	Scan(prefix string) ([]KV, error)
	// Increment atomically adds delta to the counter at key, creating it
	// at zero first if absent. Negative deltas are applied as-is; there is
	// no floor.
	Increment(key string, delta int64) error
	// Count returns the number of rows under prefix.
	Count(prefix string) (int, error)
	Close() error
}
