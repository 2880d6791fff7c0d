// Package storage persists the transaction collection as a single blob in a
// key-value store.
package storage

import "context"

// KV is a get/set store of named string blobs.
type KV interface {
	// Get returns the blob stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
