// internal/storage/kv/interface.go
package kv

import "context"

// Store defines the interface for flat key-value persistence backends.
// Values are opaque blobs.
type Store interface {
	// Read retrieves the value stored under key, or core.ErrNotFound
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores data under key, replacing any previous value
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes the value under key; absent keys are not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if a value is stored under key
	Exists(ctx context.Context, key string) (bool, error)
}
