// Package blob abstracts key→JSON durable storage over local files or GCS.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("blob: not found")

// Store is a minimal get/put-by-key contract. Both the dedupe ledger and the
// result store persist through it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// New selects the backend: GCS when a bucket is configured, local files
// under dir otherwise.
func New(ctx context.Context, bucket, dir string) (Store, error) {
	if bucket != "" {
		return NewGCSStore(ctx, bucket)
	}
	return NewFileStore(dir), nil
}
