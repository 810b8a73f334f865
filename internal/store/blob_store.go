package store

import (
	"context"
	"io"
)

// BlobStore defines the interface for binary object storage with public
// URL issuance. Keys are derived by the publication pipeline; the store
// never generates them.
type BlobStore interface {
	// Upload stores the object under the given key, replacing any
	// existing object with the same key.
	Upload(ctx context.Context, key, contentType string, body io.Reader) error

	// PublicURL returns the publicly reachable URL for a key. It does
	// not verify that the object exists.
	PublicURL(key string) string
}
