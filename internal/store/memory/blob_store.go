package memory

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// BlobStore implements store.BlobStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type BlobStore struct {
	mu sync.RWMutex

	objects map[string][]byte // key -> body
	baseURL string
}

// NewBlobStore creates a new in-memory blob store. Public URLs are
// formed by joining baseURL and the object key.
func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

// Upload stores the object body under the given key.
func (s *BlobStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = data

	return nil
}

// PublicURL returns the URL the object would be served from.
func (s *BlobStore) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

// Get returns the stored body for a key. Test helper.
func (s *BlobStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.objects[key]
	return data, exists
}

// Len returns the number of stored objects. Test helper.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
