package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
)

// ListingStore implements store.ListingStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type ListingStore struct {
	mu sync.RWMutex

	listings map[uuid.UUID]*models.Listing // listing_id -> Listing
}

// NewListingStore creates a new in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{
		listings: make(map[uuid.UUID]*models.Listing),
	}
}

// Create creates a new listing in memory.
func (s *ListingStore) Create(ctx context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.listings[listing.ListingID]; exists {
		return store.ErrListingAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *listing
	s.listings[listing.ListingID] = &clone

	return nil
}

// Get retrieves a listing by ID.
func (s *ListingStore) Get(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, exists := s.listings[listingID]
	if !exists {
		return nil, store.ErrListingNotFound
	}

	// Clone to avoid external modifications
	clone := *listing
	return &clone, nil
}

// ListActive returns all active listings, most recent first.
func (s *ListingStore) ListActive(ctx context.Context) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Listing
	for _, listing := range s.listings {
		if listing.Status == models.ListingStatusActive {
			clone := *listing
			result = append(result, &clone)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}
