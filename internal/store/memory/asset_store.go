package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/imovia/imovia/internal/models"
)

// ListingAssetStore implements store.ListingAssetStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type ListingAssetStore struct {
	mu sync.RWMutex

	assetsByListing map[uuid.UUID][]*models.ListingAsset // listing_id -> assets
}

// NewListingAssetStore creates a new in-memory listing asset store.
func NewListingAssetStore() *ListingAssetStore {
	return &ListingAssetStore{
		assetsByListing: make(map[uuid.UUID][]*models.ListingAsset),
	}
}

// Create creates a new asset row in memory.
func (s *ListingAssetStore) Create(ctx context.Context, asset *models.ListingAsset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clone to avoid external modifications
	clone := *asset
	s.assetsByListing[asset.ListingID] = append(s.assetsByListing[asset.ListingID], &clone)

	return nil
}

// ListByListing returns all assets for a listing ordered by display order.
func (s *ListingAssetStore) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*models.ListingAsset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := s.assetsByListing[listingID]

	result := make([]*models.ListingAsset, 0, len(assets))
	for _, asset := range assets {
		clone := *asset
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DisplayOrder < result[j].DisplayOrder
	})

	return result, nil
}
