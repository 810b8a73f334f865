package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/imovia/imovia/internal/models"
)

// Sentinel errors for listing asset store operations
var (
	ErrAssetNotFound = errors.New("listing asset not found")
)

// ListingAssetStore defines the interface for listing image attachments.
// Asset rows are created only after the owning listing exists.
type ListingAssetStore interface {
	// Create creates a new asset row linked to a listing.
	// Returns ErrListingNotFound if the referenced listing doesn't exist.
	Create(ctx context.Context, asset *models.ListingAsset) error

	// ListByListing returns all assets for a listing ordered by display order.
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]*models.ListingAsset, error)
}
