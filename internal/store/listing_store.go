package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/imovia/imovia/internal/models"
)

// Sentinel errors for listing store operations
var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrListingAlreadyExists = errors.New("listing already exists")
)

// ListingStore defines the interface for listing storage operations.
// Listings are only ever created through the publication pipeline.
type ListingStore interface {
	// Create creates a new listing record.
	// Returns ErrListingAlreadyExists if a listing with the same ID already exists.
	Create(ctx context.Context, listing *models.Listing) error

	// Get retrieves a listing by ID.
	// Returns ErrListingNotFound if the listing doesn't exist.
	Get(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)

	// ListActive returns all active listings, most recent first.
	ListActive(ctx context.Context) ([]*models.Listing, error)
}
