package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses. Listings are created active; deactivation is an
// external workflow.
const (
	ListingStatusActive   = "active"
	ListingStatusInactive = "inactive"
)

// Listing represents a published property record. The owning
// organization is fixed at creation time and never changes.
type Listing struct {
	ListingID    uuid.UUID // UUIDv7
	OrgID        uuid.UUID // FK to organizations, immutable after creation
	Title        string
	Type         string // "apartamento", "casa", "sala-comercial", "terreno"
	Price        int64  // whole currency units
	Area         int64  // square meters
	Bedrooms     *int32
	Bathrooms    *int32
	Parking      *int32
	CEP          string
	Address      string
	Neighborhood string
	Description  string
	Tour360URL   *string
	Status       string // "active" or "inactive"
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListingAsset is one ordered image attachment of a listing. Assets are
// created only after the owning listing exists; display order is
// 1-based and follows upload order.
type ListingAsset struct {
	AssetID      uuid.UUID // UUIDv7
	ListingID    uuid.UUID // FK to listings
	ImageURL     string    // public URL issued by the blob store
	DisplayOrder int32     // 1-based, assigned by upload sequence
	CreatedAt    time.Time
}
