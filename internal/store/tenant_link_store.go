package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/imovia/imovia/internal/models"
)

// Sentinel errors for tenant link store operations
var (
	ErrTenantLinkNotFound      = errors.New("tenant link not found")
	ErrTenantLinkAlreadyExists = errors.New("tenant link already exists")
)

// TenantLinkStore defines the interface for identity-to-organization link storage.
// Each identity has at most one link; registration creates exactly one.
type TenantLinkStore interface {
	// Create creates a new tenant link.
	// Returns ErrTenantLinkAlreadyExists if the identity already has a link.
	Create(ctx context.Context, link *models.TenantLink) error

	// GetByIdentity retrieves the link for an identity.
	// Returns ErrTenantLinkNotFound if the identity has no link.
	GetByIdentity(ctx context.Context, identityID uuid.UUID) (*models.TenantLink, error)
}
