package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
)

// TenantLinkStore implements store.TenantLinkStore using in-memory storage.
// This implementation is for testing and development only - data is lost on restart.
type TenantLinkStore struct {
	mu sync.RWMutex

	linksByIdentity map[uuid.UUID]*models.TenantLink // identity_id -> TenantLink
}

// NewTenantLinkStore creates a new in-memory tenant link store.
func NewTenantLinkStore() *TenantLinkStore {
	return &TenantLinkStore{
		linksByIdentity: make(map[uuid.UUID]*models.TenantLink),
	}
}

// Create creates a new tenant link in memory.
func (s *TenantLinkStore) Create(ctx context.Context, link *models.TenantLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One link per identity
	if _, exists := s.linksByIdentity[link.IdentityID]; exists {
		return store.ErrTenantLinkAlreadyExists
	}

	// Clone to avoid external modifications
	clone := *link
	s.linksByIdentity[link.IdentityID] = &clone

	return nil
}

// GetByIdentity retrieves the link for an identity.
func (s *TenantLinkStore) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*models.TenantLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, exists := s.linksByIdentity[identityID]
	if !exists {
		return nil, store.ErrTenantLinkNotFound
	}

	// Clone to avoid external modifications
	clone := *link
	return &clone, nil
}
