package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
)

// Resolver resolves the at-most-one organization an identity
// administers. Resolution is idempotent and safe to call repeatedly.
type Resolver struct {
	links store.TenantLinkStore
	orgs  store.OrganizationStore
}

// NewResolver creates a new tenant resolver over the given stores.
func NewResolver(links store.TenantLinkStore, orgs store.OrganizationStore) *Resolver {
	return &Resolver{
		links: links,
		orgs:  orgs,
	}
}

// Resolve looks up the tenant link for an identity and fetches the
// linked organization. An identity without a link resolves to (nil, nil).
// A link pointing at a missing organization is treated as data
// inconsistency, logged, and also resolves to (nil, nil). No retries
// are performed.
func (r *Resolver) Resolve(ctx context.Context, identityID uuid.UUID) (*models.Organization, error) {
	link, err := r.links.GetByIdentity(ctx, identityID)
	if err != nil {
		if errors.Is(err, store.ErrTenantLinkNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up tenant link: %w", err)
	}

	org, err := r.orgs.Get(ctx, link.OrgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			log.Warn().
				Str("identity_id", identityID.String()).
				Str("org_id", link.OrgID.String()).
				Msg("Tenant link references a missing organization")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch linked organization: %w", err)
	}

	return org, nil
}
