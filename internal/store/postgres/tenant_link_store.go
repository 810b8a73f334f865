package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
)

// TenantLinkStore implements store.TenantLinkStore using PostgreSQL.
type TenantLinkStore struct {
	pool *pgxpool.Pool
}

// NewTenantLinkStore creates a new PostgreSQL-backed tenant link store.
// It shares the connection pool with other stores.
func NewTenantLinkStore(pool *pgxpool.Pool) *TenantLinkStore {
	return &TenantLinkStore{
		pool: pool,
	}
}

// Create creates a new tenant link in the database.
func (s *TenantLinkStore) Create(ctx context.Context, link *models.TenantLink) error {
	query := `
		INSERT INTO tenant_links (
			link_id, identity_id, org_id, role, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.pool.Exec(ctx, query,
		link.LinkID,
		link.IdentityID,
		link.OrgID,
		link.Role,
		link.CreatedAt,
	)

	if err != nil {
		// The unique constraint on identity_id enforces one link per identity.
		if isUniqueViolation(err) {
			return store.ErrTenantLinkAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return store.ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to create tenant link: %w", describePostgresError(err))
	}

	log.Debug().
		Str("identity_id", link.IdentityID.String()).
		Str("org_id", link.OrgID.String()).
		Str("role", link.Role).
		Msg("Created tenant link")

	return nil
}

// GetByIdentity retrieves the link for an identity.
func (s *TenantLinkStore) GetByIdentity(ctx context.Context, identityID uuid.UUID) (*models.TenantLink, error) {
	query := `
		SELECT link_id, identity_id, org_id, role, created_at
		FROM tenant_links
		WHERE identity_id = $1
	`

	var link models.TenantLink
	err := s.pool.QueryRow(ctx, query, identityID).Scan(
		&link.LinkID,
		&link.IdentityID,
		&link.OrgID,
		&link.Role,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTenantLinkNotFound
		}
		return nil, fmt.Errorf("failed to get tenant link: %w", describePostgresError(err))
	}

	return &link, nil
}
