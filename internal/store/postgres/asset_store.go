package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
)

// ListingAssetStore implements store.ListingAssetStore using PostgreSQL.
type ListingAssetStore struct {
	pool *pgxpool.Pool
}

// NewListingAssetStore creates a new PostgreSQL-backed listing asset store.
// It shares the connection pool with other stores.
func NewListingAssetStore(pool *pgxpool.Pool) *ListingAssetStore {
	return &ListingAssetStore{
		pool: pool,
	}
}

// Create creates a new asset row linked to a listing.
func (s *ListingAssetStore) Create(ctx context.Context, asset *models.ListingAsset) error {
	query := `
		INSERT INTO listing_assets (
			asset_id, listing_id, image_url, display_order, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err := s.pool.Exec(ctx, query,
		asset.AssetID,
		asset.ListingID,
		asset.ImageURL,
		asset.DisplayOrder,
		asset.CreatedAt,
	)

	if err != nil {
		// FK violation means the referenced listing doesn't exist.
		if isForeignKeyViolation(err) {
			return store.ErrListingNotFound
		}
		return fmt.Errorf("failed to create listing asset: %w", describePostgresError(err))
	}

	log.Debug().
		Str("listing_id", asset.ListingID.String()).
		Int32("display_order", asset.DisplayOrder).
		Msg("Created listing asset")

	return nil
}

// ListByListing returns all assets for a listing ordered by display order.
func (s *ListingAssetStore) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*models.ListingAsset, error) {
	query := `
		SELECT asset_id, listing_id, image_url, display_order, created_at
		FROM listing_assets
		WHERE listing_id = $1
		ORDER BY display_order ASC
	`

	rows, err := s.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listing assets: %w", describePostgresError(err))
	}
	defer rows.Close()

	var assets []*models.ListingAsset
	for rows.Next() {
		var asset models.ListingAsset
		err := rows.Scan(
			&asset.AssetID,
			&asset.ListingID,
			&asset.ImageURL,
			&asset.DisplayOrder,
			&asset.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing asset: %w", err)
		}
		assets = append(assets, &asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listing assets: %w", err)
	}

	return assets, nil
}
