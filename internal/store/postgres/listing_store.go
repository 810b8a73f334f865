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

// ListingStore implements store.ListingStore using PostgreSQL.
type ListingStore struct {
	pool *pgxpool.Pool
}

// NewListingStore creates a new PostgreSQL-backed listing store.
// It shares the connection pool with other stores.
func NewListingStore(pool *pgxpool.Pool) *ListingStore {
	return &ListingStore{
		pool: pool,
	}
}

// Create creates a new listing in the database.
func (s *ListingStore) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (
			listing_id, org_id, title, type, price, area,
			bedrooms, bathrooms, parking,
			cep, address, neighborhood, description, tour_360_url,
			status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
	`

	_, err := s.pool.Exec(ctx, query,
		listing.ListingID,
		listing.OrgID,
		listing.Title,
		listing.Type,
		listing.Price,
		listing.Area,
		listing.Bedrooms,
		listing.Bathrooms,
		listing.Parking,
		listing.CEP,
		listing.Address,
		listing.Neighborhood,
		listing.Description,
		listing.Tour360URL,
		listing.Status,
		listing.CreatedAt,
		listing.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrListingAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return store.ErrOrganizationNotFound
		}
		return fmt.Errorf("failed to create listing: %w", describePostgresError(err))
	}

	log.Debug().
		Str("listing_id", listing.ListingID.String()).
		Str("org_id", listing.OrgID.String()).
		Str("title", listing.Title).
		Msg("Created listing")

	return nil
}

// Get retrieves a listing by ID.
func (s *ListingStore) Get(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	query := `
		SELECT listing_id, org_id, title, type, price, area,
			bedrooms, bathrooms, parking,
			cep, address, neighborhood, description, tour_360_url,
			status, created_at, updated_at
		FROM listings
		WHERE listing_id = $1
	`

	listing, err := scanListing(s.pool.QueryRow(ctx, query, listingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", describePostgresError(err))
	}

	return listing, nil
}

// ListActive returns all active listings, most recent first.
func (s *ListingStore) ListActive(ctx context.Context) ([]*models.Listing, error) {
	query := `
		SELECT listing_id, org_id, title, type, price, area,
			bedrooms, bathrooms, parking,
			cep, address, neighborhood, description, tour_360_url,
			status, created_at, updated_at
		FROM listings
		WHERE status = 'active'
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", describePostgresError(err))
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return listings, nil
}

// scanListing scans a listing from a row. Works for both QueryRow and Query rows.
func scanListing(row pgx.Row) (*models.Listing, error) {
	var listing models.Listing
	err := row.Scan(
		&listing.ListingID,
		&listing.OrgID,
		&listing.Title,
		&listing.Type,
		&listing.Price,
		&listing.Area,
		&listing.Bedrooms,
		&listing.Bathrooms,
		&listing.Parking,
		&listing.CEP,
		&listing.Address,
		&listing.Neighborhood,
		&listing.Description,
		&listing.Tour360URL,
		&listing.Status,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &listing, nil
}
