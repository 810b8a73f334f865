package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imovia/imovia/internal/authz"
	"github.com/imovia/imovia/internal/identity"
	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
)

// MaxFiles is the per-publication cap on image attachments.
const MaxFiles = 6

// Sentinel errors for publication.
var (
	// ErrTooManyFiles is returned before any backend call when more
	// than MaxFiles images are submitted.
	ErrTooManyFiles = fmt.Errorf("at most %d images per listing", MaxFiles)
)

// NotAllowedError is returned when the hard authorization guard at
// pipeline entry denies the call.
type NotAllowedError struct {
	Decision authz.Decision
}

func (e *NotAllowedError) Error() string {
	return "publication not allowed: " + e.Decision.Message()
}

// Draft holds the user-supplied listing fields. The owning organization
// and status are assigned by the pipeline.
type Draft struct {
	Title        string
	Type         string
	Price        int64
	Area         int64
	Bedrooms     *int32
	Bathrooms    *int32
	Parking      *int32
	CEP          string
	Address      string
	Neighborhood string
	Description  string
	Tour360URL   *string
}

// File is one image to attach, in submission order.
type File struct {
	Name        string // original filename, used for the extension
	ContentType string
	Body        io.Reader
}

// Pipeline orchestrates listing publication: record creation, then
// sequential image upload and asset-row linkage. The pipeline is
// deliberately not transactional across those steps - a failure part
// way leaves the listing active with the assets linked so far, and the
// error is surfaced to the caller. No compensation is attempted.
type Pipeline struct {
	listings store.ListingStore
	assets   store.ListingAssetStore
	blobs    store.BlobStore
}

// NewPipeline creates a publication pipeline over the given stores.
func NewPipeline(listings store.ListingStore, assets store.ListingAssetStore, blobs store.BlobStore) *Pipeline {
	return &Pipeline{
		listings: listings,
		assets:   assets,
		blobs:    blobs,
	}
}

// Publish creates a listing for the caller's organization and attaches
// the given images in order. The authorization state is passed in
// explicitly and re-checked here, so a stale caller cannot bypass the
// gate.
//
// Files upload strictly sequentially; display order is 1-based
// submission order. The first failing file aborts the loop - files
// after it are never attempted - and the created listing plus the
// already linked assets remain in place.
func (p *Pipeline) Publish(ctx context.Context, ident *models.Identity, org *models.Organization, orgState identity.OrgState, draft Draft, files []File) (*models.Listing, error) {
	decision := authz.Decide(ident, org, orgState)
	if !decision.Allowed {
		return nil, &NotAllowedError{Decision: decision}
	}

	if len(files) > MaxFiles {
		return nil, ErrTooManyFiles
	}

	now := time.Now()
	listing := &models.Listing{
		ListingID:    uuid.Must(uuid.NewV7()),
		OrgID:        org.OrgID,
		Title:        draft.Title,
		Type:         draft.Type,
		Price:        draft.Price,
		Area:         draft.Area,
		Bedrooms:     draft.Bedrooms,
		Bathrooms:    draft.Bathrooms,
		Parking:      draft.Parking,
		CEP:          draft.CEP,
		Address:      draft.Address,
		Neighborhood: draft.Neighborhood,
		Description:  draft.Description,
		Tour360URL:   draft.Tour360URL,
		Status:       models.ListingStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The listing record must exist before any asset work begins.
	if err := p.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	log.Info().
		Str("listing_id", listing.ListingID.String()).
		Str("org_id", org.OrgID.String()).
		Int("files", len(files)).
		Msg("Created listing, attaching images")

	for i, file := range files {
		seq := int32(i + 1)
		if err := p.attachFile(ctx, listing.ListingID, seq, file); err != nil {
			log.Error().Err(err).
				Str("listing_id", listing.ListingID.String()).
				Int32("sequence", seq).
				Msg("Image attachment failed, aborting remaining uploads")
			return nil, fmt.Errorf("failed to attach image %d: %w", seq, err)
		}
	}

	return listing, nil
}

// attachFile uploads one image and links it with its display order.
func (p *Pipeline) attachFile(ctx context.Context, listingID uuid.UUID, seq int32, file File) error {
	key := StorageKey(listingID, seq, file.Name)

	if err := p.blobs.Upload(ctx, key, file.ContentType, file.Body); err != nil {
		return err
	}

	asset := &models.ListingAsset{
		AssetID:      uuid.Must(uuid.NewV7()),
		ListingID:    listingID,
		ImageURL:     p.blobs.PublicURL(key),
		DisplayOrder: seq,
		CreatedAt:    time.Now(),
	}

	return p.assets.Create(ctx, asset)
}

// StorageKey derives the deterministic object key for the seq-th image
// of a listing: "{listing_id}-{sequence}.{extension}".
func StorageKey(listingID uuid.UUID, seq int32, filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "jpg"
	}
	return fmt.Sprintf("%s-%d.%s", listingID, seq, ext)
}

// IsNotAllowed reports whether err is an authorization denial and
// returns its decision.
func IsNotAllowed(err error) (authz.Decision, bool) {
	var notAllowed *NotAllowedError
	if errors.As(err, &notAllowed) {
		return notAllowed.Decision, true
	}
	return authz.Decision{}, false
}
