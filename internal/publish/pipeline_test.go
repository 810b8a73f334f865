package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imovia/imovia/internal/authz"
	"github.com/imovia/imovia/internal/identity"
	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
	"github.com/imovia/imovia/internal/store/memory"
)

// flakyBlobStore fails the nth upload and counts calls.
type flakyBlobStore struct {
	inner   *memory.BlobStore
	failAt  int // 1-based upload number to fail, 0 = never
	uploads int
}

func (s *flakyBlobStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	s.uploads++
	if s.failAt != 0 && s.uploads == s.failAt {
		return errors.New("storage unavailable")
	}
	return s.inner.Upload(ctx, key, contentType, body)
}

func (s *flakyBlobStore) PublicURL(key string) string {
	return s.inner.PublicURL(key)
}

// failingListingStore rejects every insert.
type failingListingStore struct {
	store.ListingStore
}

func (s *failingListingStore) Create(ctx context.Context, listing *models.Listing) error {
	return errors.New("listings table unavailable")
}

type fixture struct {
	listings *memory.ListingStore
	assets   *memory.ListingAssetStore
	blobs    *flakyBlobStore
	pipeline *Pipeline

	identity *models.Identity
	org      *models.Organization
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	listings := memory.NewListingStore()
	assets := memory.NewListingAssetStore()
	blobs := &flakyBlobStore{inner: memory.NewBlobStore("https://cdn.example.com/listings")}

	return &fixture{
		listings: listings,
		assets:   assets,
		blobs:    blobs,
		pipeline: NewPipeline(listings, assets, blobs),
		identity: &models.Identity{ID: uuid.Must(uuid.NewV7()), Email: "agente@premium.com.br"},
		org: &models.Organization{
			OrgID:  uuid.Must(uuid.NewV7()),
			Name:   "Imobiliária Premium",
			Status: models.OrganizationStatusApproved,
		},
	}
}

func testDraft() Draft {
	return Draft{
		Title:        "Apartamento Moderno no Centro",
		Type:         "apartamento",
		Price:        850000,
		Area:         120,
		CEP:          "01310-100",
		Address:      "Av. Paulista, 1000",
		Neighborhood: "Centro",
		Description:  "Apartamento reformado",
	}
}

func makeFiles(n int) []File {
	files := make([]File, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, File{
			Name:        fmt.Sprintf("foto-%d.jpg", i+1),
			ContentType: "image/jpeg",
			Body:        bytes.NewReader([]byte("fake image")),
		})
	}
	return files
}

func TestPublish_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	listing, err := f.pipeline.Publish(ctx, f.identity, f.org, identity.OrgStatePresent, testDraft(), makeFiles(4))
	require.NoError(t, err)
	require.NotNil(t, listing)
	require.Equal(t, f.org.OrgID, listing.OrgID)
	require.Equal(t, models.ListingStatusActive, listing.Status)

	stored, err := f.listings.Get(ctx, listing.ListingID)
	require.NoError(t, err)
	require.Equal(t, "Apartamento Moderno no Centro", stored.Title)

	assets, err := f.assets.ListByListing(ctx, listing.ListingID)
	require.NoError(t, err)
	require.Len(t, assets, 4)
	for i, asset := range assets {
		require.Equal(t, int32(i+1), asset.DisplayOrder)
		key := StorageKey(listing.ListingID, int32(i+1), "foto.jpg")
		require.Equal(t, "https://cdn.example.com/listings/"+key, asset.ImageURL)
		_, ok := f.blobs.inner.Get(key)
		require.True(t, ok)
	}
}

func TestPublish_NoFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	listing, err := f.pipeline.Publish(ctx, f.identity, f.org, identity.OrgStatePresent, testDraft(), nil)
	require.NoError(t, err)

	assets, err := f.assets.ListByListing(ctx, listing.ListingID)
	require.NoError(t, err)
	require.Empty(t, assets)
}

func TestPublish_TooManyFilesRejectedBeforeAnyBackendCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.pipeline.Publish(ctx, f.identity, f.org, identity.OrgStatePresent, testDraft(), makeFiles(7))
	require.ErrorIs(t, err, ErrTooManyFiles)

	// No listing record, no uploads, no asset rows
	listings, err := f.listings.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, listings)
	require.Zero(t, f.blobs.uploads)
}

func TestPublish_ListingInsertFailureMeansNoAssetWork(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pipeline := NewPipeline(&failingListingStore{}, f.assets, f.blobs)

	_, err := pipeline.Publish(ctx, f.identity, f.org, identity.OrgStatePresent, testDraft(), makeFiles(3))
	require.Error(t, err)
	require.Contains(t, err.Error(), "listings table unavailable")

	require.Zero(t, f.blobs.uploads)
	require.Zero(t, f.blobs.inner.Len())
}

func TestPublish_MidUploadFailureKeepsPartialState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Third of five uploads fails
	f.blobs.failAt = 3

	_, err := f.pipeline.Publish(ctx, f.identity, f.org, identity.OrgStatePresent, testDraft(), makeFiles(5))
	require.Error(t, err)
	require.Contains(t, err.Error(), "storage unavailable")

	// Files 4 and 5 were never attempted
	require.Equal(t, 3, f.blobs.uploads)

	// The listing persists, active, with exactly the two assets that
	// succeeded before the failure
	listings, listErr := f.listings.ListActive(ctx)
	require.NoError(t, listErr)
	require.Len(t, listings, 1)
	require.Equal(t, models.ListingStatusActive, listings[0].Status)

	assets, assetErr := f.assets.ListByListing(ctx, listings[0].ListingID)
	require.NoError(t, assetErr)
	require.Len(t, assets, 2)
	require.Equal(t, int32(1), assets[0].DisplayOrder)
	require.Equal(t, int32(2), assets[1].DisplayOrder)
}

func TestPublish_GateGuardsPipelineEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		identity *models.Identity
		org      *models.Organization
		orgState identity.OrgState
		reason   authz.Reason
	}{
		{
			name:     "signed out",
			identity: nil,
			orgState: identity.OrgStateNone,
			reason:   authz.ReasonSignInRequired,
		},
		{
			name:     "no organization",
			identity: f.identity,
			orgState: identity.OrgStateNone,
			reason:   authz.ReasonNoOrganization,
		},
		{
			name:     "pending organization",
			identity: f.identity,
			org:      &models.Organization{OrgID: uuid.Must(uuid.NewV7()), Status: models.OrganizationStatusPending},
			orgState: identity.OrgStatePresent,
			reason:   authz.ReasonPendingApproval,
		},
		{
			name:     "organization still resolving",
			identity: f.identity,
			orgState: identity.OrgStateUnresolved,
			reason:   authz.ReasonOrgUnresolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.pipeline.Publish(ctx, tt.identity, tt.org, tt.orgState, testDraft(), makeFiles(1))
			require.Error(t, err)

			decision, ok := IsNotAllowed(err)
			require.True(t, ok)
			require.Equal(t, tt.reason, decision.Reason)
		})
	}

	// Denials happen before any backend effect
	listings, err := f.listings.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, listings)
	require.Zero(t, f.blobs.uploads)
}

func TestStorageKey(t *testing.T) {
	listingID := uuid.Must(uuid.NewV7())

	require.Equal(t, fmt.Sprintf("%s-1.jpg", listingID), StorageKey(listingID, 1, "foto.jpg"))
	require.Equal(t, fmt.Sprintf("%s-2.png", listingID), StorageKey(listingID, 2, "planta.baixa.png"))
	require.Equal(t, fmt.Sprintf("%s-3.jpg", listingID), StorageKey(listingID, 3, "sem-extensao"))
}
