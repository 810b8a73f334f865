package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/imovia/imovia/internal/client"
	"github.com/imovia/imovia/internal/identity"
	"github.com/imovia/imovia/internal/store"
	memorystore "github.com/imovia/imovia/internal/store/memory"
	postgresstore "github.com/imovia/imovia/internal/store/postgres"
	s3store "github.com/imovia/imovia/internal/store/s3"
	"github.com/imovia/imovia/internal/tenant"
)

type Globals struct {
	Debug   bool
	Version string
}

// AuthFlags locates the identity endpoint and the caller's access
// token. The token normally comes from the environment so it stays out
// of shell history.
type AuthFlags struct {
	AuthURL     string `help:"base URL of the GoTrue-compatible identity endpoint" env:"IMOVIA_AUTH_URL"`
	AccessToken string `help:"access token for the current session" env:"IMOVIA_ACCESS_TOKEN"`
}

func (a *AuthFlags) Validate() error {
	if a.AuthURL == "" {
		return errors.New("identity endpoint is required (--auth-url or IMOVIA_AUTH_URL)")
	}
	return nil
}

// StoreFlags selects the backing stores. Memory stores only live for
// one invocation; point at PostgreSQL for anything persistent.
type StoreFlags struct {
	StoreType  string `help:"store type (memory or postgres)" default:"memory" env:"IMOVIA_STORE_TYPE" enum:"memory,postgres"`
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
}

// StorageFlags configures where published images go.
type StorageFlags struct {
	StorageType     string `help:"image storage type (memory or s3)" default:"memory" env:"IMOVIA_STORAGE_TYPE" enum:"memory,s3"`
	Bucket          string `help:"bucket for listing images" env:"IMOVIA_STORAGE_BUCKET"`
	Region          string `help:"bucket region" default:"sa-east-1" env:"AWS_REGION"`
	Endpoint        string `help:"custom S3-compatible endpoint" env:"IMOVIA_STORAGE_ENDPOINT"`
	PublicBaseURL   string `help:"public base URL for issued image links" env:"IMOVIA_STORAGE_PUBLIC_URL"`
	AccessKeyID     string `help:"static access key" env:"IMOVIA_STORAGE_ACCESS_KEY"`
	SecretAccessKey string `help:"static secret key" env:"IMOVIA_STORAGE_SECRET_KEY"`
}

// stores bundles the domain stores a command works against.
type stores struct {
	orgs     store.OrganizationStore
	links    store.TenantLinkStore
	listings store.ListingStore
	assets   store.ListingAssetStore

	close func()
}

func buildStores(ctx context.Context, flags StoreFlags) (*stores, error) {
	if flags.StoreType == "postgres" {
		if flags.ConnString == "" {
			return nil, errors.New("PostgreSQL connection string is required (--conn-string or POSTGRES_CONNECTION_STRING)")
		}
		pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{ConnString: flags.ConnString})
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		return &stores{
			orgs:     postgresstore.NewOrganizationStore(pool),
			links:    postgresstore.NewTenantLinkStore(pool),
			listings: postgresstore.NewListingStore(pool),
			assets:   postgresstore.NewListingAssetStore(pool),
			close:    pool.Close,
		}, nil
	}

	return &stores{
		orgs:     memorystore.NewOrganizationStore(),
		links:    memorystore.NewTenantLinkStore(),
		listings: memorystore.NewListingStore(),
		assets:   memorystore.NewListingAssetStore(),
		close:    func() {},
	}, nil
}

func buildBlobStore(ctx context.Context, flags StorageFlags) (store.BlobStore, error) {
	if flags.StorageType == "s3" {
		return s3store.NewBlobStore(ctx, &s3store.Config{
			Bucket:          flags.Bucket,
			Region:          flags.Region,
			Endpoint:        flags.Endpoint,
			PublicBaseURL:   flags.PublicBaseURL,
			AccessKeyID:     flags.AccessKeyID,
			SecretAccessKey: flags.SecretAccessKey,
		})
	}
	return memorystore.NewBlobStore("memory://images"), nil
}

// startSession builds the identity manager over the configured provider
// and waits for the initial session fetch and tenant resolution to
// settle before returning.
func startSession(ctx context.Context, auth AuthFlags, st *stores) (*identity.Manager, error) {
	provider := identity.NewGoTrueProvider(auth.AuthURL, auth.AccessToken, client.NewInMemoryCachingHTTPClient())
	manager := identity.NewManager(provider, tenant.NewResolver(st.links, st.orgs))
	manager.Start(ctx)

	if err := manager.Wait(ctx); err != nil {
		manager.Stop()
		return nil, fmt.Errorf("session never settled: %w", err)
	}
	return manager, nil
}
