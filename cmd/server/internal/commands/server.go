package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/imovia/imovia/internal/client"
	"github.com/imovia/imovia/internal/logger"
	"github.com/imovia/imovia/internal/server"
	"github.com/imovia/imovia/internal/store"
	memorystore "github.com/imovia/imovia/internal/store/memory"
	postgresstore "github.com/imovia/imovia/internal/store/postgres"
	s3store "github.com/imovia/imovia/internal/store/s3"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"IMOVIA_LISTEN"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:5173" env:"IMOVIA_CORS_ORIGINS"`

	// Identity provider configuration
	AuthURL string `help:"base URL of the GoTrue-compatible identity endpoint" env:"IMOVIA_AUTH_URL"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"IMOVIA_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	// Image storage configuration
	StorageType string       `help:"image storage type (memory or s3)" default:"memory" env:"IMOVIA_STORAGE_TYPE" enum:"memory,s3"`
	Storage     StorageFlags `embed:"" prefix:"storage-"`
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns        int32 `help:"maximum number of connections in pool" default:"20"`
	MinConns        int32 `help:"minimum number of connections in pool" default:"5"`
	MaxConnLifetime int32 `help:"maximum connection lifetime in seconds" default:"3600"`
	MaxConnIdleTime int32 `help:"maximum connection idle time in seconds" default:"1800"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"IMOVIA_POSTGRES_AUTO_MIGRATE"`
}

// StorageFlags configures the S3-compatible image bucket.
type StorageFlags struct {
	Bucket          string `help:"bucket for listing images" env:"IMOVIA_STORAGE_BUCKET"`
	Region          string `help:"bucket region" default:"sa-east-1" env:"AWS_REGION"`
	Endpoint        string `help:"custom S3-compatible endpoint (MinIO, Supabase storage)" env:"IMOVIA_STORAGE_ENDPOINT"`
	PublicBaseURL   string `help:"public base URL for issued image links (e.g. CDN domain)" env:"IMOVIA_STORAGE_PUBLIC_URL"`
	AccessKeyID     string `help:"static access key for S3-compatible endpoints" env:"IMOVIA_STORAGE_ACCESS_KEY"`
	SecretAccessKey string `help:"static secret key for S3-compatible endpoints" env:"IMOVIA_STORAGE_SECRET_KEY"`
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.AuthURL == "" {
		return errors.New("identity endpoint is required (--auth-url or IMOVIA_AUTH_URL)")
	}

	var (
		orgStore     store.OrganizationStore
		linkStore    store.TenantLinkStore
		listingStore store.ListingStore
		assetStore   store.ListingAssetStore
	)

	switch c.StoreType {
	case "postgres":
		if c.PostgresStore.ConnString == "" {
			return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
		}

		// Shared connection pool for all PostgreSQL stores
		poolCfg := &postgresstore.PoolConfig{
			ConnString:      c.PostgresStore.ConnString,
			MaxConns:        c.PostgresStore.MaxConns,
			MinConns:        c.PostgresStore.MinConns,
			MaxConnLifetime: c.PostgresStore.MaxConnLifetime,
			MaxConnIdleTime: c.PostgresStore.MaxConnIdleTime,
		}
		pool, err := postgresstore.NewPool(ctx, poolCfg)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		if c.PostgresStore.AutoMigrate {
			if err := postgresstore.RunMigrations(ctx, pool); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info().Msg("Database migrations completed")
		}

		orgStore = postgresstore.NewOrganizationStore(pool)
		linkStore = postgresstore.NewTenantLinkStore(pool)
		listingStore = postgresstore.NewListingStore(pool)
		assetStore = postgresstore.NewListingAssetStore(pool)

		log.Info().Msg("Using PostgreSQL stores with shared connection pool")

	default:
		orgStore = memorystore.NewOrganizationStore()
		linkStore = memorystore.NewTenantLinkStore()
		listingStore = memorystore.NewListingStore()
		assetStore = memorystore.NewListingAssetStore()
		log.Info().Msg("Using in-memory stores")
	}

	var blobStore store.BlobStore
	switch c.StorageType {
	case "s3":
		cfg := &s3store.Config{
			Bucket:          c.Storage.Bucket,
			Region:          c.Storage.Region,
			Endpoint:        c.Storage.Endpoint,
			PublicBaseURL:   c.Storage.PublicBaseURL,
			AccessKeyID:     c.Storage.AccessKeyID,
			SecretAccessKey: c.Storage.SecretAccessKey,
		}
		var err error
		blobStore, err = s3store.NewBlobStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to create blob store: %w", err)
		}
		log.Info().Str("bucket", c.Storage.Bucket).Msg("Using S3 image storage")

	default:
		blobStore = memorystore.NewBlobStore("http://" + c.Listen + "/images")
		log.Warn().Msg("Using in-memory image storage. Uploaded images are lost on restart")
	}

	// Session lookups share one caching client so repeated token checks
	// don't hammer the identity endpoint.
	sessions := server.GoTrueSessions(c.AuthURL, client.NewInMemoryCachingHTTPClient())

	srv := server.NewServer(server.Config{
		Sessions:       sessions,
		Orgs:           orgStore,
		Links:          linkStore,
		Listings:       listingStore,
		Assets:         assetStore,
		Blobs:          blobStore,
		AllowedOrigins: c.CORSOrigins,
	})

	log.Info().Str("addr", c.Listen).Str("auth", c.AuthURL).Msg("Starting HTTP server")
	return configureHTTPServer(c.Listen, srv.Handler(log)).ListenAndServe()
}