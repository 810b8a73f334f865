package server

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog"

	internalhttp "github.com/imovia/imovia/internal/http"
	"github.com/imovia/imovia/internal/logger"
	"github.com/imovia/imovia/internal/publish"
	"github.com/imovia/imovia/internal/store"
	"github.com/imovia/imovia/internal/tenant"
)

// Config carries the stores and session lookup the server serves from.
type Config struct {
	Sessions SessionFunc
	Orgs     store.OrganizationStore
	Links    store.TenantLinkStore
	Listings store.ListingStore
	Assets   store.ListingAssetStore
	Blobs    store.BlobStore

	// AllowedOrigins for browser clients. Empty disables CORS headers.
	AllowedOrigins []string
}

// Server exposes the listing marketplace over a JSON HTTP API.
type Server struct {
	cfg      Config
	resolver *tenant.Resolver
	pipeline *publish.Pipeline
}

// NewServer creates a new server over the given stores.
func NewServer(cfg Config) *Server {
	return &Server{
		cfg:      cfg,
		resolver: tenant.NewResolver(cfg.Links, cfg.Orgs),
		pipeline: publish.NewPipeline(cfg.Listings, cfg.Assets, cfg.Blobs),
	}
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("GET /api/session", s.handleSession)
	mux.HandleFunc("GET /api/listings", s.handleListListings)
	mux.HandleFunc("GET /api/listings/{id}", s.handleGetListing)
	mux.HandleFunc("POST /api/listings", s.handlePublishListing)
	mux.HandleFunc("POST /api/organizations", s.handleRegisterOrganization)

	handler := s.withAuth(mux)
	handler = internalhttp.ClientIPMiddleware()(handler)
	handler = logger.Requests(log)(handler)

	if len(s.cfg.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler(handler)
	}

	return handler
}
