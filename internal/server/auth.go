package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imovia/imovia/internal/identity"
	"github.com/imovia/imovia/internal/models"
)

// SessionFunc resolves a bearer access token to an identity. An unknown
// or rejected token resolves to (nil, nil); errors mean the identity
// provider could not be consulted.
type SessionFunc func(ctx context.Context, accessToken string) (*models.Identity, error)

// GoTrueSessions builds a SessionFunc backed by a GoTrue-compatible
// identity endpoint. The shared HTTP client should be caching so
// repeated token checks stay cheap.
func GoTrueSessions(baseURL string, httpClient *http.Client) SessionFunc {
	return func(ctx context.Context, accessToken string) (*models.Identity, error) {
		provider := identity.NewGoTrueProvider(baseURL, accessToken, httpClient)
		return provider.GetSession(ctx)
	}
}

type authContextKey struct{}

// requestAuth is the per-request authorization context: the verified
// identity and its resolved organization. Resolution happens inline, so
// the organization state is always settled by the time handlers run.
type requestAuth struct {
	Identity *models.Identity
	Org      *models.Organization
	OrgState identity.OrgState
}

func authFromContext(ctx context.Context) requestAuth {
	auth, ok := ctx.Value(authContextKey{}).(requestAuth)
	if !ok {
		return requestAuth{OrgState: identity.OrgStateNone}
	}
	return auth
}

// withAuth verifies the Authorization bearer token, resolves the
// caller's organization and stores both in the request context. A
// missing or rejected token yields an anonymous request, not an error;
// only provider or store outages fail the request.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		auth := requestAuth{OrgState: identity.OrgStateNone}

		token := bearerToken(r)
		if token != "" {
			ident, err := s.cfg.Sessions(ctx, token)
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("Identity provider lookup failed")
				writeError(w, http.StatusBadGateway, "identity provider unavailable")
				return
			}
			if ident != nil {
				org, err := s.resolver.Resolve(ctx, ident.ID)
				if err != nil {
					zerolog.Ctx(ctx).Error().Err(err).Msg("Tenant resolution failed")
					writeError(w, http.StatusInternalServerError, "failed to resolve organization")
					return
				}
				auth.Identity = ident
				auth.Org = org
				if org != nil {
					auth.OrgState = identity.OrgStatePresent
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, authContextKey{}, auth)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
