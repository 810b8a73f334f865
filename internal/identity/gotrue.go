package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imovia/imovia/internal/models"
)

// GoTrueProvider implements Provider against a GoTrue-compatible
// identity endpoint (the auth service of Supabase-style backends). It
// holds the caller's access token and translates provider responses
// into identities.
type GoTrueProvider struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	callbacks   map[int]func(identity *models.Identity)
	nextID      int
}

// NewGoTrueProvider creates a provider for the given endpoint. The
// access token may be empty (signed out). A caching HTTP client is
// recommended so cacheable provider metadata is not re-fetched.
func NewGoTrueProvider(baseURL, accessToken string, httpClient *http.Client) *GoTrueProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoTrueProvider{
		baseURL:     baseURL,
		httpClient:  httpClient,
		accessToken: accessToken,
		callbacks:   make(map[int]func(identity *models.Identity)),
	}
}

// gotrueUser is the wire shape of the provider's user endpoint.
type gotrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GetSession returns the identity for the held access token, or
// (nil, nil) when no token is held, the token is expired, or the
// provider rejects it.
func (p *GoTrueProvider) GetSession(ctx context.Context) (*models.Identity, error) {
	p.mu.Lock()
	token := p.accessToken
	p.mu.Unlock()

	if token == "" {
		return nil, nil
	}

	// Cheap local expiry check before going to the network. The claims
	// are not trusted for anything else; the provider remains the
	// authority on the session.
	if expired(token) {
		log.Debug().Msg("Access token expired")
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var user gotrueUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}

	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("provider returned invalid user id %q: %w", user.ID, err)
	}

	return &models.Identity{
		ID:          id,
		Email:       user.Email,
		AccessToken: token,
	}, nil
}

// OnChange registers a callback fired on sign-out and token changes.
func (p *GoTrueProvider) OnChange(fn func(identity *models.Identity)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.callbacks[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.callbacks, id)
	}
}

// SignOut invalidates the session with the provider. The local token is
// cleared and subscribers are notified even when the provider call
// fails.
func (p *GoTrueProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	token := p.accessToken
	p.accessToken = ""
	p.mu.Unlock()

	var signOutErr error
	if token != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/logout", nil)
		if err != nil {
			signOutErr = fmt.Errorf("failed to build logout request: %w", err)
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := p.httpClient.Do(req)
			if err != nil {
				signOutErr = fmt.Errorf("failed to sign out: %w", err)
			} else {
				resp.Body.Close()
				if resp.StatusCode >= 400 {
					signOutErr = fmt.Errorf("identity provider returned status %d on sign-out", resp.StatusCode)
				}
			}
		}
	}

	p.notify(nil)

	return signOutErr
}

// notify fires all registered callbacks with the new identity.
func (p *GoTrueProvider) notify(identity *models.Identity) {
	p.mu.Lock()
	callbacks := make([]func(identity *models.Identity), 0, len(p.callbacks))
	for _, fn := range p.callbacks {
		callbacks = append(callbacks, fn)
	}
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn(identity)
	}
}

// expired reports whether the token's exp claim is in the past. Tokens
// that cannot be parsed are not treated as expired; the provider gets
// the final say.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
