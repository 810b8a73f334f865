package identity

import (
	"context"

	"github.com/imovia/imovia/internal/models"
)

// Provider is the boundary to the external identity provider. The
// provider owns the identity lifecycle; this system only observes it.
type Provider interface {
	// GetSession returns the current identity, or (nil, nil) when no
	// session is established.
	GetSession(ctx context.Context) (*models.Identity, error)

	// OnChange registers a callback invoked with the new identity (or
	// nil on sign-out) whenever the provider's session changes. The
	// returned function unsubscribes the callback.
	OnChange(fn func(identity *models.Identity)) (unsubscribe func())

	// SignOut invalidates the current session with the provider.
	SignOut(ctx context.Context) error
}
