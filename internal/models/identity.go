package models

import (
	"github.com/google/uuid"
)

// Identity represents an authenticated caller as reported by the identity
// provider. Identities are created and destroyed by the provider; this
// system only ever reads them.
type Identity struct {
	ID          uuid.UUID
	Email       string
	AccessToken string // opaque session token issued by the provider
}
