package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/imovia/imovia/internal/models"
)

// OrgState is the resolution state of the caller's organization. A
// tri-state is used so that "still resolving" is never confused with
// "has no organization".
type OrgState int

const (
	// OrgStateUnresolved means tenant resolution has not settled yet.
	OrgStateUnresolved OrgState = iota
	// OrgStateNone means resolution settled and no organization is linked.
	OrgStateNone
	// OrgStatePresent means resolution settled and Org is set.
	OrgStatePresent
)

// String returns a human-readable form of the state.
func (s OrgState) String() string {
	switch s {
	case OrgStateNone:
		return "none"
	case OrgStatePresent:
		return "present"
	default:
		return "unresolved"
	}
}

// TenantResolver resolves the organization an identity administers.
type TenantResolver interface {
	Resolve(ctx context.Context, identityID uuid.UUID) (*models.Organization, error)
}

// Snapshot is a point-in-time copy of the session state. It is safe to
// hold across suspension points; it never aliases the manager's
// internal state.
type Snapshot struct {
	Identity *models.Identity
	Org      *models.Organization
	OrgState OrgState
	Loading  bool
}

// Manager tracks the current identity and its resolved organization.
// It subscribes to the provider's change stream and performs one
// initial session fetch; both paths update identity state, but only
// the initial fetch clears the loading flag, exactly once, after its
// tenant resolution settles.
//
// All mutation happens inside the manager; readers get snapshot copies.
type Manager struct {
	provider Provider
	resolver TenantResolver

	mu       sync.Mutex
	identity *models.Identity
	org      *models.Organization
	orgState OrgState
	loading  bool

	loadedOnce  sync.Once
	loaded      chan struct{}
	unsubscribe func()
}

// NewManager creates a session manager over the given provider and
// resolver. Call Start to begin tracking.
func NewManager(provider Provider, resolver TenantResolver) *Manager {
	return &Manager{
		provider: provider,
		resolver: resolver,
		orgState: OrgStateUnresolved,
		loading:  true,
		loaded:   make(chan struct{}),
	}
}

// Start subscribes to the provider's change stream and kicks off the
// initial session fetch in the background. It returns immediately; use
// Wait to block until the initial load settles.
func (m *Manager) Start(ctx context.Context) {
	m.unsubscribe = m.provider.OnChange(func(identity *models.Identity) {
		m.handleChange(ctx, identity)
	})

	go m.initialFetch(ctx)
}

// Stop unsubscribes from the provider's change stream.
func (m *Manager) Stop() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Wait blocks until the initial load has settled or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	select {
	case <-m.loaded:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		OrgState: m.orgState,
		Loading:  m.loading,
	}
	if m.identity != nil {
		identity := *m.identity
		snap.Identity = &identity
	}
	if m.org != nil {
		org := *m.org
		snap.Org = &org
	}
	return snap
}

// SignOut invalidates the session with the provider and clears the
// resolved organization. The organization is cleared even when the
// provider call fails; the identity itself is cleared through the
// provider's change notification.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.provider.SignOut(ctx)

	m.mu.Lock()
	m.org = nil
	m.orgState = OrgStateNone
	m.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Msg("Provider sign-out failed")
	}
	return err
}

// RefreshOrganization re-runs the two-step tenant lookup for the
// current identity. It is a no-op when signed out.
func (m *Manager) RefreshOrganization(ctx context.Context) {
	m.mu.Lock()
	identity := m.identity
	m.mu.Unlock()

	if identity == nil {
		return
	}
	m.resolveOrg(ctx, identity.ID)
}

// initialFetch performs the one-time session fetch. Provider errors are
// not distinguished from "no session" - both settle to a signed-out
// state. The loading flag clears only after the associated tenant
// resolution completes.
func (m *Manager) initialFetch(ctx context.Context) {
	identity, err := m.provider.GetSession(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Initial session fetch failed, treating as signed out")
		identity = nil
	}

	m.setIdentity(identity)

	if identity != nil {
		m.resolveOrg(ctx, identity.ID)
	}

	m.loadedOnce.Do(func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
		close(m.loaded)
	})
}

// handleChange processes a provider change notification. Tenant
// resolution is scheduled on a separate goroutine so the notification
// handler returns immediately. Loading is never toggled here.
func (m *Manager) handleChange(ctx context.Context, identity *models.Identity) {
	m.setIdentity(identity)

	if identity != nil {
		go m.resolveOrg(ctx, identity.ID)
	}
}

// setIdentity updates the identity and resets organization state
// accordingly: a present identity moves the org to unresolved until
// resolution settles, an absent one settles it to none.
func (m *Manager) setIdentity(identity *models.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.identity = identity
	if identity == nil {
		m.org = nil
		m.orgState = OrgStateNone
		return
	}
	m.org = nil
	m.orgState = OrgStateUnresolved
}

// resolveOrg runs the resolver and writes the result back, unless the
// identity changed while the lookup was in flight. Lookup failures
// settle to "no organization" and are logged, not surfaced.
func (m *Manager) resolveOrg(ctx context.Context, identityID uuid.UUID) {
	org, err := m.resolver.Resolve(ctx, identityID)
	if err != nil {
		log.Warn().Err(err).
			Str("identity_id", identityID.String()).
			Msg("Tenant resolution failed")
		org = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Drop stale results from a superseded identity.
	if m.identity == nil || m.identity.ID != identityID {
		return
	}

	m.org = org
	if org != nil {
		m.orgState = OrgStatePresent
	} else {
		m.orgState = OrgStateNone
	}
}
