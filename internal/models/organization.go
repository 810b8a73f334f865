package models

import (
	"time"

	"github.com/google/uuid"
)

// OrganizationStatus is the lifecycle state of an organization's
// registration. Organizations start out pending and are approved or
// rejected by a back-office workflow outside this system.
const (
	OrganizationStatusPending  = "pending"
	OrganizationStatusApproved = "approved"
	OrganizationStatusRejected = "rejected"
)

// Organization represents a real-estate agency (tenant) in the system.
// Only approved organizations may publish listings.
type Organization struct {
	OrgID     uuid.UUID // UUIDv7
	Name      string
	CNPJ      string // company registry number
	Phone     string
	Email     string
	Address   string
	CRECI     string // realtor registry number
	LogoURL   *string
	Status    string // "pending", "approved", "rejected"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsApproved returns true if the organization has passed the approval
// workflow and may publish listings.
func (o *Organization) IsApproved() bool {
	return o.Status == OrganizationStatusApproved
}

// TenantLink roles. Both roles currently carry the same publishing
// rights; the role is recorded for future permission splits.
const (
	TenantRoleAdmin = "admin"
	TenantRoleAgent = "agent"
)

// TenantLink relates exactly one identity to exactly one organization.
// Registration creates one link per identity; the system only ever
// consults a single link per identity.
type TenantLink struct {
	LinkID     uuid.UUID // UUIDv7
	IdentityID uuid.UUID
	OrgID      uuid.UUID
	Role       string // "admin" or "agent"
	CreatedAt  time.Time
}
