package authz

import (
	"github.com/imovia/imovia/internal/identity"
	"github.com/imovia/imovia/internal/models"
)

// Reason explains why publishing is or isn't allowed.
type Reason string

const (
	// ReasonAllowed - identity present, organization approved.
	ReasonAllowed Reason = "allowed"
	// ReasonSignInRequired - no authenticated identity.
	ReasonSignInRequired Reason = "sign_in_required"
	// ReasonOrgUnresolved - tenant resolution has not settled yet.
	ReasonOrgUnresolved Reason = "organization_unresolved"
	// ReasonNoOrganization - identity has no registered organization.
	ReasonNoOrganization Reason = "no_organization"
	// ReasonPendingApproval - organization registered, awaiting approval.
	ReasonPendingApproval Reason = "pending_approval"
	// ReasonRejected - organization registration was rejected.
	ReasonRejected Reason = "rejected"
)

// Decision is the derived, never persisted outcome of the publication
// authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Message returns user-facing text for the decision.
func (d Decision) Message() string {
	switch d.Reason {
	case ReasonAllowed:
		return "publishing allowed"
	case ReasonSignInRequired:
		return "sign in to publish listings"
	case ReasonOrgUnresolved:
		return "checking your organization, try again shortly"
	case ReasonNoOrganization:
		return "register your organization to publish listings"
	case ReasonPendingApproval:
		return "your organization is awaiting approval"
	case ReasonRejected:
		return "your organization's registration was rejected"
	default:
		return string(d.Reason)
	}
}

// Decide computes the publication capability for a caller. It is a pure
// function: true only when an identity is present and its organization
// is present and approved. Guard states are reported in priority order:
// sign-in first, then organization presence, then approval state.
func Decide(ident *models.Identity, org *models.Organization, orgState identity.OrgState) Decision {
	if ident == nil {
		return Decision{Reason: ReasonSignInRequired}
	}

	if orgState == identity.OrgStateUnresolved {
		return Decision{Reason: ReasonOrgUnresolved}
	}

	if org == nil {
		return Decision{Reason: ReasonNoOrganization}
	}

	switch org.Status {
	case models.OrganizationStatusApproved:
		return Decision{Allowed: true, Reason: ReasonAllowed}
	case models.OrganizationStatusRejected:
		return Decision{Reason: ReasonRejected}
	default:
		return Decision{Reason: ReasonPendingApproval}
	}
}
