package server

import (
	"net/http"

	"github.com/imovia/imovia/internal/authz"
)

// sessionResponse describes the caller's own authorization state: who
// they are, their organization and whether they may publish.
type sessionResponse struct {
	Authenticated bool                  `json:"authenticated"`
	Email         string                `json:"email,omitempty"`
	Organization  *organizationResponse `json:"organization,omitempty"`
	CanPublish    bool                  `json:"can_publish"`
	Reason        string                `json:"reason"`
	Message       string                `json:"message"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	auth := authFromContext(r.Context())
	decision := authz.Decide(auth.Identity, auth.Org, auth.OrgState)

	resp := sessionResponse{
		Authenticated: auth.Identity != nil,
		CanPublish:    decision.Allowed,
		Reason:        string(decision.Reason),
		Message:       decision.Message(),
	}
	if auth.Identity != nil {
		resp.Email = auth.Identity.Email
	}
	if auth.Org != nil {
		org := toOrganizationResponse(auth.Org)
		resp.Organization = &org
	}

	writeJSON(w, http.StatusOK, resp)
}
