package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imovia/imovia/internal/models"
	"github.com/imovia/imovia/internal/store"
)

// registerOrganizationRequest is the registration payload. The caller
// becomes the organization's admin; approval is a separate back-office
// step, so new organizations always start pending.
type registerOrganizationRequest struct {
	Name    string  `json:"name"`
	CNPJ    string  `json:"cnpj"`
	Phone   string  `json:"phone"`
	Email   string  `json:"email"`
	Address string  `json:"address"`
	CRECI   string  `json:"creci"`
	LogoURL *string `json:"logo_url"`
}

func (req *registerOrganizationRequest) validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.CNPJ == "" {
		return errors.New("cnpj is required")
	}
	if req.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

func (s *Server) handleRegisterOrganization(w http.ResponseWriter, r *http.Request) {
	auth := authFromContext(r.Context())
	if auth.Identity == nil {
		writeError(w, http.StatusUnauthorized, "sign in to register an organization")
		return
	}
	if auth.Org != nil {
		writeError(w, http.StatusConflict, "identity already belongs to an organization")
		return
	}

	var req registerOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now()
	org := &models.Organization{
		OrgID:     uuid.Must(uuid.NewV7()),
		Name:      req.Name,
		CNPJ:      req.CNPJ,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		CRECI:     req.CRECI,
		LogoURL:   req.LogoURL,
		Status:    models.OrganizationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.cfg.Orgs.Create(r.Context(), org); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to create organization")
		writeError(w, http.StatusInternalServerError, "failed to create organization")
		return
	}

	link := &models.TenantLink{
		LinkID:     uuid.Must(uuid.NewV7()),
		IdentityID: auth.Identity.ID,
		OrgID:      org.OrgID,
		Role:       models.TenantRoleAdmin,
		CreatedAt:  now,
	}

	if err := s.cfg.Links.Create(r.Context(), link); err != nil {
		if errors.Is(err, store.ErrTenantLinkAlreadyExists) {
			// Lost a race with a concurrent registration for the same
			// identity. The just-created organization stays orphaned.
			writeError(w, http.StatusConflict, "identity already belongs to an organization")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to link identity to organization")
		writeError(w, http.StatusInternalServerError, "failed to link identity to organization")
		return
	}

	zerolog.Ctx(r.Context()).Info().
		Str("org_id", org.OrgID.String()).
		Str("identity_id", auth.Identity.ID.String()).
		Msg("Registered organization")

	writeJSON(w, http.StatusCreated, toOrganizationResponse(org))
}
