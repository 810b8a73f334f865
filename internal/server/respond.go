package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/imovia/imovia/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// listingResponse is the wire shape of a listing.
type listingResponse struct {
	ID           string          `json:"id"`
	OrgID        string          `json:"org_id"`
	Title        string          `json:"title"`
	Type         string          `json:"type"`
	Price        int64           `json:"price"`
	Area         int64           `json:"area"`
	Bedrooms     *int32          `json:"bedrooms,omitempty"`
	Bathrooms    *int32          `json:"bathrooms,omitempty"`
	Parking      *int32          `json:"parking_spaces,omitempty"`
	CEP          string          `json:"cep"`
	Address      string          `json:"address"`
	Neighborhood string          `json:"neighborhood"`
	Description  string          `json:"description"`
	Tour360URL   *string         `json:"tour_360_url,omitempty"`
	Status       string          `json:"status"`
	Images       []assetResponse `json:"images,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type assetResponse struct {
	URL          string `json:"url"`
	DisplayOrder int32  `json:"display_order"`
}

func toListingResponse(listing *models.Listing, assets []*models.ListingAsset) listingResponse {
	resp := listingResponse{
		ID:           listing.ListingID.String(),
		OrgID:        listing.OrgID.String(),
		Title:        listing.Title,
		Type:         listing.Type,
		Price:        listing.Price,
		Area:         listing.Area,
		Bedrooms:     listing.Bedrooms,
		Bathrooms:    listing.Bathrooms,
		Parking:      listing.Parking,
		CEP:          listing.CEP,
		Address:      listing.Address,
		Neighborhood: listing.Neighborhood,
		Description:  listing.Description,
		Tour360URL:   listing.Tour360URL,
		Status:       string(listing.Status),
		CreatedAt:    listing.CreatedAt,
		UpdatedAt:    listing.UpdatedAt,
	}
	for _, asset := range assets {
		resp.Images = append(resp.Images, assetResponse{
			URL:          asset.ImageURL,
			DisplayOrder: asset.DisplayOrder,
		})
	}
	return resp
}

// organizationResponse is the wire shape of an organization.
type organizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CNPJ      string    `json:"cnpj"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	CRECI     string    `json:"creci,omitempty"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toOrganizationResponse(org *models.Organization) organizationResponse {
	return organizationResponse{
		ID:        org.OrgID.String(),
		Name:      org.Name,
		CNPJ:      org.CNPJ,
		Phone:     org.Phone,
		Email:     org.Email,
		Address:   org.Address,
		CRECI:     org.CRECI,
		LogoURL:   org.LogoURL,
		Status:    string(org.Status),
		CreatedAt: org.CreatedAt,
	}
}
