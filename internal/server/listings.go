package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	internalhttp "github.com/imovia/imovia/internal/http"
	"github.com/imovia/imovia/internal/publish"
	"github.com/imovia/imovia/internal/search"
	"github.com/imovia/imovia/internal/store"
)

// maxPublishFormMemory bounds the in-memory portion of a multipart
// publication request; larger file parts spill to disk.
const maxPublishFormMemory = 32 << 20

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.cfg.Listings.ListActive(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to list listings")
		writeError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}

	listings = search.Filter(listings, r.URL.Query().Get("q"))

	resp := make([]listingResponse, 0, len(listings))
	for _, listing := range listings {
		resp = append(resp, toListingResponse(listing, nil))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid listing id")
		return
	}

	listing, err := s.cfg.Listings.Get(r.Context(), listingID)
	if err != nil {
		if errors.Is(err, store.ErrListingNotFound) {
			writeError(w, http.StatusNotFound, "listing not found")
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to fetch listing")
		writeError(w, http.StatusInternalServerError, "failed to fetch listing")
		return
	}

	assets, err := s.cfg.Assets.ListByListing(r.Context(), listingID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to fetch listing images")
		writeError(w, http.StatusInternalServerError, "failed to fetch listing images")
		return
	}

	writeJSON(w, http.StatusOK, toListingResponse(listing, assets))
}

// handlePublishListing accepts a multipart form with the listing fields
// and up to six parts named "images", attached in submission order.
func (s *Server) handlePublishListing(w http.ResponseWriter, r *http.Request) {
	auth := authFromContext(r.Context())

	if err := r.ParseMultipartForm(maxPublishFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	draft, err := draftFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var files []publish.File
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			part, err := header.Open()
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable image part")
				return
			}
			defer part.Close()
			files = append(files, publish.File{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        part,
			})
		}
	}

	listing, err := s.pipeline.Publish(r.Context(), auth.Identity, auth.Org, auth.OrgState, draft, files)
	if err != nil {
		if decision, ok := publish.IsNotAllowed(err); ok {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"error":  decision.Message(),
				"reason": string(decision.Reason),
			})
			return
		}
		if errors.Is(err, publish.ErrTooManyFiles) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Mid-upload failures leave the listing with a partial image
		// set; the raw error text is the caller's only diagnostic.
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("client_ip", internalhttp.ClientIPFromContext(r.Context())).
			Msg("Publication failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	assets, err := s.cfg.Assets.ListByListing(r.Context(), listing.ListingID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to fetch images for created listing")
		assets = nil
	}

	writeJSON(w, http.StatusCreated, toListingResponse(listing, assets))
}

func draftFromForm(r *http.Request) (publish.Draft, error) {
	draft := publish.Draft{
		Title:        r.FormValue("title"),
		Type:         r.FormValue("type"),
		CEP:          r.FormValue("cep"),
		Address:      r.FormValue("address"),
		Neighborhood: r.FormValue("neighborhood"),
		Description:  r.FormValue("description"),
	}

	if draft.Title == "" {
		return draft, errors.New("title is required")
	}
	if draft.Type == "" {
		return draft, errors.New("type is required")
	}

	var err error
	if draft.Price, err = strconv.ParseInt(r.FormValue("price"), 10, 64); err != nil {
		return draft, errors.New("price must be an integer")
	}
	if draft.Area, err = strconv.ParseInt(r.FormValue("area"), 10, 64); err != nil {
		return draft, errors.New("area must be an integer")
	}

	if draft.Bedrooms, err = optionalCount(r, "bedrooms"); err != nil {
		return draft, err
	}
	if draft.Bathrooms, err = optionalCount(r, "bathrooms"); err != nil {
		return draft, err
	}
	if draft.Parking, err = optionalCount(r, "parking_spaces"); err != nil {
		return draft, err
	}

	if tour := r.FormValue("tour_360_url"); tour != "" {
		draft.Tour360URL = &tour
	}

	return draft, nil
}

func optionalCount(r *http.Request, field string) (*int32, error) {
	value := r.FormValue(field)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return nil, errors.New(field + " must be an integer")
	}
	count := int32(n)
	return &count, nil
}
