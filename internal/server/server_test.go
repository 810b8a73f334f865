package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/imovia/imovia/internal/logger"
	"github.com/imovia/imovia/internal/models"
	memorystore "github.com/imovia/imovia/internal/store/memory"
)

// testEnv wires the full HTTP stack over memory stores with a scripted
// token-to-identity map standing in for the identity provider.
type testEnv struct {
	server   *httptest.Server
	tokens   map[string]*models.Identity
	orgs     *memorystore.OrganizationStore
	listings *memorystore.ListingStore
	blobs    *memorystore.BlobStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tokens:   map[string]*models.Identity{},
		orgs:     memorystore.NewOrganizationStore(),
		listings: memorystore.NewListingStore(),
		blobs:    memorystore.NewBlobStore("https://images.test"),
	}

	sessions := func(ctx context.Context, accessToken string) (*models.Identity, error) {
		return env.tokens[accessToken], nil
	}

	srv := NewServer(Config{
		Sessions: sessions,
		Orgs:     env.orgs,
		Links:    memorystore.NewTenantLinkStore(),
		Listings: env.listings,
		Assets:   memorystore.NewListingAssetStore(),
		Blobs:    env.blobs,
	})

	env.server = httptest.NewServer(srv.Handler(logger.Setup(false)))
	t.Cleanup(env.server.Close)

	return env
}

func (e *testEnv) signIn(email string) string {
	token := "token-" + uuid.New().String()
	e.tokens[token] = &models.Identity{
		ID:          uuid.Must(uuid.NewV7()),
		Email:       email,
		AccessToken: token,
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) registerOrg(t *testing.T, token, name string) organizationResponse {
	t.Helper()

	body := fmt.Sprintf(`{"name":%q,"cnpj":"12.345.678/0001-90","phone":"+55 11 91234-5678","email":"contato@premium.com.br","address":"Av. Paulista 1000, São Paulo"}`, name)
	resp, data := e.do(t, http.MethodPost, "/api/organizations", token, strings.NewReader(body), "application/json")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var org organizationResponse
	require.NoError(t, json.Unmarshal(data, &org))
	return org
}

func (e *testEnv) approveOrg(t *testing.T, orgID string) {
	t.Helper()
	id, err := uuid.Parse(orgID)
	require.NoError(t, err)
	require.NoError(t, e.orgs.SetStatus(context.Background(), id, models.OrganizationStatusApproved))
}

// publishForm builds a multipart publication request with the given
// image filenames.
func publishForm(t *testing.T, title, neighborhood string, imageNames ...string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":        title,
		"type":         "apartamento",
		"price":        "850000",
		"area":         "120",
		"bedrooms":     "3",
		"cep":          "01310-100",
		"address":      "Av. Paulista 1000",
		"neighborhood": neighborhood,
		"description":  "Apartamento reformado com vista livre",
	}
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	for i, name := range imageNames {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fmt.Fprintf(part, "image-bytes-%d", i+1)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.do(t, http.MethodGet, "/health", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, string(data))
}

func TestSession(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		env := newTestEnv(t)

		resp, data := env.do(t, http.MethodGet, "/api/session", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var session sessionResponse
		require.NoError(t, json.Unmarshal(data, &session))
		require.False(t, session.Authenticated)
		require.False(t, session.CanPublish)
		require.Equal(t, "sign_in_required", session.Reason)
	})

	t.Run("signed in without organization", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")

		resp, data := env.do(t, http.MethodGet, "/api/session", token, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var session sessionResponse
		require.NoError(t, json.Unmarshal(data, &session))
		require.True(t, session.Authenticated)
		require.False(t, session.CanPublish)
		require.Equal(t, "no_organization", session.Reason)
		require.Nil(t, session.Organization)
	})

	t.Run("pending organization cannot publish yet", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")
		env.registerOrg(t, token, "Premium Imóveis")

		resp, data := env.do(t, http.MethodGet, "/api/session", token, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var session sessionResponse
		require.NoError(t, json.Unmarshal(data, &session))
		require.True(t, session.Authenticated)
		require.False(t, session.CanPublish)
		require.Equal(t, "pending_approval", session.Reason)
		require.NotNil(t, session.Organization)
		require.Equal(t, "pending", session.Organization.Status)
	})

	t.Run("approved organization can publish", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")
		org := env.registerOrg(t, token, "Premium Imóveis")
		env.approveOrg(t, org.ID)

		resp, data := env.do(t, http.MethodGet, "/api/session", token, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var session sessionResponse
		require.NoError(t, json.Unmarshal(data, &session))
		require.True(t, session.CanPublish)
		require.Equal(t, "allowed", session.Reason)
	})
}

func TestRegisterOrganization(t *testing.T) {
	t.Run("requires sign in", func(t *testing.T) {
		env := newTestEnv(t)

		resp, _ := env.do(t, http.MethodPost, "/api/organizations", "",
			strings.NewReader(`{"name":"Premium Imóveis","cnpj":"1","email":"a@b.c"}`), "application/json")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects a second registration for the same identity", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")
		env.registerOrg(t, token, "Premium Imóveis")

		resp, data := env.do(t, http.MethodPost, "/api/organizations", token,
			strings.NewReader(`{"name":"Outra Imobiliária","cnpj":"2","email":"x@y.z"}`), "application/json")
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Contains(t, string(data), "already belongs")
	})

	t.Run("validates required fields", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")

		resp, data := env.do(t, http.MethodPost, "/api/organizations", token,
			strings.NewReader(`{"cnpj":"1","email":"a@b.c"}`), "application/json")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, string(data), "name is required")
	})
}

func TestPublishListing(t *testing.T) {
	t.Run("success with ordered images", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")
		org := env.registerOrg(t, token, "Premium Imóveis")
		env.approveOrg(t, org.ID)

		body, contentType := publishForm(t, "Apartamento na Paulista", "Bela Vista", "frente.jpg", "sala.png", "vista.jpg")
		resp, data := env.do(t, http.MethodPost, "/api/listings", token, body, contentType)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

		var listing listingResponse
		require.NoError(t, json.Unmarshal(data, &listing))
		require.Equal(t, org.ID, listing.OrgID)
		require.Equal(t, "active", listing.Status)
		require.Len(t, listing.Images, 3)
		for i, img := range listing.Images {
			require.Equal(t, int32(i+1), img.DisplayOrder)
			require.True(t, strings.HasPrefix(img.URL, "https://images.test/"))
		}
		require.Equal(t, 3, env.blobs.Len())
	})

	t.Run("denied while pending approval", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")
		env.registerOrg(t, token, "Premium Imóveis")

		body, contentType := publishForm(t, "Apartamento", "Centro", "frente.jpg")
		resp, data := env.do(t, http.MethodPost, "/api/listings", token, body, contentType)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Contains(t, string(data), "pending_approval")
		require.Zero(t, env.blobs.Len())
	})

	t.Run("denied when signed out", func(t *testing.T) {
		env := newTestEnv(t)

		body, contentType := publishForm(t, "Apartamento", "Centro", "frente.jpg")
		resp, data := env.do(t, http.MethodPost, "/api/listings", "", body, contentType)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.Contains(t, string(data), "sign_in_required")
	})

	t.Run("rejects more than six images", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")
		org := env.registerOrg(t, token, "Premium Imóveis")
		env.approveOrg(t, org.ID)

		names := make([]string, 7)
		for i := range names {
			names[i] = fmt.Sprintf("foto-%d.jpg", i+1)
		}
		body, contentType := publishForm(t, "Apartamento", "Centro", names...)
		resp, data := env.do(t, http.MethodPost, "/api/listings", token, body, contentType)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, string(data), "at most 6 images")
		require.Zero(t, env.blobs.Len())
	})

	t.Run("rejects invalid price", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.signIn("corretor@premium.com.br")
		org := env.registerOrg(t, token, "Premium Imóveis")
		env.approveOrg(t, org.ID)

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("title", "Apartamento"))
		require.NoError(t, mw.WriteField("type", "apartamento"))
		require.NoError(t, mw.WriteField("price", "oito mil"))
		require.NoError(t, mw.Close())

		resp, data := env.do(t, http.MethodPost, "/api/listings", token, &buf, mw.FormDataContentType())
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, string(data), "price must be an integer")
	})
}

func TestListAndGetListings(t *testing.T) {
	env := newTestEnv(t)
	token := env.signIn("corretor@premium.com.br")
	org := env.registerOrg(t, token, "Premium Imóveis")
	env.approveOrg(t, org.ID)

	publish := func(title, neighborhood string) listingResponse {
		body, contentType := publishForm(t, title, neighborhood, "frente.jpg")
		resp, data := env.do(t, http.MethodPost, "/api/listings", token, body, contentType)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
		var listing listingResponse
		require.NoError(t, json.Unmarshal(data, &listing))
		return listing
	}

	paulista := publish("Apartamento na Paulista", "Bela Vista")
	publish("Casa com quintal", "Vila Madalena")

	t.Run("lists all active listings", func(t *testing.T) {
		resp, data := env.do(t, http.MethodGet, "/api/listings", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listings []listingResponse
		require.NoError(t, json.Unmarshal(data, &listings))
		require.Len(t, listings, 2)
	})

	t.Run("filters by neighborhood substring", func(t *testing.T) {
		resp, data := env.do(t, http.MethodGet, "/api/listings?q=madalena", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listings []listingResponse
		require.NoError(t, json.Unmarshal(data, &listings))
		require.Len(t, listings, 1)
		require.Equal(t, "Casa com quintal", listings[0].Title)
	})

	t.Run("filters by title substring", func(t *testing.T) {
		resp, data := env.do(t, http.MethodGet, "/api/listings?q=paulista", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listings []listingResponse
		require.NoError(t, json.Unmarshal(data, &listings))
		require.Len(t, listings, 1)
	})

	t.Run("no match returns empty list", func(t *testing.T) {
		resp, data := env.do(t, http.MethodGet, "/api/listings?q=copacabana", "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `[]`, string(data))
	})

	t.Run("get returns listing with images", func(t *testing.T) {
		resp, data := env.do(t, http.MethodGet, "/api/listings/"+paulista.ID, "", nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var listing listingResponse
		require.NoError(t, json.Unmarshal(data, &listing))
		require.Equal(t, paulista.ID, listing.ID)
		require.Len(t, listing.Images, 1)
	})

	t.Run("get unknown listing is 404", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, "/api/listings/"+uuid.Must(uuid.NewV7()).String(), "", nil, "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("get with malformed id is 400", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodGet, "/api/listings/not-a-uuid", "", nil, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
