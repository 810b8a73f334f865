package commands

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/imovia/imovia/internal/logger"
	"github.com/imovia/imovia/internal/publish"
)

type PublishCmd struct {
	Title        string   `help:"listing title" required:""`
	Type         string   `help:"property type (apartamento, casa, terreno, ...)" required:""`
	Price        int64    `help:"price in whole currency units" required:""`
	Area         int64    `help:"area in square meters" required:""`
	Bedrooms     *int32   `help:"number of bedrooms"`
	Bathrooms    *int32   `help:"number of bathrooms"`
	Parking      *int32   `help:"number of parking spaces"`
	CEP          string   `help:"postal code"`
	Address      string   `help:"street address"`
	Neighborhood string   `help:"neighborhood"`
	Description  string   `help:"free-form description"`
	Tour360URL   string   `help:"virtual tour URL" name:"tour-360-url"`
	Images       []string `help:"image file to attach, in display order (repeatable, up to 6)" name:"image" type:"existingfile"`

	Auth    AuthFlags    `embed:""`
	Store   StoreFlags   `embed:""`
	Storage StorageFlags `embed:""`
}

func (c *PublishCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	st, err := buildStores(ctx, c.Store)
	if err != nil {
		return err
	}
	defer st.close()

	blobs, err := buildBlobStore(ctx, c.Storage)
	if err != nil {
		return fmt.Errorf("failed to create blob store: %w", err)
	}

	manager, err := startSession(ctx, c.Auth, st)
	if err != nil {
		return err
	}
	defer manager.Stop()

	draft := publish.Draft{
		Title:        c.Title,
		Type:         c.Type,
		Price:        c.Price,
		Area:         c.Area,
		Bedrooms:     c.Bedrooms,
		Bathrooms:    c.Bathrooms,
		Parking:      c.Parking,
		CEP:          c.CEP,
		Address:      c.Address,
		Neighborhood: c.Neighborhood,
		Description:  c.Description,
	}
	if c.Tour360URL != "" {
		draft.Tour360URL = &c.Tour360URL
	}

	var files []publish.File
	for _, path := range c.Images {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open image %s: %w", path, err)
		}
		defer f.Close()

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		files = append(files, publish.File{
			Name:        filepath.Base(path),
			ContentType: contentType,
			Body:        f,
		})
	}

	snap := manager.Snapshot()
	pipeline := publish.NewPipeline(st.listings, st.assets, blobs)

	listing, err := pipeline.Publish(ctx, snap.Identity, snap.Org, snap.OrgState, draft, files)
	if err != nil {
		if decision, ok := publish.IsNotAllowed(err); ok {
			return fmt.Errorf("not allowed: %s", decision.Message())
		}
		return err
	}

	fmt.Printf("Published %s (%s) with %d image(s)\n", listing.Title, listing.ListingID, len(files))
	return nil
}
