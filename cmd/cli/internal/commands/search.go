package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/imovia/imovia/internal/logger"
	"github.com/imovia/imovia/internal/search"
)

type SearchCmd struct {
	Query string     `arg:"" optional:"" help:"Search term matched against neighborhood, title and type"`
	Store StoreFlags `embed:""`
}

func (c *SearchCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Setup(globals.Debug)

	st, err := buildStores(ctx, c.Store)
	if err != nil {
		return err
	}
	defer st.close()

	listings, err := st.listings.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list listings: %w", err)
	}

	listings = search.Filter(listings, c.Query)
	if len(listings) == 0 {
		fmt.Println("No listings found.")
		return nil
	}

	for _, listing := range listings {
		details := []string{listing.Type, listing.Neighborhood, fmt.Sprintf("R$ %d", listing.Price)}
		fmt.Printf("%s  %s\n    %s\n", listing.ListingID, listing.Title, strings.Join(details, " · "))
	}
	fmt.Printf("\n%d listing(s)\n", len(listings))
	return nil
}
