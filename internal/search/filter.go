package search

import (
	"strings"

	"github.com/imovia/imovia/internal/models"
)

// Filter performs a linear, case-insensitive substring match over a
// listing collection. A listing matches when any of neighborhood, title
// or type contains the query. A blank or whitespace-only query returns
// the input unchanged. Order is always preserved.
func Filter(listings []*models.Listing, query string) []*models.Listing {
	query = strings.TrimSpace(query)
	if query == "" {
		return listings
	}

	q := strings.ToLower(query)

	var result []*models.Listing
	for _, listing := range listings {
		if strings.Contains(strings.ToLower(listing.Neighborhood), q) ||
			strings.Contains(strings.ToLower(listing.Title), q) ||
			strings.Contains(strings.ToLower(listing.Type), q) {
			result = append(result, listing)
		}
	}

	return result
}
