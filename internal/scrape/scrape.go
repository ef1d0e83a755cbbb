// Package scrape consumes the scraping collaborator that supplies raw item
// listings for the keyword baseline. The listings are candidate-generation
// input only; fact-checking always goes through the catalog.
package scrape

import (
	"context"
)

// Listing is one scraped item record, in scrape order. ItemID is present
// when the listed page exposes the catalog id; when absent the keyword
// retriever resolves the listing by name against the catalog.
type Listing struct {
	ItemID    string `json:"item_id,omitempty"`
	Name      string `json:"name"`
	PriceText string `json:"price_text"`
	FullText  string `json:"full_text"`
}

// Source supplies the current listings.
type Source interface {
	// Fetch returns all currently listed items in scrape order.
	Fetch(ctx context.Context) ([]Listing, error)

	// Name identifies the source for logs and preflight messages.
	Name() string
}
