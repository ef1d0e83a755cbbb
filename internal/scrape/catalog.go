package scrape

import (
	"context"
	"fmt"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// CatalogSource derives listings from the catalog itself. This is the default
// offline source: it simulates what a scraper would see on listing pages,
// without a live site or a captured dump.
type CatalogSource struct {
	cat *catalog.Catalog
}

// NewCatalogSource creates a catalog-derived listing source.
func NewCatalogSource(cat *catalog.Catalog) *CatalogSource {
	return &CatalogSource{cat: cat}
}

// Name identifies the source.
func (s *CatalogSource) Name() string {
	return "catalog"
}

// Fetch renders one listing per catalog item, in ascending id order.
func (s *CatalogSource) Fetch(ctx context.Context) ([]Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := s.cat.Items()
	listings := make([]Listing, 0, len(items))
	for _, item := range items {
		listings = append(listings, Listing{
			ItemID:    item.ID,
			Name:      item.DisplayName(),
			PriceText: fmt.Sprintf("$%.2f", item.Price),
			FullText:  listingText(item),
		})
	}
	return listings, nil
}

// listingText approximates the visible text of a product card: name, price,
// stock line, and attribute values.
func listingText(item *catalog.Item) string {
	var b strings.Builder
	b.WriteString(item.DisplayName())
	fmt.Fprintf(&b, " $%.2f", item.Price)
	if item.InStock {
		b.WriteString(" in stock")
	} else {
		b.WriteString(" out of stock")
	}
	if item.Family != "" {
		b.WriteString(" ")
		b.WriteString(item.Family)
	}
	for _, name := range item.AttributeNames() {
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(item.Attributes[name].Text())
	}
	if len(item.AvailableSizes) > 0 {
		b.WriteString(" sizes ")
		b.WriteString(strings.Join(item.AvailableSizes, " "))
	}
	return b.String()
}
