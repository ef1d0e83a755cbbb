// Package ingest builds the retrieval substrate from the catalog: one text
// projection per item embedded into the vector index, plus the triple store.
package ingest

import (
	"fmt"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// Projection renders the text that stands in for an item in embedding space.
// The phrasing is stable: re-ingesting an unchanged catalog must produce
// identical vectors.
func Projection(item *catalog.Item) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Product %s is a %s item.", item.ID, item.Family)
	if item.Brand != "" {
		fmt.Fprintf(&sb, " Made by %s.", item.Brand)
	}
	if item.Name != "" {
		fmt.Fprintf(&sb, " Named %q.", item.Name)
	}

	if names := item.AttributeNames(); len(names) > 0 {
		sb.WriteString(" Attributes:")
		for i, name := range names {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, " %s is %s", name, item.Attributes[name].Text())
		}
		sb.WriteString(".")
	}

	fmt.Fprintf(&sb, " Priced at $%.2f.", item.Price)
	if item.InStock {
		sb.WriteString(" Currently in stock.")
	} else {
		sb.WriteString(" Currently out of stock.")
	}
	if len(item.AvailableSizes) > 0 {
		fmt.Fprintf(&sb, " Available sizes: %s.", strings.Join(item.AvailableSizes, ", "))
	}

	return sb.String()
}
