// Package synthesis generates the natural-language product recommendation
// from retrieved items. One generation routine serves both retrieval paths;
// only the item context differs.
package synthesis

import (
	"fmt"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/retrieval"
)

// ContextItem is one retrieved item rendered for the prompt. Resolved items
// carry full catalog facts; unresolved ids (possible on the keyword path)
// carry only what the listing showed.
type ContextItem struct {
	ID         string
	Name       string
	Family     string
	Price      float64
	InStock    bool
	Sizes      []string
	Attributes []string // "name: value" lines, attribute name ascending
	Resolved   bool
}

// BuildContext renders retrieved items into prompt context, preserving rank
// order.
func BuildContext(cat *catalog.Catalog, items []retrieval.ScoredItem) []ContextItem {
	out := make([]ContextItem, 0, len(items))
	for _, it := range items {
		item, ok := cat.Get(it.ID)
		if !ok {
			out = append(out, ContextItem{ID: it.ID, Name: it.Name})
			continue
		}

		ci := ContextItem{
			ID:       item.ID,
			Name:     item.DisplayName(),
			Family:   item.Family,
			Price:    item.Price,
			InStock:  item.InStock,
			Sizes:    item.AvailableSizes,
			Resolved: true,
		}
		for _, name := range item.AttributeNames() {
			ci.Attributes = append(ci.Attributes, fmt.Sprintf("%s: %s", name, item.Attributes[name].Text()))
		}
		out = append(out, ci)
	}
	return out
}

// RenderItems formats context items as the prompt block shared by the
// synthesizer and the judge.
func RenderItems(items []ContextItem) string {
	if len(items) == 0 {
		return "(no items retrieved)"
	}

	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] %s", it.ID, it.Name)
		if !it.Resolved {
			b.WriteString(" (listing only, no catalog record)\n")
			continue
		}
		fmt.Fprintf(&b, "\n  price: $%.2f\n  in stock: %t", it.Price, it.InStock)
		if it.Family != "" {
			fmt.Fprintf(&b, "\n  type: %s", it.Family)
		}
		if len(it.Sizes) > 0 {
			fmt.Fprintf(&b, "\n  available sizes: %s", strings.Join(it.Sizes, ", "))
		}
		for _, attr := range it.Attributes {
			fmt.Fprintf(&b, "\n  %s", attr)
		}
		b.WriteString("\n")
	}
	return b.String()
}
