package retrieval

import (
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/triples"
)

// Constraint keys with range semantics. Every other key is an exact attribute
// match against the item's enriched facts.
const (
	ConstraintMaxPrice = "max_price"
	ConstraintMinPrice = "min_price"
	ConstraintCategory = "category"
)

// Satisfies reports whether an item's enriched facts satisfy every
// constraint. Filtering is hard: one failed constraint excludes the item.
// A constraint whose kind does not match the item's attribute kind excludes
// the item rather than coercing.
func Satisfies(facts triples.Facts, constraints map[string]catalog.AttrValue) bool {
	for key, want := range constraints {
		if !satisfiesOne(facts, key, want) {
			return false
		}
	}
	return true
}

func satisfiesOne(facts triples.Facts, key string, want catalog.AttrValue) bool {
	switch key {
	case ConstraintMaxPrice:
		bound, err := want.AsNumber()
		if err != nil {
			return false
		}
		price, ok := facts.Attributes["price"]
		if !ok {
			return false
		}
		p, err := price.AsNumber()
		return err == nil && p <= bound

	case ConstraintMinPrice:
		bound, err := want.AsNumber()
		if err != nil {
			return false
		}
		price, ok := facts.Attributes["price"]
		if !ok {
			return false
		}
		p, err := price.AsNumber()
		return err == nil && p >= bound

	case ConstraintCategory:
		c, err := want.AsString()
		if err != nil {
			return false
		}
		for _, have := range facts.Categories {
			if strings.EqualFold(have, c) {
				return true
			}
		}
		return false
	}

	have, ok := facts.Attributes[key]
	if !ok {
		return false
	}
	if have.Kind != want.Kind {
		return false
	}

	// String attributes match case-insensitively; everything else is an exact
	// typed comparison.
	if want.Kind == catalog.KindString {
		w, _ := want.AsString()
		h, _ := have.AsString()
		return strings.EqualFold(h, w)
	}
	return have.Equal(want)
}
