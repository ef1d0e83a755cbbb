// Package query provides rule-based shopping-query understanding: keyword
// extraction plus budget, brand, type, and feature detection against a
// catalog-derived schema. Derived constraints serve ad-hoc queries that carry
// no ground truth; a dataset's required_attributes always win.
package query

import (
	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// Understanding is the parsed form of one shopping query.
type Understanding struct {
	Original   string
	Normalized string
	Keywords   []string

	MaxPrice *float64
	MinPrice *float64
	Brand    string
	Family   string
	Features []string // bool attribute names the shopper asked for
}

// Constraints renders the understanding as filter constraints. Detected
// features become true-valued bool constraints.
func (u *Understanding) Constraints() map[string]catalog.AttrValue {
	out := make(map[string]catalog.AttrValue)

	if u.MaxPrice != nil {
		out["max_price"] = catalog.Number(*u.MaxPrice)
	}
	if u.MinPrice != nil {
		out["min_price"] = catalog.Number(*u.MinPrice)
	}
	if u.Family != "" {
		out["type"] = catalog.String(u.Family)
	}
	if u.Brand != "" {
		out["brand"] = catalog.String(u.Brand)
	}
	for _, f := range u.Features {
		out[f] = catalog.Bool(true)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
