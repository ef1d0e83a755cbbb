package dataset

import (
	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// Default returns the built-in query set used when no dataset file is
// configured. The queries cover the constraint shapes the hybrid filter
// supports; they carry no golden expectations, so runs over them benchmark
// retrieval and response quality only.
func Default() *Dataset {
	return &Dataset{Queries: []Query{
		{
			ID:   "default-001",
			Text: "waterproof trail running shoes under $150",
			RequiredAttributes: map[string]catalog.AttrValue{
				"waterproof": catalog.Bool(true),
				"max_price":  catalog.Number(150),
			},
		},
		{
			ID:   "default-002",
			Text: "lightweight breathable road running shoes",
		},
		{
			ID:   "default-003",
			Text: "in-stock hiking boots between $100 and $250",
			RequiredAttributes: map[string]catalog.AttrValue{
				"in_stock":  catalog.Bool(true),
				"min_price": catalog.Number(100),
				"max_price": catalog.Number(250),
			},
		},
		{
			ID:   "default-004",
			Text: "warm winter jacket for hiking",
			RequiredAttributes: map[string]catalog.AttrValue{
				"category": catalog.String("hiking"),
			},
		},
		{
			ID:   "default-005",
			Text: "casual leather shoes for the office under $120",
			RequiredAttributes: map[string]catalog.AttrValue{
				"max_price": catalog.Number(120),
			},
		},
		{
			ID:   "default-006",
			Text: "budget trail shoes with good grip",
		},
	}}
}
