package retrieval

import (
	"testing"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/triples"
)

func threeShoeCatalog(t *testing.T) (*catalog.Catalog, *triples.Store) {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{
			ID: "s1", Brand: "Peak", Name: "Ridgeline", Family: "footwear",
			Price: 149.99, InStock: true,
			Attributes: map[string]catalog.AttrValue{
				"type":       catalog.String("trail"),
				"waterproof": catalog.Bool(true),
			},
		},
		{
			ID: "s2", Brand: "Peak", Name: "Summit Pro", Family: "footwear",
			Price: 189.00, InStock: true,
			Attributes: map[string]catalog.AttrValue{
				"type":       catalog.String("trail"),
				"waterproof": catalog.Bool(true),
			},
		},
		{
			ID: "s3", Brand: "Urban", Name: "Pavement", Family: "footwear",
			Price: 99.00, InStock: true,
			Attributes: map[string]catalog.AttrValue{
				"type":       catalog.String("road"),
				"waterproof": catalog.Bool(false),
			},
		},
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat, triples.BuildFromCatalog(cat)
}

func TestSatisfiesFiltersCorrectly(t *testing.T) {
	_, store := threeShoeCatalog(t)

	constraints := map[string]catalog.AttrValue{
		"type":       catalog.String("trail"),
		"waterproof": catalog.Bool(true),
		"max_price":  catalog.Number(200),
	}

	want := map[string]bool{"s1": true, "s2": true, "s3": false}
	for id, expect := range want {
		got := Satisfies(store.Enrich(id), constraints)
		if got != expect {
			t.Errorf("Satisfies(%s) = %v, want %v", id, got, expect)
		}
	}
}

func TestSatisfiesPriceBounds(t *testing.T) {
	_, store := threeShoeCatalog(t)

	tests := []struct {
		name        string
		constraints map[string]catalog.AttrValue
		id          string
		want        bool
	}{
		{"under max", map[string]catalog.AttrValue{"max_price": catalog.Number(150)}, "s1", true},
		{"at max", map[string]catalog.AttrValue{"max_price": catalog.Number(149.99)}, "s1", true},
		{"over max", map[string]catalog.AttrValue{"max_price": catalog.Number(100)}, "s1", false},
		{"above min", map[string]catalog.AttrValue{"min_price": catalog.Number(100)}, "s2", true},
		{"below min", map[string]catalog.AttrValue{"min_price": catalog.Number(100)}, "s3", false},
		{"band", map[string]catalog.AttrValue{"min_price": catalog.Number(100), "max_price": catalog.Number(160)}, "s1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Satisfies(store.Enrich(tt.id), tt.constraints)
			if got != tt.want {
				t.Errorf("Satisfies(%s, %v) = %v, want %v", tt.id, tt.constraints, got, tt.want)
			}
		})
	}
}

func TestSatisfiesKindMismatchExcludes(t *testing.T) {
	_, store := threeShoeCatalog(t)

	// waterproof is a bool on the item; a string constraint must exclude, not
	// coerce.
	constraints := map[string]catalog.AttrValue{
		"waterproof": catalog.String("true"),
	}
	if Satisfies(store.Enrich("s1"), constraints) {
		t.Error("string constraint against bool attribute should exclude the item")
	}
}

func TestSatisfiesMissingAttributeExcludes(t *testing.T) {
	_, store := threeShoeCatalog(t)

	constraints := map[string]catalog.AttrValue{
		"cushioning": catalog.String("max"),
	}
	if Satisfies(store.Enrich("s1"), constraints) {
		t.Error("constraint on an absent attribute should exclude the item")
	}
}

func TestSatisfiesStringCaseInsensitive(t *testing.T) {
	_, store := threeShoeCatalog(t)

	constraints := map[string]catalog.AttrValue{
		"type": catalog.String("TRAIL"),
	}
	if !Satisfies(store.Enrich("s1"), constraints) {
		t.Error("string constraints should match case-insensitively")
	}
}

func TestSatisfiesCategory(t *testing.T) {
	cat, err := catalog.New([]catalog.Item{
		{
			ID: "c1", Name: "Alpine Jacket", Family: "outerwear", Price: 250, InStock: true,
			Attributes: map[string]catalog.AttrValue{
				"categories": catalog.List(catalog.String("hiking"), catalog.String("winter")),
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	store := triples.BuildFromCatalog(cat)

	if !Satisfies(store.Enrich("c1"), map[string]catalog.AttrValue{
		"category": catalog.String("Hiking"),
	}) {
		t.Error("category constraint should match a has_category fact")
	}
	if Satisfies(store.Enrich("c1"), map[string]catalog.AttrValue{
		"category": catalog.String("running"),
	}) {
		t.Error("absent category should exclude the item")
	}
}

func TestSatisfiesEmptyConstraints(t *testing.T) {
	_, store := threeShoeCatalog(t)
	if !Satisfies(store.Enrich("s3"), nil) {
		t.Error("empty constraints should keep every item")
	}
}
