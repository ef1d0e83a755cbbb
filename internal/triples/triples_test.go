package triples

import (
	"reflect"
	"testing"

	"github.com/shelfsearch/shelf-search/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New([]catalog.Item{
		{
			ID:      "SHOE-001",
			Brand:   "AeroStride",
			Name:    "Apex Trail",
			Family:  "trail",
			Price:   189.50,
			InStock: true,
			Attributes: map[string]catalog.AttrValue{
				"waterproof": catalog.Bool(true),
				"categories": catalog.List(catalog.String("Running"), catalog.String("Outdoor")),
			},
		},
		{
			ID:      "SHOE-002",
			Brand:   "CloudTrail",
			Name:    "Drift 2",
			Family:  "road",
			Price:   149.99,
			InStock: false,
			Attributes: map[string]catalog.AttrValue{
				"waterproof": catalog.Bool(false),
				"categories": catalog.List(catalog.String("Running")),
			},
		},
		{
			ID:     "SHOE-003",
			Brand:  "FleetStep",
			Name:   "Vento",
			Family: "trail",
			Price:  120,
			Attributes: map[string]catalog.AttrValue{
				"waterproof": catalog.Bool(true),
			},
		},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func TestBuildFromCatalog(t *testing.T) {
	s := BuildFromCatalog(testCatalog(t))

	// 3 is_a + 3 has_category + 3 waterproof + 3 price + 3 in_stock + 3 brand
	if got := s.Len(); got != 18 {
		t.Errorf("Len() = %d, want 18", got)
	}
}

func TestEnrich(t *testing.T) {
	s := BuildFromCatalog(testCatalog(t))

	facts := s.Enrich("SHOE-001")

	if facts.Family != "trail" {
		t.Errorf("Family = %s, want trail", facts.Family)
	}

	if !reflect.DeepEqual(facts.Categories, []string{"Running", "Outdoor"}) {
		t.Errorf("Categories = %v, want [Running Outdoor]", facts.Categories)
	}

	wp, err := facts.Attributes["waterproof"].AsBool()
	if err != nil || !wp {
		t.Errorf("waterproof = %v, %v, want true", wp, err)
	}

	price, err := facts.Attributes["price"].AsNumber()
	if err != nil || price != 189.50 {
		t.Errorf("price = %v, %v, want 189.50", price, err)
	}

	stock, err := facts.Attributes["in_stock"].AsBool()
	if err != nil || !stock {
		t.Errorf("in_stock = %v, %v, want true", stock, err)
	}

	typ, err := facts.Attributes["type"].AsString()
	if err != nil || typ != "trail" {
		t.Errorf("type = %v, %v, want trail", typ, err)
	}
}

func TestEnrich_ZeroTriplesIsEmptyNotError(t *testing.T) {
	s := NewStore()

	facts := s.Enrich("SHOE-404")
	if !facts.Empty() {
		t.Errorf("Enrich(no triples) = %+v, want empty facts", facts)
	}
	if facts.Attributes == nil {
		t.Error("Attributes map should be non-nil even when empty")
	}
}

func TestQuery(t *testing.T) {
	s := BuildFromCatalog(testCatalog(t))

	tests := []struct {
		name      string
		predicate Predicate
		value     string
		want      []string
	}{
		{"is_a trail", IsA, "trail", []string{"SHOE-001", "SHOE-003"}},
		{"is_a road", IsA, "road", []string{"SHOE-002"}},
		{"is_a unknown", IsA, "sandal", nil},
		{"has_category Running", HasCategory, "Running", []string{"SHOE-001", "SHOE-002"}},
		{"has_category Outdoor", HasCategory, "Outdoor", []string{"SHOE-001"}},
		{"exact match only", HasCategory, "running", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Query(tt.predicate, tt.value)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Query(%s, %s) = %v, want %v", tt.predicate, tt.value, got, tt.want)
			}
		})
	}
}

func TestQueryAttribute(t *testing.T) {
	s := BuildFromCatalog(testCatalog(t))

	got := s.QueryAttribute("waterproof", catalog.Bool(true))
	want := []string{"SHOE-001", "SHOE-003"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QueryAttribute(waterproof, true) = %v, want %v", got, want)
	}

	// Typed match: the string "true" is not the bool true.
	if got := s.QueryAttribute("waterproof", catalog.String("true")); got != nil {
		t.Errorf("QueryAttribute(waterproof, \"true\") = %v, want nil", got)
	}
}

func TestQueryPredicate(t *testing.T) {
	s := BuildFromCatalog(testCatalog(t))

	got := s.QueryPredicate(HasCategory)
	want := []string{"SHOE-001", "SHOE-002"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QueryPredicate(has_category) = %v, want %v", got, want)
	}
}

func TestQueryResultsAreSorted(t *testing.T) {
	s := NewStore()
	// Insert out of order; lookups must come back ascending.
	for _, id := range []string{"Z9", "A1", "M5"} {
		s.Add(Triple{ItemID: id, Predicate: IsA, Value: catalog.String("trail")})
	}

	got := s.Query(IsA, "trail")
	want := []string{"A1", "M5", "Z9"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Query() = %v, want %v", got, want)
	}
}
