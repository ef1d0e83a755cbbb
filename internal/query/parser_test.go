package query

import (
	"reflect"
	"testing"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

func testParser(t *testing.T) *Parser {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{
			ID: "s1", Brand: "AeroStride", Name: "Apex", Family: "trail",
			Price: 150, InStock: true,
			Attributes: map[string]catalog.AttrValue{
				"waterproof": catalog.Bool(true),
				"quick_dry":  catalog.Bool(true),
			},
		},
		{
			ID: "s2", Brand: "CloudTrail", Name: "Drift", Family: "road",
			Price: 120, InStock: true,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewParser(SchemaFromCatalog(cat), logger.Nop())
}

func TestParseBudget(t *testing.T) {
	p := testParser(t)

	tests := []struct {
		text    string
		wantMax float64
		wantMin float64
	}{
		{"shoes under $150", 150, 0},
		{"shoes below 99.99", 99.99, 0},
		{"shoes up to $200", 200, 0},
		{"my budget is 175", 175, 0},
		{"no more than $80", 80, 0},
		{"shoes over $100", 0, 100},
		{"at least 50 dollars", 0, 50},
		{"between $100 and $250", 250, 100},
		{"between 250 and 100", 250, 100}, // reversed bounds normalize
		{"just some shoes", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			u := p.Parse(tt.text)

			if tt.wantMax == 0 && u.MaxPrice != nil {
				t.Errorf("MaxPrice = %v, want none", *u.MaxPrice)
			}
			if tt.wantMax != 0 && (u.MaxPrice == nil || *u.MaxPrice != tt.wantMax) {
				t.Errorf("MaxPrice = %v, want %v", u.MaxPrice, tt.wantMax)
			}
			if tt.wantMin == 0 && u.MinPrice != nil {
				t.Errorf("MinPrice = %v, want none", *u.MinPrice)
			}
			if tt.wantMin != 0 && (u.MinPrice == nil || *u.MinPrice != tt.wantMin) {
				t.Errorf("MinPrice = %v, want %v", u.MinPrice, tt.wantMin)
			}
		})
	}
}

func TestParseBrandAndFamily(t *testing.T) {
	p := testParser(t)

	u := p.Parse("AeroStride trail shoes")
	if u.Brand != "AeroStride" {
		t.Errorf("Brand = %q, want AeroStride", u.Brand)
	}
	if u.Family != "trail" {
		t.Errorf("Family = %q, want trail", u.Family)
	}

	u = p.Parse("comfortable road shoes")
	if u.Brand != "" {
		t.Errorf("Brand = %q, want none", u.Brand)
	}
	if u.Family != "road" {
		t.Errorf("Family = %q, want road", u.Family)
	}
}

func TestParseFeatures(t *testing.T) {
	p := testParser(t)

	u := p.Parse("waterproof quick dry trail shoes")
	want := []string{"quick_dry", "waterproof"}
	if !reflect.DeepEqual(u.Features, want) {
		t.Errorf("Features = %v, want %v", u.Features, want)
	}

	// "waterproofing" must not match on a word boundary.
	u = p.Parse("no waterproofing needed")
	if len(u.Features) != 0 {
		t.Errorf("Features = %v, want none", u.Features)
	}
}

func TestParseKeywords(t *testing.T) {
	p := testParser(t)

	u := p.Parse("I am looking for some waterproof trail shoes!")
	want := []string{"am", "waterproof", "trail", "shoes"}
	if !reflect.DeepEqual(u.Keywords, want) {
		t.Errorf("Keywords = %v, want %v", u.Keywords, want)
	}
}

func TestConstraints(t *testing.T) {
	p := testParser(t)

	u := p.Parse("waterproof AeroStride trail shoes under $150")
	c := u.Constraints()

	if mp, _ := c["max_price"].AsNumber(); mp != 150 {
		t.Errorf("max_price = %v, want 150", mp)
	}
	if b, _ := c["brand"].AsString(); b != "AeroStride" {
		t.Errorf("brand = %v, want AeroStride", b)
	}
	if typ, _ := c["type"].AsString(); typ != "trail" {
		t.Errorf("type = %v, want trail", typ)
	}
	if wp, _ := c["waterproof"].AsBool(); !wp {
		t.Error("waterproof constraint missing")
	}

	if got := p.Parse("anything nice").Constraints(); got != nil {
		t.Errorf("constraint-free query produced %v", got)
	}
}
