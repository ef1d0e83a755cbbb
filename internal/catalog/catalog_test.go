package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
)

func testItems() []Item {
	return []Item{
		{
			ID:             "SHOE-002",
			Brand:          "CloudTrail",
			Name:           "Drift 2",
			Family:         "Road",
			Price:          149.99,
			InStock:        true,
			AvailableSizes: []string{"8", "9", "10"},
			Attributes: map[string]AttrValue{
				"waterproof": Bool(false),
				"weight":     Number(240),
			},
		},
		{
			ID:             "SHOE-001",
			Brand:          "AeroStride",
			Name:           "Apex Trail",
			Family:         "Trail",
			Price:          189.50,
			InStock:        true,
			AvailableSizes: []string{"9", "10", "11"},
			Attributes: map[string]AttrValue{
				"waterproof": Bool(true),
				"terrain":    List(String("trail"), String("rock")),
			},
		},
	}
}

func TestNew(t *testing.T) {
	c, err := New(testItems())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	if !c.Has("SHOE-001") {
		t.Error("Has(SHOE-001) = false, want true")
	}

	item, ok := c.Get("SHOE-002")
	if !ok {
		t.Fatal("Get(SHOE-002) not found")
	}
	if item.DisplayName() != "CloudTrail Drift 2" {
		t.Errorf("DisplayName() = %s, want CloudTrail Drift 2", item.DisplayName())
	}

	if _, ok := c.Get("SHOE-999"); ok {
		t.Error("Get(SHOE-999) found, want missing")
	}
}

func TestNew_OrderIsIDAscending(t *testing.T) {
	c, err := New(testItems())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	items := c.Items()
	if items[0].ID != "SHOE-001" || items[1].ID != "SHOE-002" {
		t.Errorf("Items() order = [%s %s], want [SHOE-001 SHOE-002]", items[0].ID, items[1].ID)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
	}{
		{"empty catalog", nil},
		{"missing id", []Item{{Name: "Apex", Price: 10}}},
		{"missing name", []Item{{ID: "X1", Price: 10}}},
		{"negative price", []Item{{ID: "X1", Name: "Apex", Price: -1}}},
		{"blank size", []Item{{ID: "X1", Name: "Apex", Price: 10, AvailableSizes: []string{" "}}}},
		{
			"duplicate id",
			[]Item{
				{ID: "X1", Name: "Apex", Price: 10},
				{ID: "X1", Name: "Drift", Price: 20},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.items)
			if err == nil {
				t.Fatal("New() error = nil, want validation failure")
			}
			if !errors.IsValidation(err) {
				t.Errorf("error code = %v, want validation failure", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	data := `{
		"items": [
			{
				"id": "SHOE-001",
				"brand": "AeroStride",
				"name": "Apex Trail",
				"family": "Trail",
				"price": 189.5,
				"in_stock": true,
				"available_sizes": ["9", "10"],
				"attributes": {
					"waterproof": true,
					"weight": 285,
					"color": "black",
					"terrain": ["trail", "rock"]
				}
			}
		]
	}`

	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	item, ok := c.Get("SHOE-001")
	if !ok {
		t.Fatal("loaded item missing")
	}

	wp, err := item.Attributes["waterproof"].AsBool()
	if err != nil || !wp {
		t.Errorf("waterproof = %v, %v, want true", wp, err)
	}

	weight, err := item.Attributes["weight"].AsNumber()
	if err != nil || weight != 285 {
		t.Errorf("weight = %v, %v, want 285", weight, err)
	}

	color, err := item.Attributes["color"].AsString()
	if err != nil || color != "black" {
		t.Errorf("color = %v, %v, want black", color, err)
	}

	terrain, err := item.Attributes["terrain"].AsList()
	if err != nil || len(terrain) != 2 {
		t.Errorf("terrain = %v, %v, want 2 elements", terrain, err)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		if !errors.IsValidation(err) {
			t.Errorf("Load(missing) error = %v, want validation failure", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if !errors.IsValidation(err) {
			t.Errorf("Load(bad json) error = %v, want validation failure", err)
		}
	})
}

func TestAttrValue_KindMismatch(t *testing.T) {
	v := Number(42)

	if _, err := v.AsBool(); err == nil {
		t.Error("AsBool() on number succeeded, want explicit mismatch error")
	}
	if _, err := v.AsString(); err == nil {
		t.Error("AsString() on number succeeded, want explicit mismatch error")
	}
	if _, err := v.AsList(); err == nil {
		t.Error("AsList() on number succeeded, want explicit mismatch error")
	}
	if n, err := v.AsNumber(); err != nil || n != 42 {
		t.Errorf("AsNumber() = %v, %v, want 42", n, err)
	}
}

func TestAttrValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b AttrValue
		want bool
	}{
		{"same bool", Bool(true), Bool(true), true},
		{"different bool", Bool(true), Bool(false), false},
		{"same number", Number(1.5), Number(1.5), true},
		{"kind mismatch", Number(1), String("1"), false},
		{"same list", List(String("a"), Number(2)), List(String("a"), Number(2)), true},
		{"list length", List(String("a")), List(String("a"), String("b")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttrValue_Text(t *testing.T) {
	tests := []struct {
		name string
		v    AttrValue
		want string
	}{
		{"string", String("black"), "black"},
		{"whole number", Number(285), "285"},
		{"decimal number", Number(129.99), "129.99"},
		{"bool", Bool(true), "true"},
		{"list", List(String("trail"), String("rock")), "trail, rock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAttrValue_UnmarshalRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"object", `{"a": 1}`},
		{"null", `null`},
		{"nested list", `[["a"]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v AttrValue
			if err := v.UnmarshalJSON([]byte(tt.data)); err == nil {
				t.Errorf("UnmarshalJSON(%s) succeeded, want error", tt.data)
			}
		})
	}
}

func TestFindByName(t *testing.T) {
	c, err := New(testItems())
	if err != nil {
		t.Fatal(err)
	}

	if item := c.FindByName("AeroStride Apex Trail"); item == nil || item.ID != "SHOE-001" {
		t.Errorf("FindByName(display name) = %v, want SHOE-001", item)
	}

	if item := c.FindByName("Drift 2"); item == nil || item.ID != "SHOE-002" {
		t.Errorf("FindByName(bare name) = %v, want SHOE-002", item)
	}

	if item := c.FindByName("Nonexistent"); item != nil {
		t.Errorf("FindByName(nonexistent) = %v, want nil", item)
	}
}
