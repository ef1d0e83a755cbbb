package scrape

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{
			ID: "p1", Brand: "Peak", Name: "Trail Runner", Family: "footwear",
			Price: 129.99, InStock: true, AvailableSizes: []string{"9", "10"},
			Attributes: map[string]catalog.AttrValue{
				"type":       catalog.String("trail"),
				"waterproof": catalog.Bool(true),
			},
		},
		{
			ID: "p2", Brand: "Urban", Name: "City Loafer", Family: "footwear",
			Price: 89.50, InStock: false,
		},
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func TestCatalogSourceFetch(t *testing.T) {
	src := NewCatalogSource(testCatalog(t))

	listings, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.ItemID != "p1" {
		t.Errorf("ItemID = %q, want p1", first.ItemID)
	}
	if first.Name != "Peak Trail Runner" {
		t.Errorf("Name = %q, want display name", first.Name)
	}
	if first.PriceText != "$129.99" {
		t.Errorf("PriceText = %q, want $129.99", first.PriceText)
	}
	if !strings.Contains(first.FullText, "waterproof true") {
		t.Errorf("FullText missing attribute text: %q", first.FullText)
	}
	if !strings.Contains(first.FullText, "in stock") {
		t.Errorf("FullText missing stock line: %q", first.FullText)
	}
	if !strings.Contains(listings[1].FullText, "out of stock") {
		t.Errorf("out-of-stock item not marked: %q", listings[1].FullText)
	}
}

func TestFileSourceFetch(t *testing.T) {
	dump := []Listing{
		{ItemID: "p1", Name: "Peak Trail Runner", PriceText: "$129.99", FullText: "Peak Trail Runner $129.99"},
	}
	data, _ := json.Marshal(dump)

	path := filepath.Join(t.TempDir(), "listings.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path)
	listings, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(listings) != 1 || listings[0].ItemID != "p1" {
		t.Errorf("got %+v, want the dumped listing", listings)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected error for missing dump file")
	}
}

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Listing{
			{Name: "Peak Trail Runner", PriceText: "$129.99", FullText: "trail shoe"},
		})
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, 5*time.Second)
	listings, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(listings) != 1 || listings[0].Name != "Peak Trail Runner" {
		t.Errorf("got %+v, want served listing", listings)
	}
}

func TestHTTPSourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, 5*time.Second)
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected error for non-200 response")
	}
}

// slowSource tracks overlapping fetches to verify serialization.
type slowSource struct {
	mu      sync.Mutex
	active  int
	overlap bool
}

func (s *slowSource) Name() string { return "slow" }

func (s *slowSource) Fetch(ctx context.Context) ([]Listing, error) {
	s.mu.Lock()
	s.active++
	if s.active > 1 {
		s.overlap = true
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.active--
	s.mu.Unlock()
	return nil, nil
}

func TestSessionSerializesFetches(t *testing.T) {
	slow := &slowSource{}
	session := NewSession(slow, logger.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session.Fetch(context.Background())
		}()
	}
	wg.Wait()

	if slow.overlap {
		t.Error("session allowed overlapping fetches")
	}
}
