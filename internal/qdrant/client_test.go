package qdrant

import (
	"testing"
	"time"
)

func TestClientConfigWithDefaults(t *testing.T) {
	got := ClientConfig{}.withDefaults()
	if got.Host != "localhost" || got.Port != 6334 || got.Timeout != 30*time.Second {
		t.Errorf("withDefaults() = %+v, want localhost:6334 with 30s timeout", got)
	}

	set := ClientConfig{Host: "qdrant.internal", Port: 7443, UseTLS: true, Timeout: time.Minute}
	if got := set.withDefaults(); got != set {
		t.Errorf("withDefaults() overwrote explicit settings: %+v", got)
	}
}

func TestDefaultCollectionConfig(t *testing.T) {
	cfg := DefaultCollectionConfig("products", 256)

	if cfg.Name != "products" {
		t.Errorf("expected name 'products', got %s", cfg.Name)
	}

	if cfg.VectorSize != 256 {
		t.Errorf("expected vector size 256, got %d", cfg.VectorSize)
	}

	if cfg.OnDiskPayload {
		t.Error("expected OnDiskPayload to be false for product-scale collections")
	}
}

func TestCollectionName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"products", "shelf_products"},
		{"catalog-v2", "shelf_catalog-v2"},
	}

	for _, tt := range tests {
		result := collectionName(tt.input)
		if result != tt.expected {
			t.Errorf("collectionName(%s) = %s, expected %s", tt.input, result, tt.expected)
		}
	}
}

func TestPointToQdrant(t *testing.T) {
	now := time.Now()
	point := Point{
		ID:     "9f8a7b6c-0000-0000-0000-000000000001",
		Vector: []float32{0.1, 0.2, 0.3},
		Payload: PointPayload{
			ItemID:     "shoe-001",
			Name:       "Trailblazer 3",
			Brand:      "Peak",
			Family:     "trail",
			Projection: "Product shoe-001 is a trail item.",
			Embedder:   "hashing-v1-256",
			IndexedAt:  now,
		},
	}

	qp := pointToQdrant(point)
	if qp.Id == nil {
		t.Fatal("expected point id to be set")
	}
	if qp.Payload["item_id"].GetStringValue() != "shoe-001" {
		t.Errorf("payload item_id = %q, want shoe-001", qp.Payload["item_id"].GetStringValue())
	}
	if qp.Payload["brand"].GetStringValue() != "Peak" {
		t.Errorf("payload brand = %q, want Peak", qp.Payload["brand"].GetStringValue())
	}
}

func TestCollectionInfo(t *testing.T) {
	info := CollectionInfo{
		Name:          "products",
		PointsCount:   120,
		Status:        "green",
		SegmentsCount: 2,
	}

	if info.Name != "products" {
		t.Errorf("expected name 'products', got %s", info.Name)
	}

	if info.PointsCount != 120 {
		t.Errorf("expected points count 120, got %d", info.PointsCount)
	}

	if info.Status != "green" {
		t.Errorf("expected status 'green', got %s", info.Status)
	}
}
