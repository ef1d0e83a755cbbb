// Package qdrant provides a wrapper around the Qdrant Go client
// with simplified APIs for product embedding storage and search.
package qdrant

import (
	"time"
)

// CollectionConfig defines the configuration for creating a Qdrant collection.
type CollectionConfig struct {
	// Name is the collection name (will be prefixed with "shelf_").
	Name string

	// VectorSize is the dimension of the dense item vectors.
	VectorSize uint64

	// OnDiskPayload stores payload on disk to save RAM.
	OnDiskPayload bool

	// IndexingThreshold is the number of vectors before HNSW index is built.
	IndexingThreshold uint64
}

// DefaultCollectionConfig returns sensible defaults for a product collection.
func DefaultCollectionConfig(name string, vectorSize uint64) CollectionConfig {
	return CollectionConfig{
		Name:              name,
		VectorSize:        vectorSize,
		OnDiskPayload:     false,
		IndexingThreshold: 20000,
	}
}

// Point represents an item embedding to upsert into Qdrant.
type Point struct {
	// ID is the unique point identifier (derived from the item id).
	ID string

	// Vector is the dense item embedding.
	Vector []float32

	// Payload is the metadata associated with this point.
	Payload PointPayload
}

// PointPayload contains the metadata stored alongside each item vector.
type PointPayload struct {
	ItemID     string    `json:"item_id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	Family     string    `json:"family"`
	Projection string    `json:"projection"`
	Embedder   string    `json:"embedder"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// SearchRequest defines parameters for a dense search.
type SearchRequest struct {
	// Vector is the query embedding.
	Vector []float32

	// Limit is the maximum number of results to return.
	Limit uint64

	// WithPayload includes payload in results.
	WithPayload bool

	// ScoreThreshold filters results below this score.
	ScoreThreshold *float32
}

// SearchResult represents a single search result.
type SearchResult struct {
	// ID is the point identifier.
	ID string

	// Score is the cosine similarity score.
	Score float32

	// Payload contains the point metadata.
	Payload PointPayload
}

// CollectionInfo contains information about a collection.
type CollectionInfo struct {
	// Name is the collection name (without prefix).
	Name string

	// PointsCount is the total number of points.
	PointsCount uint64

	// Status is the collection health status.
	Status string

	// SegmentsCount is the number of segments.
	SegmentsCount uint64
}
