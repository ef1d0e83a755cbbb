// Package vector provides the embedding index over catalog items: one vector
// per item, nearest-neighbor search by cosine similarity. Two backends sit
// behind one interface: an in-process memory index (deterministic, default)
// and a Qdrant collection for large catalogs.
package vector

import (
	"context"
	"errors"
)

// ErrNotBuilt is returned by Search when the index holds no vectors. Callers
// must treat this as a retrieval failure, never as a valid zero-match answer:
// an empty result from a built index and an unbuilt index are distinguishable
// conditions.
var ErrNotBuilt = errors.New("vector index has not been built")

// Record is one indexed item vector. The metadata fields travel with the
// vector on backends that store payloads; the memory backend ignores them.
type Record struct {
	ItemID string
	Vector []float32

	Name       string
	Brand      string
	Family     string
	Projection string
	Embedder   string
}

// Hit is one search match.
type Hit struct {
	ItemID string
	Score  float32
}

// Index is the embedding index contract. Rebuildable from scratch via
// Reset + Upsert; there is no incremental-update guarantee.
type Index interface {
	// Upsert inserts or replaces item vectors.
	Upsert(ctx context.Context, records []Record) error

	// Search returns the k item ids with highest cosine similarity to the
	// query vector, ties broken by item id ascending. Returns ErrNotBuilt
	// when the index is empty.
	Search(ctx context.Context, vec []float32, k int) ([]Hit, error)

	// Count returns the number of indexed vectors.
	Count(ctx context.Context) (int, error)

	// Reset drops all vectors.
	Reset(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
