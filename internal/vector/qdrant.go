package vector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shelfsearch/shelf-search/internal/pkg/hash"
	"github.com/shelfsearch/shelf-search/internal/qdrant"
)

// Qdrant is the remote index backend, one collection per catalog.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dim        int
}

// NewQdrant creates a Qdrant-backed index over the named collection,
// creating the collection if needed.
func NewQdrant(ctx context.Context, client *qdrant.Client, collection string, dim int) (*Qdrant, error) {
	if err := client.CreateCollection(ctx, qdrant.DefaultCollectionConfig(collection, uint64(dim))); err != nil {
		return nil, fmt.Errorf("ensuring collection %s: %w", collection, err)
	}

	return &Qdrant{
		client:     client,
		collection: collection,
		dim:        dim,
	}, nil
}

// Upsert inserts or replaces item vectors. Point ids are derived from item
// ids, so re-ingestion overwrites instead of duplicating.
func (q *Qdrant) Upsert(ctx context.Context, records []Record) error {
	points := make([]qdrant.Point, 0, len(records))
	now := time.Now()

	for _, r := range records {
		if len(r.Vector) != q.dim {
			return fmt.Errorf("item %s: vector length %d, index expects %d", r.ItemID, len(r.Vector), q.dim)
		}
		points = append(points, qdrant.Point{
			ID:     pointUUID(r.ItemID),
			Vector: r.Vector,
			Payload: qdrant.PointPayload{
				ItemID:     r.ItemID,
				Name:       r.Name,
				Brand:      r.Brand,
				Family:     r.Family,
				Projection: r.Projection,
				Embedder:   r.Embedder,
				IndexedAt:  now,
			},
		})
	}

	return q.client.UpsertPointsBatch(ctx, q.collection, points, 100)
}

// Search returns the top-k hits. The remote side already orders by score;
// equal scores are re-broken by item id locally so both backends agree.
func (q *Qdrant) Search(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	count, err := q.client.CountPoints(ctx, q.collection)
	if err != nil {
		return nil, fmt.Errorf("checking collection: %w", err)
	}
	if count == 0 {
		return nil, ErrNotBuilt
	}

	results, err := q.client.DenseSearch(ctx, q.collection, qdrant.SearchRequest{
		Vector:      vec,
		Limit:       uint64(k),
		WithPayload: true,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		itemID := r.Payload.ItemID
		if itemID == "" {
			itemID = r.ID
		}
		hits = append(hits, Hit{ItemID: itemID, Score: r.Score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ItemID < hits[j].ItemID
	})

	return hits, nil
}

// Count returns the number of indexed vectors.
func (q *Qdrant) Count(ctx context.Context) (int, error) {
	n, err := q.client.CountPoints(ctx, q.collection)
	return int(n), err
}

// Reset drops and recreates the collection.
func (q *Qdrant) Reset(ctx context.Context) error {
	if err := q.client.DeleteCollection(ctx, q.collection); err != nil {
		return err
	}
	return q.client.CreateCollection(ctx, qdrant.DefaultCollectionConfig(q.collection, uint64(q.dim)))
}

// Close closes the underlying client.
func (q *Qdrant) Close() error {
	return q.client.Close()
}

// pointUUID renders a deterministic item point id in UUID form, which is
// what Qdrant accepts for string ids.
func pointUUID(itemID string) string {
	h := hash.PointID(itemID)
	return h[0:8] + "-" + h[8:12] + "-" + h[12:16] + "-" + h[16:20] + "-" + h[20:32]
}
