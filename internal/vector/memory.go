package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Memory is an in-process exact-scan index. Every search scores every vector,
// which is fine at catalog scale and keeps ranking fully deterministic.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	vectors map[string][]float32
}

// NewMemory creates an empty memory index expecting vectors of length dim.
func NewMemory(dim int) *Memory {
	return &Memory{
		dim:     dim,
		vectors: make(map[string][]float32),
	}
}

// Upsert inserts or replaces item vectors.
func (m *Memory) Upsert(ctx context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(r.Vector) != m.dim {
			return fmt.Errorf("item %s: vector length %d, index expects %d", r.ItemID, len(r.Vector), m.dim)
		}
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)
		m.vectors[r.ItemID] = vec
	}
	return nil
}

// Search returns the top-k hits by cosine similarity, ties broken by item id
// ascending.
func (m *Memory) Search(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.vectors) == 0 {
		return nil, ErrNotBuilt
	}
	if len(vec) != m.dim {
		return nil, fmt.Errorf("query vector length %d, index expects %d", len(vec), m.dim)
	}
	if k <= 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, len(m.vectors))
	for id, v := range m.vectors {
		hits = append(hits, Hit{ItemID: id, Score: cosineSimilarity(vec, v)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ItemID < hits[j].ItemID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of indexed vectors.
func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors), nil
}

// Reset drops all vectors.
func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors = make(map[string][]float32)
	return nil
}

// Close is a no-op for the memory index.
func (m *Memory) Close() error {
	return nil
}

// cosineSimilarity accumulates in float64 to keep scores stable regardless of
// vector length.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
