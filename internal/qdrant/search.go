package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// DenseSearch performs a dense vector search over item embeddings.
func (c *Client) DenseSearch(ctx context.Context, collection string, req SearchRequest) ([]SearchResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, fmt.Errorf("client is closed")
	}

	if len(req.Vector) == 0 {
		return nil, fmt.Errorf("query vector is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	limit := req.Limit
	if limit == 0 {
		limit = 20
	}

	queryPoints := &qdrant.QueryPoints{
		CollectionName: collectionName(collection),
		Query:          qdrant.NewQueryDense(req.Vector),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(req.WithPayload),
	}

	if req.ScoreThreshold != nil {
		queryPoints.ScoreThreshold = req.ScoreThreshold
	}

	results, err := c.client.Query(ctx, queryPoints)
	if err != nil {
		return nil, fmt.Errorf("dense search failed: %w", err)
	}

	return scoredPointsToResults(results), nil
}

// scoredPointsToResults converts Qdrant scored points to SearchResults.
func scoredPointsToResults(points []*qdrant.ScoredPoint) []SearchResult {
	results := make([]SearchResult, 0, len(points))

	for _, p := range points {
		result := SearchResult{
			Score:   p.Score,
			Payload: extractPayload(p.Payload),
		}
		switch v := p.Id.PointIdOptions.(type) {
		case *qdrant.PointId_Uuid:
			result.ID = v.Uuid
		case *qdrant.PointId_Num:
			result.ID = fmt.Sprintf("%d", v.Num)
		}
		results = append(results, result)
	}

	return results
}

// extractPayload extracts PointPayload from a Qdrant payload map.
func extractPayload(payload map[string]*qdrant.Value) PointPayload {
	result := PointPayload{}

	if v := getStringValue(payload, "item_id"); v != "" {
		result.ItemID = v
	}
	if v := getStringValue(payload, "name"); v != "" {
		result.Name = v
	}
	if v := getStringValue(payload, "brand"); v != "" {
		result.Brand = v
	}
	if v := getStringValue(payload, "family"); v != "" {
		result.Family = v
	}
	if v := getStringValue(payload, "projection"); v != "" {
		result.Projection = v
	}
	if v := getStringValue(payload, "embedder"); v != "" {
		result.Embedder = v
	}
	if v := getStringValue(payload, "indexed_at"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			result.IndexedAt = t
		}
	}

	return result
}

func getStringValue(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if sv, ok := v.Kind.(*qdrant.Value_StringValue); ok {
			return sv.StringValue
		}
	}
	return ""
}
