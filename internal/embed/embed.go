// Package embed provides the embedding functions behind the vector index.
// Item projections and query text must pass through the same Embedder so
// similarity scores are comparable; the index stores which function built it.
package embed

import (
	"context"
)

// Embedder generates dense embeddings from text.
type Embedder interface {
	// Embed generates one embedding per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the fixed embedding length.
	Dimension() int

	// Name identifies the embedding function. Indexes built with one
	// function cannot be queried with another.
	Name() string
}

// EmbedOne is a convenience wrapper for single-text embedding.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	return vecs[0], nil
}
