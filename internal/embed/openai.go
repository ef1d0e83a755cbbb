package embed

import (
	"context"
	"fmt"

	"github.com/shelfsearch/shelf-search/internal/llm"
)

// Remote is an embedder backed by an OpenAI-compatible embeddings endpoint.
// Remote embeddings are not guaranteed deterministic across provider
// versions; benchmark determinism properties hold only for the hashing
// embedder.
type Remote struct {
	client *llm.Client
	model  string
	dim    int
}

// NewRemote creates a remote embedder for the given model and expected
// dimension.
func NewRemote(client *llm.Client, model string, dim int) *Remote {
	return &Remote{client: client, model: model, dim: dim}
}

// Dimension returns the embedding length.
func (r *Remote) Dimension() int {
	return r.dim
}

// Name identifies the embedding function.
func (r *Remote) Name() string {
	return "openai:" + r.model
}

// Embed generates embeddings for texts via the provider.
func (r *Remote) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := r.client.Embeddings(ctx, r.model, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("provider returned %d embeddings for %d texts", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) != r.dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), r.dim)
		}
	}
	return vectors, nil
}
