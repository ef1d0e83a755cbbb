package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultHashingDim is the default dimension of the hashing embedder.
const DefaultHashingDim = 256

// Hashing is a deterministic feature-hashing embedder: unigram and bigram
// term frequencies are folded into a fixed-dim dense vector via FNV hashing,
// then L2-normalized. No model files, no network: the same text always
// produces the same vector, which keeps retrieval runs reproducible.
type Hashing struct {
	dim int
}

// NewHashing creates a hashing embedder with the given dimension.
func NewHashing(dim int) *Hashing {
	if dim <= 0 {
		dim = DefaultHashingDim
	}
	return &Hashing{dim: dim}
}

// Dimension returns the embedding length.
func (h *Hashing) Dimension() int {
	return h.dim
}

// Name identifies the embedding function including its dimension.
func (h *Hashing) Name() string {
	return fmt.Sprintf("hashing-v1-%d", h.dim)
}

// Embed generates embeddings for texts.
func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.embedOne(text)
	}
	return out, nil
}

func (h *Hashing) embedOne(text string) []float32 {
	vec := make([]float32, h.dim)

	tokens := tokenizeAlphaNum(text)
	for _, tok := range tokens {
		h.fold(vec, tok, 1.0)
	}
	// Bigrams carry a little word order; weighted under unigrams.
	for i := 0; i+1 < len(tokens); i++ {
		h.fold(vec, tokens[i]+"_"+tokens[i+1], 0.5)
	}

	return l2Normalize(vec)
}

// fold adds weight into the bucket for term, signed by a hash bit so
// collisions cancel rather than pile up.
func (h *Hashing) fold(vec []float32, term string, weight float32) {
	hashed := hashToken(term)
	bucket := int(hashed % uint32(h.dim))
	if hashed&0x80000000 != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

func hashToken(token string) uint32 {
	f := fnv.New32a()
	_, _ = f.Write([]byte(token))
	return f.Sum32()
}

// tokenizeAlphaNum splits text into lowercase alphanumeric runs.
func tokenizeAlphaNum(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 24)
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

// l2Normalize normalizes a vector to unit length.
func l2Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	norm := float32(math.Sqrt(sum))
	if norm == 0 {
		return v
	}

	for i, x := range v {
		v[i] = x / norm
	}
	return v
}
