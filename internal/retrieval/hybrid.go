package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/embed"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/triples"
	"github.com/shelfsearch/shelf-search/internal/vector"
)

const (
	// DefaultKWide is the wide-recall candidate count before filtering. Wide
	// enough that hard filtering still leaves a full page of survivors.
	DefaultKWide = 30

	// DefaultTopN caps the final ranked result.
	DefaultTopN = 10
)

// Hybrid is the vector-plus-symbolic retriever: wide vector recall, triple
// enrichment, hard constraint filtering, then similarity re-ranking.
type Hybrid struct {
	index    vector.Index
	embedder embed.Embedder
	store    *triples.Store
	cat      *catalog.Catalog
	kWide    int
	topN     int
	log      *logger.Logger
}

// NewHybrid creates the hybrid retriever. Zero kWide/topN select the defaults.
func NewHybrid(index vector.Index, embedder embed.Embedder, store *triples.Store, cat *catalog.Catalog, kWide, topN int, log *logger.Logger) *Hybrid {
	if kWide <= 0 {
		kWide = DefaultKWide
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Hybrid{
		index:    index,
		embedder: embedder,
		store:    store,
		cat:      cat,
		kWide:    kWide,
		topN:     topN,
		log:      log.WithComponent("retrieval").WithPath(string(PathHybrid)),
	}
}

// Retrieve runs the full hybrid pipeline for one query. An empty result after
// filtering is a valid outcome, not an error; ErrNotBuilt from the index and
// embedding failures surface as retrieval failures.
func (h *Hybrid) Retrieve(ctx context.Context, text string, constraints map[string]catalog.AttrValue) (Result, error) {
	start := time.Now()

	vec, err := embed.EmbedOne(ctx, h.embedder, text)
	if err != nil {
		return Result{}, errors.RetrievalError("embedding query", err)
	}

	hits, err := h.index.Search(ctx, vec, h.kWide)
	if err != nil {
		return Result{}, errors.RetrievalError("vector search", err)
	}

	// Enrich and filter. Candidates whose id is missing from the catalog are
	// dropped here: the index may lag a catalog reload.
	type candidate struct {
		hit   vector.Hit
		facts triples.Facts
	}
	kept := make([]candidate, 0, len(hits))
	for _, hit := range hits {
		item, ok := h.cat.Get(hit.ItemID)
		if !ok {
			h.log.Warn("indexed id missing from catalog", "item_id", hit.ItemID)
			continue
		}
		facts := h.store.Enrich(hit.ItemID)
		if !Satisfies(facts, constraints) {
			continue
		}
		c := candidate{hit: hit, facts: facts}
		c.hit.ItemID = item.ID
		kept = append(kept, c)
	}

	// Re-rank survivors by similarity, ties by id ascending.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].hit.Score != kept[j].hit.Score {
			return kept[i].hit.Score > kept[j].hit.Score
		}
		return kept[i].hit.ItemID < kept[j].hit.ItemID
	})
	if len(kept) > h.topN {
		kept = kept[:h.topN]
	}

	result := Result{
		Path:    PathHybrid,
		Items:   make([]ScoredItem, 0, len(kept)),
		Facts:   make([]triples.Facts, 0, len(kept)),
		Latency: time.Since(start),
	}
	for _, c := range kept {
		item, _ := h.cat.Get(c.hit.ItemID)
		result.Items = append(result.Items, ScoredItem{
			ID:    c.hit.ItemID,
			Name:  item.DisplayName(),
			Score: float64(c.hit.Score),
		})
		result.Facts = append(result.Facts, c.facts)
	}

	h.log.Debug("retrieved",
		"candidates", len(hits),
		"kept", len(result.Items),
		"took", result.Latency.String())
	return result, nil
}
