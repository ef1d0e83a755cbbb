// Package retrieval implements the two retrieval paths under comparison: the
// hybrid engine (vector recall, triple enrichment, constraint filtering) and
// the naive keyword baseline over scraped listings.
package retrieval

import (
	"time"

	"github.com/shelfsearch/shelf-search/internal/triples"
)

// Path identifies which retrieval path produced a result.
type Path string

const (
	PathHybrid  Path = "hybrid"
	PathKeyword Path = "keyword"
)

// ScoredItem is one ranked result entry. For the hybrid path Score is cosine
// similarity; for the keyword path it is the token match count. ID may not
// resolve in the catalog on the keyword path when a scraped listing could not
// be matched back to a catalog record.
type ScoredItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Score float64 `json:"score"`
}

// Result is the outcome of one retrieval call. An empty Items slice is a
// valid result (everything filtered out), distinct from an error.
type Result struct {
	Path    Path            `json:"path"`
	Items   []ScoredItem    `json:"items"`
	Facts   []triples.Facts `json:"-"`
	Latency time.Duration   `json:"latency"`
}

// IDs returns the result's item ids in rank order.
func (r Result) IDs() []string {
	ids := make([]string, len(r.Items))
	for i, it := range r.Items {
		ids[i] = it.ID
	}
	return ids
}
