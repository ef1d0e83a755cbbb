package retrieval

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
	"github.com/shelfsearch/shelf-search/internal/scrape"
)

// listingFetcher is the slice of the scrape session the baseline needs.
type listingFetcher interface {
	Fetch(ctx context.Context) ([]scrape.Listing, error)
	Name() string
}

// Keyword is the naive baseline: tokenize the query, count how many query
// tokens appear in each scraped listing's text, rank by that count. No
// constraint awareness, no semantics. Deliberately simple; it exists to be
// compared against.
type Keyword struct {
	session listingFetcher
	cat     *catalog.Catalog
	topN    int
	log     *logger.Logger
}

// NewKeyword creates the keyword baseline retriever.
func NewKeyword(session listingFetcher, cat *catalog.Catalog, topN int, log *logger.Logger) *Keyword {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Keyword{
		session: session,
		cat:     cat,
		topN:    topN,
		log:     log.WithComponent("retrieval").WithPath(string(PathKeyword)),
	}
}

// Retrieve fetches the current listings and ranks them against the query
// text. A scrape failure is fatal for this path only.
func (k *Keyword) Retrieve(ctx context.Context, text string) (Result, error) {
	start := time.Now()

	listings, err := k.session.Fetch(ctx)
	if err != nil {
		return Result{}, err
	}

	tokens := strings.Fields(strings.ToLower(text))

	type match struct {
		listing scrape.Listing
		score   int
	}
	matches := make([]match, 0, len(listings))
	for _, l := range listings {
		haystack := strings.ToLower(l.Name + " " + l.FullText)
		// One point per token found, however often it repeats. A listing
		// matching more distinct tokens always outranks one repeating fewer.
		score := 0
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		matches = append(matches, match{listing: l, score: score})
	}

	// Stable sort: listings with equal counts keep scrape order, so the
	// baseline is exactly as arbitrary as the site's listing order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if len(matches) > k.topN {
		matches = matches[:k.topN]
	}

	result := Result{
		Path:    PathKeyword,
		Items:   make([]ScoredItem, 0, len(matches)),
		Latency: time.Since(start),
	}
	for _, m := range matches {
		result.Items = append(result.Items, ScoredItem{
			ID:    k.resolveID(m.listing),
			Name:  m.listing.Name,
			Score: float64(m.score),
		})
	}

	k.log.Debug("retrieved",
		"listings", len(listings),
		"matched", len(result.Items),
		"took", result.Latency.String())
	return result, nil
}

// resolveID maps a listing back to a catalog id. An unresolvable listing
// keeps its name as the id; downstream fact-checking flags it as a
// non-existent product instead of this path silently dropping it.
func (k *Keyword) resolveID(l scrape.Listing) string {
	if l.ItemID != "" {
		return l.ItemID
	}
	if item := k.cat.FindByName(l.Name); item != nil {
		return item.ID
	}
	return l.Name
}
