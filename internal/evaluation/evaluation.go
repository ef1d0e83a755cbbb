// Package evaluation checks retrieval output against a query's golden
// expectations: expected items, result-count bounds, and unacceptable-result
// classes. Purely offline bookkeeping attached to per-query results; nothing
// here feeds back into retrieval.
package evaluation

import (
	"fmt"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/dataset"
)

// Violation is one unacceptable-result class the output triggered.
type Violation struct {
	Issue  string `json:"issue"`
	Detail string `json:"detail"`
}

// Outcome is the golden-expectation verdict for one path's retrieval output.
type Outcome struct {
	Evaluated      bool        `json:"evaluated"`
	ExpectedFound  []string    `json:"expected_found,omitempty"`
	ExpectedMissed []string    `json:"expected_missed,omitempty"`
	HitRate        float64     `json:"hit_rate"`
	BoundsOK       bool        `json:"bounds_ok"`
	BoundsDetail   string      `json:"bounds_detail,omitempty"`
	Violations     []Violation `json:"violations,omitempty"`
}

// Passed reports whether the output met every checkable expectation.
func (o Outcome) Passed() bool {
	return o.Evaluated && len(o.ExpectedMissed) == 0 && o.BoundsOK && len(o.Violations) == 0
}

// Evaluate scores retrieved ids against the query's expectations. Queries
// without expectations yield an un-evaluated outcome rather than a vacuous
// pass.
func Evaluate(q dataset.Query, ids []string, cat *catalog.Catalog) Outcome {
	if !q.HasExpectations() {
		return Outcome{}
	}

	out := Outcome{Evaluated: true, BoundsOK: true}
	returned := make(map[string]bool, len(ids))
	for _, id := range ids {
		returned[id] = true
	}

	for _, exp := range q.ExpectedItems {
		if returned[exp.ID] {
			out.ExpectedFound = append(out.ExpectedFound, exp.ID)
		} else {
			out.ExpectedMissed = append(out.ExpectedMissed, exp.ID)
		}
	}
	if len(q.ExpectedItems) > 0 {
		out.HitRate = float64(len(out.ExpectedFound)) / float64(len(q.ExpectedItems))
	}

	if q.MinExpectedResults > 0 && len(ids) < q.MinExpectedResults {
		out.BoundsOK = false
		out.BoundsDetail = fmt.Sprintf("returned %d results, expected at least %d", len(ids), q.MinExpectedResults)
	}
	if q.MaxAcceptableResults > 0 && len(ids) > q.MaxAcceptableResults {
		out.BoundsOK = false
		out.BoundsDetail = fmt.Sprintf("returned %d results, acceptable at most %d", len(ids), q.MaxAcceptableResults)
	}

	for _, un := range q.UnacceptableResults {
		if v, hit := checkUnacceptable(un, q, ids, cat); hit {
			out.Violations = append(out.Violations, v)
		}
	}

	return out
}

// checkUnacceptable evaluates the deterministic unacceptable-result classes.
// Unknown issue names are not checkable and never count as violations.
func checkUnacceptable(un dataset.Unacceptable, q dataset.Query, ids []string, cat *catalog.Catalog) (Violation, bool) {
	switch normalizeIssue(un.Issue) {
	case "out_of_stock", "out_of_stock_items":
		for _, id := range ids {
			if item, ok := cat.Get(id); ok && !item.InStock {
				return Violation{Issue: un.Issue, Detail: fmt.Sprintf("item %s is out of stock", id)}, true
			}
		}

	case "over_budget", "above_max_price":
		bound, ok := q.RequiredAttributes["max_price"]
		if !ok {
			return Violation{}, false
		}
		maxPrice, err := bound.AsNumber()
		if err != nil {
			return Violation{}, false
		}
		for _, id := range ids {
			if item, ok := cat.Get(id); ok && item.Price > maxPrice {
				return Violation{Issue: un.Issue, Detail: fmt.Sprintf("item %s at $%.2f exceeds $%.2f", id, item.Price, maxPrice)}, true
			}
		}

	case "wrong_type", "wrong_category":
		want, ok := q.RequiredAttributes["type"]
		if !ok {
			return Violation{}, false
		}
		family, err := want.AsString()
		if err != nil {
			return Violation{}, false
		}
		for _, id := range ids {
			if item, ok := cat.Get(id); ok && !strings.EqualFold(item.Family, family) {
				return Violation{Issue: un.Issue, Detail: fmt.Sprintf("item %s is %s, not %s", id, item.Family, family)}, true
			}
		}

	case "unknown_items", "non_existent_items":
		for _, id := range ids {
			if !cat.Has(id) {
				return Violation{Issue: un.Issue, Detail: fmt.Sprintf("item %s is not in the catalog", id)}, true
			}
		}
	}

	return Violation{}, false
}

func normalizeIssue(issue string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(issue, " ", "_")))
}
