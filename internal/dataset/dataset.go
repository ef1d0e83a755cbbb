// Package dataset loads the benchmark query sets: a validated ground-truth
// JSON file, ad-hoc .xlsx question lists, or the built-in default set.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
	"github.com/shelfsearch/shelf-search/internal/pkg/security"
)

// ExpectedItem is one golden expectation: an item the retriever should
// surface for the query.
type ExpectedItem struct {
	ID          string `json:"id"`
	MatchReason string `json:"match_reason,omitempty"`
}

// Unacceptable describes a class of result that would be wrong for the query.
type Unacceptable struct {
	Issue  string `json:"issue"`
	Reason string `json:"reason,omitempty"`
}

// Query is one benchmark query record. RequiredAttributes are the
// ground-truth constraints applied by the hybrid filter; they always win over
// anything derived from the query text.
type Query struct {
	ID                   string                       `json:"id"`
	Text                 string                       `json:"text"`
	Category             string                       `json:"category,omitempty"`
	RequiredAttributes   map[string]catalog.AttrValue `json:"required_attributes,omitempty"`
	ExpectedItems        []ExpectedItem               `json:"expected_items,omitempty"`
	UnacceptableResults  []Unacceptable               `json:"unacceptable_results,omitempty"`
	MinExpectedResults   int                          `json:"min_expected_results,omitempty"`
	MaxAcceptableResults int                          `json:"max_acceptable_results,omitempty"`
}

// HasExpectations reports whether the query carries golden expectations.
func (q Query) HasExpectations() bool {
	return len(q.ExpectedItems) > 0 || len(q.UnacceptableResults) > 0 ||
		q.MinExpectedResults > 0 || q.MaxAcceptableResults > 0
}

// Dataset is an ordered query set.
type Dataset struct {
	Queries []Query `json:"queries"`
}

// Load reads and validates a ground-truth dataset. Any validation failure
// aborts the load, and with it the run, before any query executes. The
// catalog is required to resolve expected item references; pass nil to skip
// reference checking.
func Load(path string, cat *catalog.Catalog) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, fmt.Sprintf("cannot read dataset file %s", path), err)
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "dataset file is not valid JSON", err)
	}

	if err := ds.Validate(cat); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks every query record. All problems are reported at once.
func (d *Dataset) Validate(cat *catalog.Catalog) error {
	if len(d.Queries) == 0 {
		return errors.ValidationError("dataset contains no queries")
	}

	var problems []string
	seen := make(map[string]struct{}, len(d.Queries))

	for i, q := range d.Queries {
		where := fmt.Sprintf("query %d", i)
		if q.ID != "" {
			where = fmt.Sprintf("query %s", q.ID)
		}

		if q.ID == "" {
			problems = append(problems, where+": id is required")
		} else if _, dup := seen[q.ID]; dup {
			problems = append(problems, where+": duplicate id")
		} else {
			seen[q.ID] = struct{}{}
		}

		if err := security.ValidateQuery(q.Text); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", where, err))
		}
		if q.MaxAcceptableResults > 0 && q.MinExpectedResults > q.MaxAcceptableResults {
			problems = append(problems, fmt.Sprintf("%s: min_expected_results %d exceeds max_acceptable_results %d",
				where, q.MinExpectedResults, q.MaxAcceptableResults))
		}
		if cat != nil {
			for _, exp := range q.ExpectedItems {
				if !cat.Has(exp.ID) {
					problems = append(problems, fmt.Sprintf("%s: expected item %s not in catalog", where, exp.ID))
				}
			}
		}
	}

	if len(problems) > 0 {
		return errors.ValidationError(fmt.Sprintf("dataset invalid: %d problem(s)", len(problems))).
			WithDetail("problems", strings.Join(problems, "; "))
	}
	return nil
}

// Sample returns the first n queries; n <= 0 or n beyond the set returns all.
func (d *Dataset) Sample(n int) *Dataset {
	if n <= 0 || n >= len(d.Queries) {
		return d
	}
	return &Dataset{Queries: d.Queries[:n]}
}

// ByID narrows the set to a single query.
func (d *Dataset) ByID(id string) (*Dataset, error) {
	for _, q := range d.Queries {
		if q.ID == id {
			return &Dataset{Queries: []Query{q}}, nil
		}
	}
	return nil, errors.NotFoundError(fmt.Sprintf("query %s", id))
}

// Len returns the number of queries.
func (d *Dataset) Len() int {
	return len(d.Queries)
}
