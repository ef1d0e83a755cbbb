// Package hallucination deterministically fact-checks synthesized responses
// against the catalog. This is rule-based detection, independent of the LLM
// judge: a claim either matches the catalog or it does not.
package hallucination

// Severity grades how damaging a hallucination is to a shopper.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Finding types.
const (
	TypeNonExistentProduct    = "non_existent_product"
	TypeIncorrectAttribute    = "incorrect_attribute"
	TypeIncorrectPrice        = "incorrect_price"
	TypeIncorrectAvailability = "incorrect_availability"
	TypeInvalidSizes          = "invalid_sizes"
)

// Finding is one detected hallucination.
type Finding struct {
	Type     string   `json:"type"`
	Severity Severity `json:"severity"`
	ItemID   string   `json:"item_id"`
	Claimed  string   `json:"claimed"`
	Actual   string   `json:"actual,omitempty"`
}

// Report aggregates the findings for one response.
type Report struct {
	Findings []Finding `json:"findings"`
}

// HasCritical reports whether any finding is critical.
func (r Report) HasCritical() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// Count returns the number of findings.
func (r Report) Count() int {
	return len(r.Findings)
}

// CountBySeverity tallies findings per severity.
func (r Report) CountBySeverity() map[Severity]int {
	out := make(map[Severity]int)
	for _, f := range r.Findings {
		out[f.Severity]++
	}
	return out
}
