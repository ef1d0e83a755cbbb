package hallucination

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// priceTolerance is the relative deviation allowed before a stated price
// counts as incorrect. Rounding "$149.99" to "$150" is not a hallucination;
// "$120" is.
const priceTolerance = 0.05

// Detect fact-checks a response's claims against the catalog. A non-existent
// product is critical and short-circuits the remaining checks for that claim:
// there is nothing to compare the other facts against.
func Detect(response string, cat *catalog.Catalog) Report {
	return Check(ExtractClaims(response, cat), cat)
}

// Check fact-checks already-extracted claims.
func Check(claims []ItemClaim, cat *catalog.Catalog) Report {
	var report Report

	for _, claim := range claims {
		item, ok := cat.Get(claim.ItemID)
		if !ok {
			report.Findings = append(report.Findings, Finding{
				Type:     TypeNonExistentProduct,
				Severity: SeverityCritical,
				ItemID:   claim.ItemID,
				Claimed:  claim.ItemID,
			})
			continue
		}
		report.Findings = append(report.Findings, checkItem(claim, item)...)
	}
	return report
}

func checkItem(claim ItemClaim, item *catalog.Item) []Finding {
	var findings []Finding

	for _, name := range sortedAttrNames(claim.BoolAttrs) {
		claimed := claim.BoolAttrs[name]
		actual, err := item.Attributes[name].AsBool()
		if err != nil {
			continue
		}
		if claimed != actual {
			findings = append(findings, Finding{
				Type:     TypeIncorrectAttribute,
				Severity: SeverityHigh,
				ItemID:   item.ID,
				Claimed:  fmt.Sprintf("%s=%t", name, claimed),
				Actual:   fmt.Sprintf("%s=%t", name, actual),
			})
		}
	}

	if claim.Price != nil && item.Price > 0 {
		rel := math.Abs(*claim.Price-item.Price) / item.Price
		if rel > priceTolerance {
			findings = append(findings, Finding{
				Type:     TypeIncorrectPrice,
				Severity: SeverityHigh,
				ItemID:   item.ID,
				Claimed:  fmt.Sprintf("$%.2f", *claim.Price),
				Actual:   fmt.Sprintf("$%.2f", item.Price),
			})
		}
	}

	if claim.InStock != nil && *claim.InStock != item.InStock {
		findings = append(findings, Finding{
			Type:     TypeIncorrectAvailability,
			Severity: SeverityMedium,
			ItemID:   item.ID,
			Claimed:  stockText(*claim.InStock),
			Actual:   stockText(item.InStock),
		})
	}

	if invalid := invalidSizes(claim.Sizes, item); len(invalid) > 0 {
		findings = append(findings, Finding{
			Type:     TypeInvalidSizes,
			Severity: SeverityMedium,
			ItemID:   item.ID,
			Claimed:  strings.Join(invalid, ", "),
			Actual:   strings.Join(item.AvailableSizes, ", "),
		})
	}

	return findings
}

// invalidSizes returns the claimed sizes the item does not carry. Claimed
// sizes must be a subset of the available sizes; claiming fewer is fine.
func invalidSizes(claimed []string, item *catalog.Item) []string {
	var invalid []string
	for _, s := range claimed {
		if !item.HasSize(s) {
			invalid = append(invalid, s)
		}
	}
	return invalid
}

func sortedAttrNames(attrs map[string]bool) []string {
	if len(attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	// Deterministic finding order.
	sort.Strings(names)
	return names
}

func stockText(in bool) string {
	if in {
		return "in stock"
	}
	return "out of stock"
}
