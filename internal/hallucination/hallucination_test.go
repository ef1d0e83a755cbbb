package hallucination

import (
	"testing"

	"github.com/shelfsearch/shelf-search/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{
			ID: "s1", Brand: "Peak", Name: "Ridgeline", Family: "footwear",
			Price: 200.00, InStock: true, AvailableSizes: []string{"9", "10", "11"},
			Attributes: map[string]catalog.AttrValue{
				"waterproof": catalog.Bool(true),
				"breathable": catalog.Bool(false),
			},
		},
		{
			ID: "s2", Brand: "Urban", Name: "Pavement", Family: "footwear",
			Price: 89.50, InStock: false, AvailableSizes: []string{"8", "9"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return cat
}

func findingTypes(r Report) []string {
	out := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		out[i] = f.Type
	}
	return out
}

func TestDetectCleanResponse(t *testing.T) {
	cat := testCatalog(t)
	report := Detect("The Peak Ridgeline [s1] costs $200.00, is waterproof, in stock, sizes 9, 10.", cat)
	if report.Count() != 0 {
		t.Errorf("clean response produced findings: %v", report.Findings)
	}
}

func TestDetectNonExistentProductShortCircuits(t *testing.T) {
	cat := testCatalog(t)
	report := Detect("Try the Ghost Runner [ghost-9] at $49.99, in stock, sizes 12, 13.", cat)

	if report.Count() != 1 {
		t.Fatalf("got findings %v, want only the existence finding", report.Findings)
	}
	f := report.Findings[0]
	if f.Type != TypeNonExistentProduct || f.Severity != SeverityCritical {
		t.Errorf("got %+v", f)
	}
	if !report.HasCritical() {
		t.Error("HasCritical() = false")
	}
}

func TestDetectPriceTolerance(t *testing.T) {
	cat := testCatalog(t)

	// $210 on a $200 item is exactly 5% off: inside tolerance.
	report := Detect("The Ridgeline [s1] costs about $210.", cat)
	if report.Count() != 0 {
		t.Errorf("5%% deviation flagged: %v", report.Findings)
	}

	// $211 is strictly beyond 5%.
	report = Detect("The Ridgeline [s1] costs about $211.", cat)
	if types := findingTypes(report); len(types) != 1 || types[0] != TypeIncorrectPrice {
		t.Errorf("got %v, want one incorrect_price", types)
	}
	if report.Findings[0].Severity != SeverityHigh {
		t.Errorf("price finding severity = %s, want high", report.Findings[0].Severity)
	}
}

func TestDetectIncorrectBoolAttribute(t *testing.T) {
	cat := testCatalog(t)
	report := Detect("The Ridgeline [s1] is breathable and waterproof.", cat)

	types := findingTypes(report)
	if len(types) != 1 || types[0] != TypeIncorrectAttribute {
		t.Fatalf("got %v, want one incorrect_attribute", types)
	}
	if report.Findings[0].Claimed != "breathable=true" {
		t.Errorf("Claimed = %q", report.Findings[0].Claimed)
	}
}

func TestDetectNegatedAttributeClaim(t *testing.T) {
	cat := testCatalog(t)

	// "not waterproof" contradicts the catalog.
	report := Detect("The Ridgeline [s1] is not waterproof.", cat)
	if types := findingTypes(report); len(types) != 1 || types[0] != TypeIncorrectAttribute {
		t.Errorf("got %v, want one incorrect_attribute", types)
	}

	// "not breathable" matches the catalog.
	report = Detect("The Ridgeline [s1] is not breathable.", cat)
	if report.Count() != 0 {
		t.Errorf("correct negated claim flagged: %v", report.Findings)
	}
}

func TestDetectIncorrectAvailability(t *testing.T) {
	cat := testCatalog(t)
	report := Detect("The Urban Pavement [s2] is in stock.", cat)

	types := findingTypes(report)
	if len(types) != 1 || types[0] != TypeIncorrectAvailability {
		t.Fatalf("got %v", types)
	}
	if report.Findings[0].Severity != SeverityMedium {
		t.Errorf("severity = %s, want medium", report.Findings[0].Severity)
	}
}

func TestDetectInvalidSizes(t *testing.T) {
	cat := testCatalog(t)

	// Subset of available sizes: fine.
	report := Detect("The Ridgeline [s1] comes in sizes 9 and 10.", cat)
	if report.Count() != 0 {
		t.Errorf("valid size subset flagged: %v", report.Findings)
	}

	// Size 12 is not carried.
	report = Detect("The Ridgeline [s1] comes in sizes 9, 12.", cat)
	if types := findingTypes(report); len(types) != 1 || types[0] != TypeInvalidSizes {
		t.Fatalf("got %v", types)
	}
	if report.Findings[0].Claimed != "12" {
		t.Errorf("Claimed = %q, want only the invalid size", report.Findings[0].Claimed)
	}
}

func TestDetectNoCitationsNoFindings(t *testing.T) {
	cat := testCatalog(t)
	report := Detect("Nothing matching your request was found.", cat)
	if report.Count() != 0 {
		t.Errorf("got %v, want none", report.Findings)
	}
}

func TestExtractClaimsSegments(t *testing.T) {
	cat := testCatalog(t)
	response := "The Ridgeline [s1] costs $200.00 and is in stock. The Pavement [s2] costs $89.50 but is out of stock."

	claims := ExtractClaims(response, cat)
	if len(claims) != 2 {
		t.Fatalf("got %d claims, want 2", len(claims))
	}

	if claims[0].ItemID != "s1" || claims[0].Price == nil || *claims[0].Price != 200.00 {
		t.Errorf("s1 claim = %+v", claims[0])
	}
	if claims[0].InStock == nil || !*claims[0].InStock {
		t.Errorf("s1 stock claim = %+v", claims[0].InStock)
	}
	if claims[1].ItemID != "s2" || claims[1].Price == nil || *claims[1].Price != 89.50 {
		t.Errorf("s2 claim = %+v", claims[1])
	}
	if claims[1].InStock == nil || *claims[1].InStock {
		t.Errorf("s2 stock claim should be out of stock")
	}
}

func TestExtractClaimsMergesRecitations(t *testing.T) {
	cat := testCatalog(t)
	response := "The Ridgeline [s1] costs $200.00. Later: the Ridgeline [s1] is in stock."

	claims := ExtractClaims(response, cat)
	if len(claims) != 1 {
		t.Fatalf("got %d claims, want merged 1", len(claims))
	}
	if claims[0].Price == nil || claims[0].InStock == nil {
		t.Errorf("merge lost facts: %+v", claims[0])
	}
}

func TestCountBySeverity(t *testing.T) {
	cat := testCatalog(t)
	report := Detect("Buy the Ghost [ghost-1]. The Ridgeline [s1] costs $120 and is out of stock.", cat)

	counts := report.CountBySeverity()
	if counts[SeverityCritical] != 1 || counts[SeverityHigh] != 1 || counts[SeverityMedium] != 1 {
		t.Errorf("counts = %v, want one of each", counts)
	}
}
