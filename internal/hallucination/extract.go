package hallucination

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// ItemClaim is the set of checkable facts a response states about one cited
// item. Nil pointer fields mean the response made no claim about that fact.
type ItemClaim struct {
	ItemID    string
	Price     *float64
	InStock   *bool
	Sizes     []string
	BoolAttrs map[string]bool
}

var (
	citationRe = regexp.MustCompile(`\[([^\[\]\s]+)\]`)
	priceRe    = regexp.MustCompile(`\$\s?([0-9]+(?:\.[0-9]{1,2})?)`)
	sizesRe    = regexp.MustCompile(`(?i)sizes?\s+([0-9]+(?:\.[0-9])?(?:\s*(?:,|and)\s*[0-9]+(?:\.[0-9])?)*)`)
	sizeSplit  = regexp.MustCompile(`\s*(?:,|and)\s*`)
)

// negations that flip a feature mention to a false claim when they appear
// just before the attribute name.
var negationMarkers = []string{"not ", "isn't ", "is not ", "no ", "non-", "lacks ", "without "}

// ExtractClaims parses a response into per-item claims. Items are identified
// by their bracket citations; each citation's claims are read from the text
// span between the neighboring citations, so a sentence like "the Ridgeline
// [s1] costs $149.99" attaches the price to s1.
func ExtractClaims(response string, cat *catalog.Catalog) []ItemClaim {
	matches := citationRe.FindAllStringSubmatchIndex(response, -1)
	if len(matches) == 0 {
		return nil
	}

	claims := make([]ItemClaim, 0, len(matches))
	seen := make(map[string]int)

	for i, m := range matches {
		id := response[m[2]:m[3]]

		segStart := 0
		if i > 0 {
			segStart = matches[i-1][1]
		}
		segEnd := len(response)
		if i < len(matches)-1 {
			segEnd = matches[i+1][0]
		}

		// Trim the leading remainder of the previous citation's sentence so
		// its facts do not bleed into this claim.
		segment := response[segStart:segEnd]
		if cut := lastSentenceBreak(segment[:m[0]-segStart]); cut > 0 {
			segment = segment[cut:]
		}

		claim := claimFromSegment(id, segment, cat)

		// A re-citation of the same item merges into its first claim.
		if idx, dup := seen[id]; dup {
			claims[idx] = mergeClaims(claims[idx], claim)
			continue
		}
		seen[id] = len(claims)
		claims = append(claims, claim)
	}
	return claims
}

func claimFromSegment(id, segment string, cat *catalog.Catalog) ItemClaim {
	claim := ItemClaim{ItemID: id}
	lower := strings.ToLower(segment)

	if m := priceRe.FindStringSubmatch(segment); m != nil {
		if p, err := strconv.ParseFloat(m[1], 64); err == nil {
			claim.Price = &p
		}
	}

	// "out of stock" contains "of stock", so check the negative phrasings
	// first.
	switch {
	case strings.Contains(lower, "out of stock"), strings.Contains(lower, "not in stock"),
		strings.Contains(lower, "unavailable"), strings.Contains(lower, "sold out"):
		claim.InStock = boolPtr(false)
	case strings.Contains(lower, "in stock"), strings.Contains(lower, "available now"):
		claim.InStock = boolPtr(true)
	}

	if m := sizesRe.FindStringSubmatch(segment); m != nil {
		for _, s := range sizeSplit.Split(m[1], -1) {
			if s = strings.TrimSpace(s); s != "" {
				claim.Sizes = append(claim.Sizes, s)
			}
		}
	}

	// Boolean feature claims are only checkable against a known item's
	// boolean attributes.
	if item, ok := cat.Get(id); ok {
		for _, name := range item.AttributeNames() {
			if item.Attributes[name].Kind != catalog.KindBool {
				continue
			}
			mention := strings.ToLower(strings.ReplaceAll(name, "_", " "))
			idx := strings.Index(lower, mention)
			if idx < 0 {
				continue
			}
			if claim.BoolAttrs == nil {
				claim.BoolAttrs = make(map[string]bool)
			}
			claim.BoolAttrs[name] = !negatedAt(lower, idx)
		}
	}

	return claim
}

// lastSentenceBreak returns the index just past the last sentence boundary
// in s, or 0 when s is a single sentence. Decimal points do not count: a
// boundary is a terminator followed by whitespace.
func lastSentenceBreak(s string) int {
	for i := len(s) - 1; i > 0; i-- {
		if s[i] != ' ' && s[i] != '\n' && s[i] != '\t' {
			continue
		}
		switch s[i-1] {
		case '.', '!', '?':
			return i + 1
		}
	}
	return 0
}

// negatedAt reports whether a negation marker immediately precedes the
// mention at idx.
func negatedAt(lower string, idx int) bool {
	prefix := lower[:idx]
	for _, neg := range negationMarkers {
		if strings.HasSuffix(prefix, neg) {
			return true
		}
	}
	return false
}

func mergeClaims(base, extra ItemClaim) ItemClaim {
	if base.Price == nil {
		base.Price = extra.Price
	}
	if base.InStock == nil {
		base.InStock = extra.InStock
	}
	if len(base.Sizes) == 0 {
		base.Sizes = extra.Sizes
	}
	for name, v := range extra.BoolAttrs {
		if base.BoolAttrs == nil {
			base.BoolAttrs = make(map[string]bool)
		}
		if _, ok := base.BoolAttrs[name]; !ok {
			base.BoolAttrs[name] = v
		}
	}
	return base
}

func boolPtr(b bool) *bool { return &b }
