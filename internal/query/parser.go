package query

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shelfsearch/shelf-search/internal/pkg/logger"
)

// Parser implements rule-based shopping-query understanding.
type Parser struct {
	schema *Schema
	log    *logger.Logger
}

// NewParser creates a parser over the catalog-derived schema.
func NewParser(schema *Schema, log *logger.Logger) *Parser {
	if log == nil {
		log = logger.Nop()
	}
	return &Parser{
		schema: schema,
		log:    log.WithComponent("query"),
	}
}

var (
	maxPriceRe = regexp.MustCompile(`(?:under|below|less than|at most|up to|max(?:imum)?(?: of)?|budget(?: is| of)?|no more than)\s*\$?\s*([0-9]+(?:\.[0-9]{1,2})?)`)
	minPriceRe = regexp.MustCompile(`(?:over|above|more than|at least|min(?:imum)?(?: of)?|starting (?:at|from))\s*\$?\s*([0-9]+(?:\.[0-9]{1,2})?)`)
	betweenRe  = regexp.MustCompile(`between\s*\$?\s*([0-9]+(?:\.[0-9]{1,2})?)\s*and\s*\$?\s*([0-9]+(?:\.[0-9]{1,2})?)`)
)

// Parse extracts keywords and constraints from a shopping query.
func (p *Parser) Parse(text string) *Understanding {
	normalized := normalize(text)

	u := &Understanding{
		Original:   text,
		Normalized: normalized,
		Keywords:   extractKeywords(normalized),
	}

	p.extractBudget(u)
	u.Brand = p.schema.Brand(normalized)
	u.Family = p.schema.Family(normalized)
	u.Features = p.schema.Features(normalized)

	p.log.Debug("parsed query",
		"original", text,
		"keywords", len(u.Keywords),
		"brand", u.Brand,
		"family", u.Family,
		"features", len(u.Features),
	)
	return u
}

// extractBudget pulls price bounds out of the normalized text. A "between"
// range wins over single-sided phrasings.
func (p *Parser) extractBudget(u *Understanding) {
	if m := betweenRe.FindStringSubmatch(u.Normalized); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			if lo > hi {
				lo, hi = hi, lo
			}
			u.MinPrice = &lo
			u.MaxPrice = &hi
			return
		}
	}

	if m := maxPriceRe.FindStringSubmatch(u.Normalized); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			u.MaxPrice = &v
		}
	}
	if m := minPriceRe.FindStringSubmatch(u.Normalized); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			u.MinPrice = &v
		}
	}
}

// normalize collapses whitespace and lowercases for pattern matching.
func normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// stop words excluded from keywords.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "that": true, "the": true,
	"to": true, "with": true, "i": true, "me": true, "my": true, "need": true,
	"want": true, "looking": true, "some": true, "any": true, "please": true,
}

// extractKeywords pulls the content words out of a normalized query.
func extractKeywords(normalized string) []string {
	words := strings.Fields(normalized)
	keywords := make([]string, 0, len(words))

	for _, word := range words {
		word = cleanWord(word)
		if len(word) < 2 || stopWords[word] {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// cleanWord strips punctuation, keeping hyphenated terms intact.
func cleanWord(word string) string {
	var cleaned strings.Builder
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' {
			cleaned.WriteRune(r)
		}
	}
	return cleaned.String()
}
