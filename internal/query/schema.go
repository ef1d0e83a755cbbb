package query

import (
	"sort"
	"strings"

	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// Schema is the catalog-derived vocabulary the parser detects against:
// known brands, item families, and boolean attribute names.
type Schema struct {
	brands   map[string]string // lowercase -> canonical
	families map[string]string
	features map[string]string // lowercase, underscores as spaces -> attribute name
}

// SchemaFromCatalog builds the detection vocabulary from the loaded catalog.
func SchemaFromCatalog(cat *catalog.Catalog) *Schema {
	s := &Schema{
		brands:   make(map[string]string),
		families: make(map[string]string),
		features: make(map[string]string),
	}

	for _, item := range cat.Items() {
		if item.Brand != "" {
			s.brands[strings.ToLower(item.Brand)] = item.Brand
		}
		if item.Family != "" {
			s.families[strings.ToLower(item.Family)] = item.Family
		}
		for _, name := range item.AttributeNames() {
			if item.Attributes[name].Kind == catalog.KindBool {
				mention := strings.ToLower(strings.ReplaceAll(name, "_", " "))
				s.features[mention] = name
			}
		}
	}
	return s
}

// Brand returns the canonical brand mentioned in the normalized query, or "".
func (s *Schema) Brand(normalized string) string {
	return s.match(s.brands, normalized)
}

// Family returns the item family mentioned in the normalized query, or "".
func (s *Schema) Family(normalized string) string {
	return s.match(s.families, normalized)
}

// Features returns the boolean attribute names mentioned in the normalized
// query, in attribute-name order.
func (s *Schema) Features(normalized string) []string {
	var found []string
	seen := make(map[string]bool)
	for mention, name := range s.features {
		if containsWord(normalized, mention) && !seen[name] {
			found = append(found, name)
			seen[name] = true
		}
	}
	sort.Strings(found)
	return found
}

func (s *Schema) match(vocab map[string]string, normalized string) string {
	best := ""
	for mention, canonical := range vocab {
		if !containsWord(normalized, mention) {
			continue
		}
		// Prefer the longest mention so "trail running" beats "trail".
		if best == "" || len(mention) > len(strings.ToLower(best)) {
			best = canonical
		}
	}
	return best
}

// containsWord reports whether phrase occurs in text on word boundaries.
func containsWord(text, phrase string) bool {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		before := idx == 0 || !isWordByte(text[idx-1])
		after := idx+len(phrase) == len(text) || !isWordByte(text[idx+len(phrase)])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
