// Package triples provides the symbolic attribute store: a fact-triple store
// over catalog items supporting exact pattern queries and per-item attribute
// enumeration. No inference, no free variables; every lookup is ground or
// single-variable, served from multi-map indexes.
package triples

import (
	"sort"
	"sync"

	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// Predicate is the relation kind of a fact triple.
type Predicate string

const (
	IsA          Predicate = "is_a"
	HasCategory  Predicate = "has_category"
	HasAttribute Predicate = "has_attribute"
)

// Triple is one (item_id, predicate, value) fact. For HasAttribute the value
// carries the attribute name alongside its typed value.
type Triple struct {
	ItemID    string
	Predicate Predicate
	Attribute string // set only for HasAttribute
	Value     catalog.AttrValue
}

// Facts is the full attribute set collected for one item. Attributes always
// contains the derived entries "type" (family), "price" and "in_stock" in
// addition to the item's own attributes, so constraint filtering can operate
// on enrichment output alone.
type Facts struct {
	ItemID     string
	Family     string
	Categories []string
	Attributes map[string]catalog.AttrValue
}

// Empty reports whether no triples exist for the item.
func (f Facts) Empty() bool {
	return f.Family == "" && len(f.Categories) == 0 && len(f.Attributes) == 0
}

// Store is the triple store. Built once at ingestion, then read-only.
// Indexed two ways: by item id for enrichment, and by (predicate, value)
// for reverse lookups.
type Store struct {
	mu sync.RWMutex

	byItem      map[string][]Triple
	byPredicate map[Predicate]map[string]struct{}            // predicate -> item ids
	byPredValue map[Predicate]map[string]map[string]struct{} // predicate -> value key -> item ids
}

// NewStore creates an empty triple store.
func NewStore() *Store {
	return &Store{
		byItem:      make(map[string][]Triple),
		byPredicate: make(map[Predicate]map[string]struct{}),
		byPredValue: make(map[Predicate]map[string]map[string]struct{}),
	}
}

// Add inserts one triple into all indexes.
func (s *Store) Add(t Triple) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byItem[t.ItemID] = append(s.byItem[t.ItemID], t)

	if s.byPredicate[t.Predicate] == nil {
		s.byPredicate[t.Predicate] = make(map[string]struct{})
	}
	s.byPredicate[t.Predicate][t.ItemID] = struct{}{}

	key := valueKey(t)
	if s.byPredValue[t.Predicate] == nil {
		s.byPredValue[t.Predicate] = make(map[string]map[string]struct{})
	}
	if s.byPredValue[t.Predicate][key] == nil {
		s.byPredValue[t.Predicate][key] = make(map[string]struct{})
	}
	s.byPredValue[t.Predicate][key][t.ItemID] = struct{}{}
}

// valueKey builds the reverse-lookup key for a triple's value. Kind is part
// of the key so Bool(true) and String("true") never collide.
func valueKey(t Triple) string {
	return t.Attribute + "\x00" + t.Value.Kind.String() + "\x00" + t.Value.Text()
}

// Triples returns every triple recorded for itemID, in insertion order.
// An id with zero triples yields an empty slice, never an error.
func (s *Store) Triples(itemID string) []Triple {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byItem[itemID]
	out := make([]Triple, len(stored))
	copy(out, stored)
	return out
}

// Enrich collects the full attribute set for itemID. An id with zero triples
// yields empty Facts; callers are responsible for only passing ids that exist
// in the catalog.
func (s *Store) Enrich(itemID string) Facts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	facts := Facts{
		ItemID:     itemID,
		Attributes: make(map[string]catalog.AttrValue),
	}

	for _, t := range s.byItem[itemID] {
		switch t.Predicate {
		case IsA:
			facts.Family, _ = t.Value.AsString()
			facts.Attributes["type"] = t.Value
		case HasCategory:
			if c, err := t.Value.AsString(); err == nil {
				facts.Categories = append(facts.Categories, c)
			}
		case HasAttribute:
			facts.Attributes[t.Attribute] = t.Value
		}
	}

	return facts
}

// Query returns the ids of items holding a triple (_, predicate, value) for a
// plain string value (is_a families, has_category categories). Exact match
// only. Result is sorted ascending for determinism.
func (s *Store) Query(predicate Predicate, value string) []string {
	return s.lookup(predicate, Triple{Predicate: predicate, Value: catalog.String(value)})
}

// QueryAttribute returns the ids of items holding has_attribute(name, value).
// Exact typed match only.
func (s *Store) QueryAttribute(name string, value catalog.AttrValue) []string {
	return s.lookup(HasAttribute, Triple{Predicate: HasAttribute, Attribute: name, Value: value})
}

// QueryPredicate returns the ids of items holding any triple with the given
// predicate.
func (s *Store) QueryPredicate(predicate Predicate) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedIDs(s.byPredicate[predicate])
}

func (s *Store) lookup(predicate Predicate, probe Triple) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := s.byPredValue[predicate]
	if values == nil {
		return nil
	}
	return sortedIDs(values[valueKey(probe)])
}

func sortedIDs(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the total number of triples in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, ts := range s.byItem {
		n += len(ts)
	}
	return n
}
