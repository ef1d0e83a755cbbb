package triples

import (
	"github.com/shelfsearch/shelf-search/internal/catalog"
)

// categoriesAttr is the item attribute whose list elements become
// has_category triples instead of a has_attribute triple.
const categoriesAttr = "categories"

// BuildFromCatalog derives the triple store 1:1 from catalog items:
//
//	is_a(id, family)                      for items with a family
//	has_category(id, c)                   per element of the "categories" attribute
//	has_attribute(id, name, value)        per remaining attribute
//	has_attribute(id, "price", price)     always
//	has_attribute(id, "in_stock", stock)  always
//	has_attribute(id, "brand", brand)     for items with a brand
//
// Rebuilding from scratch is the only update path; the store carries no
// incremental-update guarantee.
func BuildFromCatalog(c *catalog.Catalog) *Store {
	s := NewStore()

	for _, item := range c.Items() {
		if item.Family != "" {
			s.Add(Triple{ItemID: item.ID, Predicate: IsA, Value: catalog.String(item.Family)})
		}

		for _, name := range item.AttributeNames() {
			value := item.Attributes[name]
			if name == categoriesAttr {
				if elems, err := value.AsList(); err == nil {
					for _, e := range elems {
						s.Add(Triple{ItemID: item.ID, Predicate: HasCategory, Value: e})
					}
					continue
				}
				// A non-list categories attribute is a single category.
				s.Add(Triple{ItemID: item.ID, Predicate: HasCategory, Value: value})
				continue
			}
			s.Add(Triple{ItemID: item.ID, Predicate: HasAttribute, Attribute: name, Value: value})
		}

		s.Add(Triple{ItemID: item.ID, Predicate: HasAttribute, Attribute: "price", Value: catalog.Number(item.Price)})
		s.Add(Triple{ItemID: item.ID, Predicate: HasAttribute, Attribute: "in_stock", Value: catalog.Bool(item.InStock)})
		if item.Brand != "" {
			s.Add(Triple{ItemID: item.ID, Predicate: HasAttribute, Attribute: "brand", Value: catalog.String(item.Brand)})
		}
	}

	return s
}
