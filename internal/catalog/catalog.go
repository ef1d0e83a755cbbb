package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
)

// Catalog holds the canonical item set, keyed by id. Write-once: built by
// Load or New, read-only afterwards.
type Catalog struct {
	items map[string]*Item
	order []string // item ids, ascending
}

// catalogFile is the on-disk JSON shape.
type catalogFile struct {
	Items []Item `json:"items"`
}

// Load reads and validates a catalog JSON file. Any malformed record is a
// validation failure that aborts the load; there is no partial catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, fmt.Sprintf("cannot read catalog file %s", path), err)
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "catalog file is not valid JSON", err)
	}

	return New(file.Items)
}

// New builds a catalog from item records, validating each.
func New(items []Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, errors.ValidationError("catalog contains no items")
	}

	c := &Catalog{
		items: make(map[string]*Item, len(items)),
		order: make([]string, 0, len(items)),
	}

	for idx := range items {
		item := items[idx]
		if err := item.Validate(); err != nil {
			return nil, errors.ValidationError(err.Error()).WithDetail("record", fmt.Sprintf("%d", idx))
		}
		if _, dup := c.items[item.ID]; dup {
			return nil, errors.ValidationError(fmt.Sprintf("duplicate item id %s", item.ID))
		}
		c.items[item.ID] = &item
		c.order = append(c.order, item.ID)
	}

	sort.Strings(c.order)
	return c, nil
}

// Get returns the item for id.
func (c *Catalog) Get(id string) (*Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Has reports whether id exists in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Items returns all items in ascending id order.
func (c *Catalog) Items() []*Item {
	out := make([]*Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

// IDs returns all item ids in ascending order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// FindByName returns the item whose display name or bare name matches
// (case-sensitive), used by claim extraction. Returns nil if no match.
func (c *Catalog) FindByName(name string) *Item {
	for _, id := range c.order {
		item := c.items[id]
		if item.Name == name || item.DisplayName() == name {
			return item
		}
	}
	return nil
}
