// Package catalog provides the canonical item catalog.
// The catalog is the source of truth for fact-checking: every item id that
// surfaces anywhere downstream must resolve here.
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AttrKind identifies the variant held by an AttrValue.
type AttrKind int

const (
	KindString AttrKind = iota
	KindNumber
	KindBool
	KindList
)

// String returns the kind name.
func (k AttrKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// AttrValue is a tagged union over the scalar types an item attribute can
// hold. Comparisons operate on the typed variant and fail explicitly on a
// kind mismatch; there is no coercion.
type AttrValue struct {
	Kind AttrKind
	str  string
	num  float64
	b    bool
	list []AttrValue
}

// String creates a string attribute value.
func String(s string) AttrValue {
	return AttrValue{Kind: KindString, str: s}
}

// Number creates a numeric attribute value.
func Number(n float64) AttrValue {
	return AttrValue{Kind: KindNumber, num: n}
}

// Bool creates a boolean attribute value.
func Bool(b bool) AttrValue {
	return AttrValue{Kind: KindBool, b: b}
}

// List creates a list attribute value from scalar elements.
func List(elems ...AttrValue) AttrValue {
	return AttrValue{Kind: KindList, list: elems}
}

// AsString returns the string variant.
func (v AttrValue) AsString() (string, error) {
	if v.Kind != KindString {
		return "", fmt.Errorf("attribute is %s, not string", v.Kind)
	}
	return v.str, nil
}

// AsNumber returns the numeric variant.
func (v AttrValue) AsNumber() (float64, error) {
	if v.Kind != KindNumber {
		return 0, fmt.Errorf("attribute is %s, not number", v.Kind)
	}
	return v.num, nil
}

// AsBool returns the boolean variant.
func (v AttrValue) AsBool() (bool, error) {
	if v.Kind != KindBool {
		return false, fmt.Errorf("attribute is %s, not bool", v.Kind)
	}
	return v.b, nil
}

// AsList returns the list variant.
func (v AttrValue) AsList() ([]AttrValue, error) {
	if v.Kind != KindList {
		return nil, fmt.Errorf("attribute is %s, not list", v.Kind)
	}
	return v.list, nil
}

// Equal reports whether two values hold the same kind and content.
func (v AttrValue) Equal(o AttrValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Text renders the value for textual projection and context building.
// Lists join with commas; numbers drop trailing zeros.
func (v AttrValue) Text() string {
	switch v.Kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.Text()
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// UnmarshalJSON infers the variant from the JSON scalar type. Objects are
// rejected: attribute values are scalars or lists of scalars.
func (v *AttrValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromJSONValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON emits the underlying scalar.
func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		elems := make([]json.RawMessage, len(v.list))
		for i, e := range v.list {
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			elems[i] = b
		}
		return json.Marshal(elems)
	}
	return nil, fmt.Errorf("unknown attribute kind %d", v.Kind)
}

func fromJSONValue(raw interface{}) (AttrValue, error) {
	switch t := raw.(type) {
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return AttrValue{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case []interface{}:
		elems := make([]AttrValue, 0, len(t))
		for _, e := range t {
			ev, err := fromJSONValue(e)
			if err != nil {
				return AttrValue{}, err
			}
			if ev.Kind == KindList {
				return AttrValue{}, fmt.Errorf("nested lists are not valid attribute values")
			}
			elems = append(elems, ev)
		}
		return List(elems...), nil
	case nil:
		return AttrValue{}, fmt.Errorf("null is not a valid attribute value")
	default:
		return AttrValue{}, fmt.Errorf("attribute values must be scalars or lists of scalars, got %T", raw)
	}
}

// Item is one canonical catalog record. Immutable after load.
type Item struct {
	ID             string               `json:"id"`
	Brand          string               `json:"brand"`
	Name           string               `json:"name"`
	Family         string               `json:"family"`
	Price          float64              `json:"price"`
	InStock        bool                 `json:"in_stock"`
	AvailableSizes []string             `json:"available_sizes"`
	Attributes     map[string]AttrValue `json:"attributes"`
}

// DisplayName returns the human-readable item name.
func (i *Item) DisplayName() string {
	if i.Brand == "" {
		return i.Name
	}
	return i.Brand + " " + i.Name
}

// HasSize reports whether size is in the item's available sizes.
func (i *Item) HasSize(size string) bool {
	for _, s := range i.AvailableSizes {
		if s == size {
			return true
		}
	}
	return false
}

// AttributeNames returns the item's attribute names in ascending order.
func (i *Item) AttributeNames() []string {
	names := make([]string, 0, len(i.Attributes))
	for name := range i.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the structural invariants of a single item record.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item id is required")
	}
	if i.Name == "" {
		return fmt.Errorf("item %s: name is required", i.ID)
	}
	if i.Price < 0 {
		return fmt.Errorf("item %s: price cannot be negative", i.ID)
	}
	for _, size := range i.AvailableSizes {
		if strings.TrimSpace(size) == "" {
			return fmt.Errorf("item %s: blank size entry", i.ID)
		}
	}
	return nil
}
