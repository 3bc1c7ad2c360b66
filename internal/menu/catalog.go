// Package menu holds the bakery's static catalog: categories of items with
// prices, loaded once at startup from a JSON file of the form
//
//	{"Cakes": {"Chocolate": 500, "Red Velvet": 650}, "Cupcakes": {...}}
//
// The catalog keeps the file's key order so the menu renders, and is embedded
// in completion prompts, exactly as the baker wrote it. A Catalog is never
// mutated after Parse returns and is safe for concurrent use.
package menu

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Price is an amount in rupees.
type Price float64

// String renders the price for display, e.g. "₹500" or "₹42.5".
func (p Price) String() string {
	return "₹" + p.Number()
}

// Number renders the bare amount without a currency sign or trailing zeros.
func (p Price) Number() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}

// Item is a single priced menu entry within a category.
type Item struct {
	Name  string `json:"name"  example:"Chocolate"`
	Price Price  `json:"price" example:"500"`
}

// Category is a named group of items in file order.
type Category struct {
	Name  string `json:"name"  example:"Cakes"`
	Items []Item `json:"items"`
}

// Entry is a flattened (category, item, price) triple.
type Entry struct {
	Category string `json:"category"`
	Item     string `json:"item"`
	Price    Price  `json:"price"`
}

// Catalog maps category name → item name → price.
type Catalog struct {
	categories []Category
	index      map[string]map[string]Price
}

// Categories returns the categories in file order. The returned slice is a
// copy; items are shared but never modified.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// CategoryNames returns the category names in file order.
func (c *Catalog) CategoryNames() []string {
	out := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, cat.Name)
	}
	return out
}

// Category returns the named category.
func (c *Catalog) Category(name string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// ResolveCategory finds a category by name, trying an exact match before a
// case-insensitive one. Surrounding whitespace is ignored.
func (c *Catalog) ResolveCategory(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	if cat, ok := c.Category(name); ok {
		return cat, true
	}
	fold := cases.Fold()
	want := fold.String(name)
	for _, cat := range c.categories {
		if fold.String(cat.Name) == want {
			return cat, true
		}
	}
	return Category{}, false
}

// Resolve finds the entry for (category, item) with the same matching rule
// as ResolveCategory. The entry carries the catalog's own spelling of both
// names.
func (c *Catalog) Resolve(category, item string) (Entry, bool) {
	cat, ok := c.ResolveCategory(category)
	if !ok {
		return Entry{}, false
	}
	item = strings.TrimSpace(item)
	if p, ok := c.Lookup(cat.Name, item); ok {
		return Entry{Category: cat.Name, Item: item, Price: p}, true
	}
	fold := cases.Fold()
	want := fold.String(item)
	for _, it := range cat.Items {
		if fold.String(it.Name) == want {
			return Entry{Category: cat.Name, Item: it.Name, Price: it.Price}, true
		}
	}
	return Entry{}, false
}

// Items returns the items of category in file order.
func (c *Catalog) Items(category string) ([]Item, bool) {
	cat, ok := c.Category(category)
	if !ok {
		return nil, false
	}
	out := make([]Item, len(cat.Items))
	copy(out, cat.Items)
	return out, true
}

// Lookup returns the catalog price of item within category.
func (c *Catalog) Lookup(category, item string) (Price, bool) {
	items, ok := c.index[category]
	if !ok {
		return 0, false
	}
	p, ok := items[item]
	return p, ok
}

// Entries flattens the catalog in file order.
func (c *Catalog) Entries() []Entry {
	var out []Entry
	for _, cat := range c.categories {
		for _, it := range cat.Items {
			out = append(out, Entry{Category: cat.Name, Item: it.Name, Price: it.Price})
		}
	}
	return out
}

// Len returns the number of items across all categories.
func (c *Catalog) Len() int {
	n := 0
	for _, cat := range c.categories {
		n += len(cat.Items)
	}
	return n
}

// JSON serializes the catalog compactly, preserving file order.
func (c *Catalog) JSON() string {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, cat := range c.categories {
		if i > 0 {
			b.WriteByte(',')
		}
		writeKey(&b, cat.Name)
		b.WriteByte('{')
		for j, it := range cat.Items {
			if j > 0 {
				b.WriteByte(',')
			}
			writeKey(&b, it.Name)
			b.WriteString(it.Price.Number())
		}
		b.WriteByte('}')
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON implements json.Marshaler with the same ordered form as JSON.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return []byte(c.JSON()), nil
}

func writeKey(b *bytes.Buffer, k string) {
	// Marshalling a string cannot fail.
	raw, _ := json.Marshal(k)
	b.Write(raw)
	b.WriteByte(':')
}
