package menu

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleMenu = `{
  "Cakes": {"Chocolate": 500, "Red Velvet": 650, "Pineapple": 450},
  "Cupcakes": {"Vanilla (6 pcs)": 300, "Nutella (6 pcs)": 420.5},
  "Brownies": {"Walnut": 80}
}`

func mustParse(t *testing.T, s string) *Catalog {
	t.Helper()
	c, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestParse_PreservesFileOrder(t *testing.T) {
	c := mustParse(t, sampleMenu)

	names := c.CategoryNames()
	want := []string{"Cakes", "Cupcakes", "Brownies"}
	if strings.Join(names, "|") != strings.Join(want, "|") {
		t.Fatalf("categories = %v; want %v", names, want)
	}
	cakes, ok := c.Category("Cakes")
	if !ok || len(cakes.Items) != 3 || cakes.Items[1].Name != "Red Velvet" || cakes.Items[2].Name != "Pineapple" {
		t.Fatalf("unexpected cakes: %+v", cakes)
	}
	if c.Len() != 6 {
		t.Fatalf("Len = %d; want 6", c.Len())
	}
	entries := c.Entries()
	if len(entries) != 6 || entries[3] != (Entry{Category: "Cupcakes", Item: "Vanilla (6 pcs)", Price: 300}) {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLookup_ReturnsCatalogPrice(t *testing.T) {
	c := mustParse(t, sampleMenu)
	for _, e := range c.Entries() {
		p, ok := c.Lookup(e.Category, e.Item)
		if !ok || p != e.Price {
			t.Fatalf("Lookup(%q,%q) = %v,%v; want %v", e.Category, e.Item, p, ok, e.Price)
		}
	}
	if _, ok := c.Lookup("Cakes", "Vanilla (6 pcs)"); ok {
		t.Fatalf("item from another category must not resolve")
	}
	if _, ok := c.Lookup("Pies", "Apple"); ok {
		t.Fatalf("unknown category must not resolve")
	}

	items, ok := c.Items("Cakes")
	if !ok || len(items) != 3 || items[0].Name != "Chocolate" {
		t.Fatalf("Items(Cakes) = %+v, %v", items, ok)
	}
	if _, ok := c.Items("Pies"); ok {
		t.Fatalf("Items on unknown category must fail")
	}
}

func TestPrice_String(t *testing.T) {
	cases := map[Price]string{500: "₹500", 420.5: "₹420.5", 1200: "₹1200"}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Fatalf("Price(%v).String() = %q; want %q", float64(p), got, want)
		}
	}
}

func TestJSON_OrderedCompactAndValid(t *testing.T) {
	c := mustParse(t, `{"Cakes": {"Chocolate": 500}}`)
	if got := c.JSON(); got != `{"Cakes":{"Chocolate":500}}` {
		t.Fatalf("JSON = %s", got)
	}

	full := mustParse(t, sampleMenu)
	var back map[string]map[string]float64
	if err := json.Unmarshal([]byte(full.JSON()), &back); err != nil {
		t.Fatalf("catalog JSON is not valid JSON: %v", err)
	}
	if back["Cupcakes"]["Nutella (6 pcs)"] != 420.5 {
		t.Fatalf("round trip lost price: %v", back)
	}
	if !strings.HasPrefix(full.JSON(), `{"Cakes":{"Chocolate":500,"Red Velvet":650`) {
		t.Fatalf("file order lost: %s", full.JSON())
	}

	raw, err := json.Marshal(full)
	if err != nil || string(raw) != full.JSON() {
		t.Fatalf("MarshalJSON mismatch: %s err=%v", raw, err)
	}
}

func TestParse_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `nope`,
		"array":             `[]`,
		"empty":             `{}`,
		"empty category":    `{"Cakes": {}}`,
		"string price":      `{"Cakes": {"Chocolate": "500"}}`,
		"zero price":        `{"Cakes": {"Chocolate": 0}}`,
		"negative price":    `{"Cakes": {"Chocolate": -5}}`,
		"nested price":      `{"Cakes": {"Chocolate": {"small": 5}}}`,
		"category not obj":  `{"Cakes": 5}`,
		"duplicate item":    `{"Cakes": {"A": 1, "A": 2}}`,
		"duplicate cat":     `{"Cakes": {"A": 1}, "Cakes": {"B": 2}}`,
		"blank name":        `{" ": {"A": 1}}`,
		"trailing data":     `{"Cakes": {"A": 1}} {}`,
		"truncated":         `{"Cakes": {"A": 1}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error for %s", doc)
			}
		})
	}
}

func TestLoad_StartupErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.json"))
	var se *StartupError
	if !errors.As(err, &se) || se.Kind != KindMissing {
		t.Fatalf("expected missing StartupError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("StartupError should unwrap to ErrNotExist: %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"Cakes":`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(bad)
	if !errors.As(err, &se) || se.Kind != KindMalformed {
		t.Fatalf("expected malformed StartupError, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad.json") {
		t.Fatalf("error should name the file: %v", err)
	}

	good := filepath.Join(dir, "menu.json")
	if err := os.WriteFile(good, []byte(sampleMenu), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(good)
	if err != nil || c.Len() != 6 {
		t.Fatalf("Load good: %v len=%d", err, c.Len())
	}
}

func TestResolve_ExactThenFolded(t *testing.T) {
	c := mustParse(t, sampleMenu)

	cases := []struct {
		category, item string
		want           Entry
	}{
		{"Cakes", "Red Velvet", Entry{Category: "Cakes", Item: "Red Velvet", Price: 650}},
		{"cakes", "red velvet", Entry{Category: "Cakes", Item: "Red Velvet", Price: 650}},
		{" CUPCAKES ", " nutella (6 PCS) ", Entry{Category: "Cupcakes", Item: "Nutella (6 pcs)", Price: 420.5}},
	}
	for _, tc := range cases {
		got, ok := c.Resolve(tc.category, tc.item)
		if !ok || got != tc.want {
			t.Fatalf("Resolve(%q,%q) = %+v,%v; want %+v", tc.category, tc.item, got, ok, tc.want)
		}
	}

	for _, bad := range [][2]string{{"cakes", "walnut"}, {"pies", "apple"}, {"", ""}, {"Cakes", ""}} {
		if e, ok := c.Resolve(bad[0], bad[1]); ok {
			t.Fatalf("Resolve(%q,%q) = %+v; want no match", bad[0], bad[1], e)
		}
	}

	cat, ok := c.ResolveCategory("bROWNIES")
	if !ok || cat.Name != "Brownies" || len(cat.Items) != 1 {
		t.Fatalf("ResolveCategory = %+v,%v", cat, ok)
	}
}
