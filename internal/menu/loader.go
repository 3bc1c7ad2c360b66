package menu

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Startup error kinds.
const (
	KindMissing   = "missing"
	KindMalformed = "malformed"
)

// StartupError reports a menu source that cannot be used. The process must
// not start without a catalog.
type StartupError struct {
	Path string
	Kind string // KindMissing or KindMalformed
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("menu %s (%s): %v", e.Kind, e.Path, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		kind := KindMalformed
		if errors.Is(err, fs.ErrNotExist) {
			kind = KindMissing
		}
		return nil, &StartupError{Path: path, Kind: kind, Err: err}
	}
	defer f.Close()

	cat, err := Parse(f)
	if err != nil {
		return nil, &StartupError{Path: path, Kind: KindMalformed, Err: err}
	}
	return cat, nil
}

// Parse decodes a catalog from r. The document must be a non-empty object of
// non-empty objects whose values are positive numbers; duplicate or blank
// names and trailing data are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	c := &Catalog{index: make(map[string]map[string]Price)}

	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}

		cat := Category{Name: name}
		prices := make(map[string]Price)
		for dec.More() {
			item, err := readKey(dec)
			if err != nil {
				return nil, fmt.Errorf("category %q: %w", name, err)
			}
			if _, dup := prices[item]; dup {
				return nil, fmt.Errorf("category %q: duplicate item %q", name, item)
			}
			p, err := readPrice(dec)
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", name, item, err)
			}
			prices[item] = p
			cat.Items = append(cat.Items, Item{Name: item, Price: p})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		if len(cat.Items) == 0 {
			return nil, fmt.Errorf("category %q has no items", name)
		}
		c.index[name] = prices
		c.categories = append(c.categories, cat)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if len(c.categories) == 0 {
		return nil, errors.New("catalog has no categories")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after catalog object")
	}
	return c, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	k, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected name, got %v", tok)
	}
	if strings.TrimSpace(k) == "" {
		return "", errors.New("blank name")
	}
	return k, nil
}

func readPrice(dec *json.Decoder) (Price, error) {
	tok, err := dec.Token()
	if err != nil {
		return 0, err
	}
	num, ok := tok.(json.Number)
	if !ok {
		return 0, fmt.Errorf("price must be a number, got %v", tok)
	}
	f, err := num.Float64()
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("price must be positive, got %s", num)
	}
	return Price(f), nil
}
