// Package search provides a small, deterministic, in-memory keyword index
// over menu entries. It backs the menu view's search box ("chocolate",
// "eggless cupcakes") without involving the completion API.
//
// Each entry is indexed by the tokens of its category and item name. Scoring
// is Jaccard similarity between the query token set and the entry token set,
// score = |Q ∩ E| / |Q ∪ E|. The index is immutable after construction and
// safe for concurrent use.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tbourn/caked-with-love/internal/menu"
)

// Result is a ranked menu entry with its similarity score.
type Result struct {
	Entry menu.Entry `json:"entry"`
	Score float64    `json:"score"`
}

// Index is the minimal interface implemented by menu search indices.
type Index interface {
	TopK(query string, k int) []Result
}

// Option configures index construction.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
}

// WithStopwords drops the given words from both entries and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

type doc struct {
	entry  menu.Entry
	tokens map[string]struct{}
	order  int
}

type index struct {
	cfg  config
	docs []doc
}

// NewMenuIndex builds an Index over every entry of the catalog.
func NewMenuIndex(c *menu.Catalog, opts ...Option) Index {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	entries := c.Entries()
	docs := make([]doc, 0, len(entries))
	for i, e := range entries {
		toks := tokenize(e.Category+" "+e.Item, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{entry: e, tokens: toks, order: i})
	}
	return &index{cfg: cfg, docs: docs}
}

// TopK returns up to k best-matching entries. Ties keep catalog order.
// A k <= 0 defaults to 5.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 5
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}

	type scored struct {
		doc   doc
		score float64
	}
	var buf []scored
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(len(qTokens) + len(d.tokens) - over)
		buf = append(buf, scored{doc: d, score: float64(over) / union})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		return buf[a].doc.order < buf[b].doc.order
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = Result{Entry: buf[n].doc.entry, Score: buf[n].score}
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
