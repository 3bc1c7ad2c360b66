package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/caked-with-love/internal/menu"
	"github.com/tbourn/caked-with-love/internal/search"
)

// MenuService exposes the read-only catalog and keyword search. Category and
// item names are matched exactly first, then case-insensitively; results
// always carry the catalog's canonical names.
type MenuService struct {
	Catalog *menu.Catalog
	Index   search.Index
}

// searchStopwords are packaging words in item names, as in
// "Choco Chip (box of 6)" or "Theme Cake (1 kg)". They say nothing about
// what the customer wants.
var searchStopwords = []string{"a", "an", "the", "of", "box", "kg", "pcs"}

// NewMenuService builds a MenuService with a search index over catalog.
func NewMenuService(catalog *menu.Catalog) *MenuService {
	return &MenuService{
		Catalog: catalog,
		Index:   search.NewMenuIndex(catalog, search.WithStopwords(searchStopwords)),
	}
}

// Menu returns every category in file order.
func (s *MenuService) Menu() []menu.Category {
	return s.Catalog.Categories()
}

// Category returns one category or ErrCategoryNotFound.
func (s *MenuService) Category(name string) (menu.Category, error) {
	c, ok := s.Catalog.ResolveCategory(name)
	if !ok {
		return menu.Category{}, ErrCategoryNotFound
	}
	return c, nil
}

// Price resolves (category, item) to its catalog entry or ErrUnknownItem.
// OrderService.Submit accepts exactly the pairs Price accepts.
func (s *MenuService) Price(category, item string) (menu.Entry, error) {
	e, ok := s.Catalog.Resolve(category, item)
	if !ok {
		return menu.Entry{}, ErrUnknownItem
	}
	return e, nil
}

// Search returns up to k menu entries ranked by keyword overlap with q.
func (s *MenuService) Search(ctx context.Context, q string, k int) []search.Result {
	tr := otel.Tracer("services/MenuService")
	_, span := tr.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("query", q),
			attribute.Int("k", k),
		),
	)
	defer span.End()

	if s.Index == nil {
		return nil
	}
	res := s.Index.TopK(q, k)
	span.SetAttributes(attribute.Int("hits", len(res)))
	return res
}
