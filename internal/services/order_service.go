// Package services – OrderService
//
// This file implements order intake: it validates a submitted order form
// against the menu catalog, stamps it and appends it to the ledger. The price
// always comes from the catalog, never from the form.
package services

import (
	"context"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/caked-with-love/internal/domain"
	"github.com/tbourn/caked-with-love/internal/menu"
	"github.com/tbourn/caked-with-love/internal/observability"
)

// OrderLedger defines the storage contract required by OrderService.
// repo.Ledger is the production implementation.
type OrderLedger interface {
	// Append adds rec and returns the total number of stored orders.
	Append(ctx context.Context, rec domain.OrderRecord) (int, error)
	// Export writes every stored order as CSV.
	Export(ctx context.Context, w io.Writer) error
	// Stats returns the order count and last modification time (nil when empty).
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// OrderForm is the customer input for one order.
type OrderForm struct {
	Name         string `json:"name"          example:"Asha"`
	Phone        string `json:"phone"         example:"9999999999"`
	Category     string `json:"category"      example:"Cakes"`
	Item         string `json:"item"          example:"Chocolate"`
	Occasion     string `json:"occasion"      example:"Birthday"`
	DeliveryDate string `json:"delivery_date" example:"2026-10-20"`
	Notes        string `json:"notes"         example:"Pink frosting, unicorn topper"`
}

// CategoryOption lists the orderable items of one category.
type CategoryOption struct {
	Category string   `json:"category" example:"Cakes"`
	Items    []string `json:"items"`
}

// OrderOptions holds the choices offered by the order form.
type OrderOptions struct {
	Menu      []CategoryOption `json:"menu"`
	Occasions []string         `json:"occasions"`
}

// OrderService validates and records orders.
type OrderService struct {
	Catalog *menu.Catalog
	Ledger  OrderLedger

	// Now is the clock used for timestamps and the default delivery date.
	Now func() time.Time
}

// NewOrderService constructs an OrderService using the local wall clock.
func NewOrderService(catalog *menu.Catalog, ledger OrderLedger) *OrderService {
	return &OrderService{Catalog: catalog, Ledger: ledger, Now: time.Now}
}

// Submit validates f, prices it from the catalog and appends it to the
// ledger. It returns the stored record and the ledger size after the append.
// Name and phone are optional; an empty delivery date means today.
func (s *OrderService) Submit(ctx context.Context, f OrderForm) (*domain.OrderRecord, int, error) {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("order.category", f.Category),
			attribute.String("order.item", f.Item),
		),
	)
	defer span.End()

	rec, err := s.validate(f)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.Ledger.Append(ctx, *rec)
	if err != nil {
		observability.OrdersSubmitted.WithLabelValues("error").Inc()
		span.RecordError(err)
		return nil, 0, err
	}
	observability.OrdersSubmitted.WithLabelValues("ok").Inc()
	return rec, total, nil
}

func (s *OrderService) validate(f OrderForm) (*domain.OrderRecord, error) {
	entry, ok := s.Catalog.Resolve(f.Category, f.Item)
	if !ok {
		return nil, ErrUnknownItem
	}

	occasion := strings.TrimSpace(f.Occasion)
	if !domain.ValidOccasion(occasion) {
		return nil, ErrInvalidOccasion
	}

	now := s.now()
	date := strings.TrimSpace(f.DeliveryDate)
	if date == "" {
		date = now.Format(domain.DeliveryDateLayout)
	} else if _, err := time.Parse(domain.DeliveryDateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	return &domain.OrderRecord{
		Name:         strings.TrimSpace(f.Name),
		Phone:        strings.TrimSpace(f.Phone),
		Category:     entry.Category,
		Item:         entry.Item,
		Price:        float64(entry.Price),
		Occasion:     occasion,
		DeliveryDate: date,
		Notes:        strings.TrimSpace(f.Notes),
		Timestamp:    now.Format(domain.TimestampLayout),
	}, nil
}

// Options returns the form choices: every category with its items in menu
// order, plus the occasions.
func (s *OrderService) Options() OrderOptions {
	cats := s.Catalog.Categories()
	out := OrderOptions{
		Menu:      make([]CategoryOption, 0, len(cats)),
		Occasions: append([]string(nil), domain.Occasions...),
	}
	for _, c := range cats {
		opt := CategoryOption{Category: c.Name, Items: make([]string, 0, len(c.Items))}
		for _, it := range c.Items {
			opt.Items = append(opt.Items, it.Name)
		}
		out.Menu = append(out.Menu, opt)
	}
	return out
}

// Export streams the whole ledger as CSV.
func (s *OrderService) Export(ctx context.Context, w io.Writer) error {
	tr := otel.Tracer("services/OrderService")
	ctx, span := tr.Start(ctx, "Export")
	defer span.End()
	return s.Ledger.Export(ctx, w)
}

// Stats returns the order count and the ledger's last modification time.
func (s *OrderService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return s.Ledger.Stats(ctx)
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
