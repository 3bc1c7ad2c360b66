// Order HTTP handlers.
//
// This file exposes the order form endpoints:
//   - GET  /orders/options   (form choices)
//   - POST /orders           (validate, price and record an order)
//   - GET  /orders/export    (ledger download as CSV, ETag support)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a stored response exists
// for (client, key), the handler returns that response verbatim and sets
// `Idempotency-Replayed: true`. The order is not appended twice.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/caked-with-love/internal/domain"
	"github.com/tbourn/caked-with-love/internal/http/middleware"
	"github.com/tbourn/caked-with-love/internal/repo"
	"github.com/tbourn/caked-with-love/internal/services"
)

// IdempotencyScopeOrders namespaces stored order responses.
const IdempotencyScopeOrders = "orders"

// HeaderIdempotencyReplayed marks a response served from the idempotency store.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const jsonContentType = "application/json; charset=utf-8"

// CreateOrderResponse is the result of a successful order submission.
type CreateOrderResponse struct {
	Order       *domain.OrderRecord `json:"order"`
	TotalOrders int                 `json:"total_orders" example:"1"`
}

// normalizeForm applies NFC composition and trims every field.
func normalizeForm(f services.OrderForm) services.OrderForm {
	clean := func(s string) string { return strings.TrimSpace(norm.NFC.String(s)) }
	return services.OrderForm{
		Name:         clean(f.Name),
		Phone:        clean(f.Phone),
		Category:     clean(f.Category),
		Item:         clean(f.Item),
		Occasion:     clean(f.Occasion),
		DeliveryDate: clean(f.DeliveryDate),
		Notes:        clean(f.Notes),
	}
}

// GetOrderOptions godoc
// @ID          getOrderOptions
// @Summary     Order form choices
// @Description Categories with their items in menu order, and the accepted occasions.
// @Tags        Orders
// @Produce     json
// @Success     200  {object}  services.OrderOptions
// @Router      /orders/options [get]
func (h *Handlers) GetOrderOptions(c *gin.Context) {
	ok(c, http.StatusOK, h.orderSvc.Options())
}

// CreateOrder godoc
// @ID          createOrder
// @Summary     Submit an order
// @Description Validates the form against the menu, takes the price from the catalog, stamps the
// @Description submission time and appends the order to the ledger.
// @Description Supports idempotency via the Idempotency-Key header (same key, same response).
// @Tags        Orders
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string              false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       X-Client-ID      header  string              false  "Stable client identifier"          example(kiosk-1)
// @Param       body             body    services.OrderForm  true   "Order form"
//
// @Success     201  {object}  handlers.CreateOrderResponse
// @Header      201  {string}  Idempotency-Replayed  "true when served from the idempotency store"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Ledger could not be written"
// @Router      /orders [post]
func (h *Handlers) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()

	var form services.OrderForm
	if err := c.ShouldBindJSON(&form); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	clientID := middleware.ClientID(c)
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && h.idem != nil {
		status, body, found, err := h.idem.Lookup(ctx, IdempotencyScopeOrders, clientID, idemKey, time.Now().UTC())
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		} else if found {
			c.Header(HeaderIdempotencyReplayed, "true")
			c.Data(status, jsonContentType, []byte(body))
			return
		}
	}

	rec, total, err := h.orderSvc.Submit(ctx, normalizeForm(form))
	if err != nil {
		var pe *repo.PersistenceError
		switch {
		case errors.Is(err, services.ErrUnknownItem):
			fail(c, http.StatusBadRequest, ErrCodeUnknownItem, err.Error())
		case errors.Is(err, services.ErrInvalidOccasion):
			fail(c, http.StatusBadRequest, ErrCodeInvalidOccasion, err.Error())
		case errors.Is(err, services.ErrInvalidDate):
			fail(c, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		case errors.As(err, &pe):
			fail(c, http.StatusInternalServerError, ErrCodePersistenceFailed, "order could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	middleware.LoggerFrom(c).Info().
		Str("category", rec.Category).
		Str("item", rec.Item).
		Int("total_orders", total).
		Msg("order recorded")

	body, err := json.Marshal(CreateOrderResponse{Order: rec, TotalOrders: total})
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	// Best effort: the order is already recorded.
	if idemKey != "" && h.idem != nil {
		if err := h.idem.Save(ctx, IdempotencyScopeOrders, clientID, idemKey, http.StatusCreated, string(body), time.Now().UTC()); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency save failed")
		}
	}

	c.Data(http.StatusCreated, jsonContentType, body)
}

// ExportOrders godoc
// @ID          exportOrders
// @Summary     Download the order ledger
// @Description Returns every recorded order as CSV. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Orders
// @Produce     text/csv
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/"orders:3:1760796191")
//
// @Success     200  {string}  string  "CSV file"
// @Header      200  {string}  ETag                 "Weak ETag for the current ledger"
// @Header      200  {string}  Content-Disposition  "attachment; filename=\"orders.csv\""
// @Success     304  {string}  string  "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Ledger unreadable"
// @Router      /orders/export [get]
func (h *Handlers) ExportOrders(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if count, modTime, err := h.orderSvc.Stats(ctx); err == nil {
		var ts int64
		if modTime != nil {
			ts = modTime.Unix()
		}
		etag := fmt.Sprintf(`W/"orders:%d:%d"`, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	var buf bytes.Buffer
	if err := h.orderSvc.Export(ctx, &buf); err != nil {
		var pe *repo.PersistenceError
		if errors.As(err, &pe) {
			fail(c, http.StatusInternalServerError, ErrCodePersistenceFailed, "order ledger unreadable")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
