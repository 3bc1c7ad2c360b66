package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/caked-with-love/internal/completion"
	"github.com/tbourn/caked-with-love/internal/http/middleware"
	"github.com/tbourn/caked-with-love/internal/menu"
	"github.com/tbourn/caked-with-love/internal/repo"
	"github.com/tbourn/caked-with-love/internal/services"
	"github.com/tbourn/caked-with-love/internal/session"
)

// ---------- fakes ----------

type scriptedClient struct {
	mu    sync.Mutex
	calls int
	reply func(n int, msgs []completion.Message) (string, error)
}

func (s *scriptedClient) Complete(_ context.Context, msgs []completion.Message) (string, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	s.mu.Unlock()
	if s.reply == nil {
		return fmt.Sprintf("reply %d", n), nil
	}
	return s.reply(n, msgs)
}

// ---------- harness ----------

const testMenu = `{"Cakes":{"Chocolate":500,"Red Velvet":650},"Cupcakes":{"Vanilla":120}}`

type harness struct {
	r        *gin.Engine
	sessions *session.Store
	client   *scriptedClient
	ledger   *repo.Ledger
	orders   *services.OrderService
	db       *gorm.DB
}

func newMemDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	catalog, err := menu.Parse(strings.NewReader(testMenu))
	if err != nil {
		t.Fatalf("menu.Parse: %v", err)
	}
	h := &harness{
		sessions: session.NewStore(time.Hour),
		client:   &scriptedClient{},
		ledger:   repo.NewLedger(filepath.Join(t.TempDir(), "orders.csv")),
		db:       newMemDB(t),
	}
	h.orders = services.NewOrderService(catalog, h.ledger)
	h.orders.Now = func() time.Time { return time.Date(2026, 10, 18, 14, 3, 11, 0, time.Local) }

	hs := New(
		h.sessions,
		services.NewChatService(h.client, catalog, 40),
		services.NewMenuService(catalog),
		h.orders,
		&repo.IdempotencyStore{DB: h.db, TTL: 24 * time.Hour},
	)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/sessions", hs.CreateSession)
	r.GET("/sessions/:id", hs.GetSession)
	r.DELETE("/sessions/:id", hs.DeleteSession)
	r.POST("/sessions/:id/messages", hs.PostMessage)
	r.GET("/menu", hs.GetMenu)
	r.GET("/menu/categories/:category", hs.GetCategory)
	r.GET("/menu/price", hs.GetPrice)
	r.GET("/menu/search", hs.SearchMenu)
	r.GET("/orders/options", hs.GetOrderOptions)
	r.POST("/orders", middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil), hs.CreateOrder)
	r.GET("/orders/export", hs.ExportOrders)
	h.r = r
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, w.Body.String())
	}
	return v
}

func wantError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d; want %d (body=%s)", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.Code != code || er.RequestID == "" {
		t.Fatalf("error body = %+v; want code %q with request id", er, code)
	}
}
