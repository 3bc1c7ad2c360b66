package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/caked-with-love/internal/domain"
)

func newIdemDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid schema leakage across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestGetIdempotency_BlankKey_ReturnsNotFound(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	rec, err := GetIdempotency(context.Background(), db, "orders", "ip:1.2.3.4", "   ", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID:        "expired",
		Scope:     "orders",
		ClientID:  "c1",
		Key:       "k1",
		Status:    201,
		Body:      `{}`,
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	rec, err := GetIdempotency(context.Background(), db, "orders", "c1", "k1", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}

	rec2, err2 := GetIdempotency(context.Background(), db, "orders", "c1", "missing", now)
	if rec2 != nil || err2 != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec2, err2)
	}
}

func TestCreateIdempotency_SuccessAndDuplicate(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	ttl := 90 * time.Minute
	start := time.Now().UTC()

	rec, err := CreateIdempotency(context.Background(), db, "orders", "c9", "k9", 201, `{"total_orders":1}`, start, ttl)
	if err != nil {
		t.Fatalf("CreateIdempotency error: %v", err)
	}
	if rec == nil || rec.ID == "" || rec.ClientID != "c9" || rec.Key != "k9" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.ExpiresAt.Equal(start.Add(ttl)) {
		t.Fatalf("unexpected ExpiresAt: %v", rec.ExpiresAt)
	}

	got, err := GetIdempotency(context.Background(), db, "orders", "c9", "k9", start.Add(time.Minute))
	if err != nil || got.Body != `{"total_orders":1}` {
		t.Fatalf("readback: %+v, %v", got, err)
	}

	_, err2 := CreateIdempotency(context.Background(), db, "orders", "c9", "k9", 200, `{}`, start, ttl)
	if err2 != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err2)
	}

	// Same key from a different client is independent.
	if _, err := CreateIdempotency(context.Background(), db, "orders", "other", "k9", 201, `{}`, start, ttl); err != nil {
		t.Fatalf("different client should be allowed: %v", err)
	}
}

// Generic DB error path: attempt insert without migrating the table.
func TestCreateIdempotency_Error_NoTable(t *testing.T) {
	db := newIdemDB(t)
	_, err := CreateIdempotency(context.Background(), db, "orders", "cX", "kX", 200, "", time.Now(), time.Minute)
	if err == nil {
		t.Fatalf("expected error when table is missing")
	}
	if err == ErrDuplicate {
		t.Fatalf("expected non-duplicate error, got ErrDuplicate")
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	now := time.Now().UTC()
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "orders", "c", "old", 201, "", now.Add(-2*time.Hour), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateIdempotency(ctx, db, "orders", "c", "new", 201, "", now, time.Hour); err != nil {
		t.Fatal(err)
	}

	n, err := PurgeExpiredIdempotency(ctx, db, now)
	if err != nil || n != 1 {
		t.Fatalf("purge: n=%d err=%v", n, err)
	}
	if _, err := GetIdempotency(ctx, db, "orders", "c", "new", now); err != nil {
		t.Fatalf("live row should survive purge: %v", err)
	}
}

func TestIdempotencyStore_LookupAndSave(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	s := &IdempotencyStore{DB: db, TTL: time.Hour}
	ctx := context.Background()
	now := time.Now().UTC()

	if _, _, found, err := s.Lookup(ctx, "orders", "c", "k", now); found || err != nil {
		t.Fatalf("empty store lookup: found=%v err=%v", found, err)
	}
	if err := s.Save(ctx, "orders", "c", "k", 201, `{"a":1}`, now); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// First writer wins; duplicate save is silent.
	if err := s.Save(ctx, "orders", "c", "k", 500, `{"b":2}`, now); err != nil {
		t.Fatalf("duplicate Save: %v", err)
	}
	status, body, found, err := s.Lookup(ctx, "orders", "c", "k", now.Add(time.Minute))
	if err != nil || !found || status != 201 || body != `{"a":1}` {
		t.Fatalf("Lookup = %d %q %v %v", status, body, found, err)
	}
	if _, _, found, _ := s.Lookup(ctx, "orders", "c", "k", now.Add(2*time.Hour)); found {
		t.Fatalf("expired record must not replay")
	}
}

func TestIdempotencyStore_Save_ReplacesExpiredRow(t *testing.T) {
	db := newIdemDB(t, &domain.Idempotency{})
	s := &IdempotencyStore{DB: db, TTL: time.Hour}
	ctx := context.Background()
	t0 := time.Now().UTC()

	if err := s.Save(ctx, "orders", "c", "k", 201, `{"order":1}`, t0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Same key after the window closed, before any purge ran.
	later := t0.Add(2 * time.Hour)
	if _, _, found, _ := s.Lookup(ctx, "orders", "c", "k", later); found {
		t.Fatalf("expired record must not replay")
	}
	if err := s.Save(ctx, "orders", "c", "k", 201, `{"order":2}`, later); err != nil {
		t.Fatalf("Save over expired row: %v", err)
	}
	status, body, found, err := s.Lookup(ctx, "orders", "c", "k", later.Add(time.Minute))
	if err != nil || !found || status != 201 || body != `{"order":2}` {
		t.Fatalf("Lookup after reuse = %d %q %v %v", status, body, found, err)
	}

	var n int64
	if err := db.Model(&domain.Idempotency{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("rows = %d, %v; want 1", n, err)
	}

	// A live row is still first-writer-wins.
	if err := s.Save(ctx, "orders", "c", "k", 500, `{"order":3}`, later.Add(time.Minute)); err != nil {
		t.Fatalf("duplicate Save: %v", err)
	}
	if _, body, _, _ := s.Lookup(ctx, "orders", "c", "k", later.Add(2*time.Minute)); body != `{"order":2}` {
		t.Fatalf("live row was overwritten: %q", body)
	}
}

func TestIdempotencyStore_LookupError_NoTable(t *testing.T) {
	s := &IdempotencyStore{DB: newIdemDB(t), TTL: time.Hour}
	if _, _, _, err := s.Lookup(context.Background(), "orders", "c", "k", time.Now()); err == nil {
		t.Fatalf("expected error without table")
	}
}
