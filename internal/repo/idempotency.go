package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/caked-with-love/internal/domain"
)

// ErrDuplicate indicates that an idempotency record already exists for the
// given (scope, client_id, key) tuple.
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns a non-expired record or ErrNotFound.
func GetIdempotency(ctx context.Context, db *gorm.DB, scope, clientID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("scope = ? AND client_id = ? AND key = ? AND expires_at > ?", scope, clientID, key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency inserts a record and returns ErrDuplicate on unique violation.
func CreateIdempotency(ctx context.Context, db *gorm.DB, scope, clientID, key string, status int, body string, now time.Time, ttl time.Duration) (*domain.Idempotency, error) {
	now = now.UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		Scope:     scope,
		ClientID:  clientID,
		Key:       key,
		Status:    status,
		Body:      body,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// PurgeExpiredIdempotency deletes rows whose window closed at or before now.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}

// IdempotencyStore binds the helpers above to one database and TTL so the
// HTTP layer can look up and record replayable responses without touching GORM.
type IdempotencyStore struct {
	DB  *gorm.DB
	TTL time.Duration
}

// Lookup returns the stored response for (scope, clientID, key), if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, scope, clientID, key string, now time.Time) (status int, body string, found bool, err error) {
	rec, err := GetIdempotency(ctx, s.DB, scope, clientID, key, now)
	if errors.Is(err, ErrNotFound) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}
	return rec.Status, rec.Body, true, nil
}

// Save records a completed response. A live duplicate is not an error: the
// first writer wins and later retries replay its body. A row that has expired
// but not yet been purged is replaced, so a reused key records its new
// response.
func (s *IdempotencyStore) Save(ctx context.Context, scope, clientID, key string, status int, body string, now time.Time) error {
	_, err := CreateIdempotency(ctx, s.DB, scope, clientID, key, status, body, now, s.TTL)
	if !errors.Is(err, ErrDuplicate) {
		return err
	}

	res := s.DB.WithContext(ctx).
		Where("scope = ? AND client_id = ? AND key = ? AND expires_at <= ?", scope, clientID, key, now.UTC()).
		Delete(&domain.Idempotency{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	_, err = CreateIdempotency(ctx, s.DB, scope, clientID, key, status, body, now, s.TTL)
	if errors.Is(err, ErrDuplicate) {
		return nil
	}
	return err
}
