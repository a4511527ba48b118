package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/session"
	"github.com/safar/go-storefront/internal/storage"
)

// SessionStore keeps the admin session in two keys: adminAuth holds
// {"user": {...}} and adminAuthExpiry the expiry as epoch milliseconds.
type SessionStore struct {
	kv storage.KV
}

func NewSessionStore(kv storage.KV) *SessionStore {
	return &SessionStore{kv: kv}
}

type authRecord struct {
	User models.AdminUser `json:"user"`
}

func (s *SessionStore) Load(ctx context.Context) (*models.Session, error) {
	authData, authErr := s.kv.Get(ctx, KeyAdminAuth)
	expiryData, expiryErr := s.kv.Get(ctx, KeyAdminAuthExpiry)

	authMissing := errors.Is(authErr, storage.ErrNotFound)
	expiryMissing := errors.Is(expiryErr, storage.ErrNotFound)
	if authErr != nil && !authMissing {
		return nil, fmt.Errorf("get %s: %w", KeyAdminAuth, authErr)
	}
	if expiryErr != nil && !expiryMissing {
		return nil, fmt.Errorf("get %s: %w", KeyAdminAuthExpiry, expiryErr)
	}

	if authMissing && expiryMissing {
		return nil, nil
	}
	if authMissing || expiryMissing {
		return nil, fmt.Errorf("%w: partial session record", session.ErrCorruptState)
	}

	var rec authRecord
	if err := json.Unmarshal(authData, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", session.ErrCorruptState, KeyAdminAuth, err)
	}

	expiresAt, err := parseExpiry(expiryData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrCorruptState, err)
	}

	return &models.Session{User: rec.User, ExpiresAt: expiresAt}, nil
}

// Save writes the expiry before the user record. If the second write fails
// the previous expiry is put back, so a reader never sees the new user next
// to the old expiry. When that restore fails too both keys are cleared.
func (s *SessionStore) Save(ctx context.Context, sess *models.Session) error {
	authData, err := json.Marshal(authRecord{User: sess.User})
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyAdminAuth, err)
	}
	expiryData, err := json.Marshal(strconv.FormatInt(sess.ExpiresAt.UnixMilli(), 10))
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyAdminAuthExpiry, err)
	}

	prevExpiry, err := s.snapshot(ctx, KeyAdminAuthExpiry)
	if err != nil {
		return err
	}

	if err := s.kv.Set(ctx, KeyAdminAuthExpiry, expiryData); err != nil {
		return fmt.Errorf("set %s: %w", KeyAdminAuthExpiry, err)
	}
	if err := s.kv.Set(ctx, KeyAdminAuth, authData); err != nil {
		if rbErr := s.restore(ctx, KeyAdminAuthExpiry, prevExpiry); rbErr != nil {
			if clearErr := s.Clear(ctx); clearErr != nil {
				return fmt.Errorf("restore failed: %v, clear failed: %v (original error: %w)", rbErr, clearErr, err)
			}
			return fmt.Errorf("restore failed: %v (original error: %w)", rbErr, err)
		}
		return fmt.Errorf("set %s: %w", KeyAdminAuth, err)
	}
	return nil
}

// snapshot returns the raw value at key, nil when absent.
func (s *SessionStore) snapshot(ctx context.Context, key string) ([]byte, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

func (s *SessionStore) restore(ctx context.Context, key string, prev []byte) error {
	if prev == nil {
		return s.kv.Delete(ctx, key)
	}
	return s.kv.Set(ctx, key, prev)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyAdminAuth); err != nil {
		return err
	}
	return s.kv.Delete(ctx, KeyAdminAuthExpiry)
}

// parseExpiry accepts the epoch-ms value as a JSON string or number.
func parseExpiry(data []byte) (time.Time, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return time.Time{}, fmt.Errorf("decode %s: %w", KeyAdminAuthExpiry, err)
	}

	var ms int64
	switch v := raw.(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse %s: %w", KeyAdminAuthExpiry, err)
		}
		ms = n
	case float64:
		ms = int64(v)
	default:
		return time.Time{}, fmt.Errorf("parse %s: unexpected %T", KeyAdminAuthExpiry, raw)
	}

	return time.UnixMilli(ms).UTC(), nil
}
