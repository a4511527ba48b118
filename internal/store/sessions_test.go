package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/session"
	"github.com/safar/go-storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyKV fails Set for a key once its allowance of successful writes is
// used up.
type flakyKV struct {
	*storage.MemoryKV
	mu      sync.Mutex
	failSet map[string]error
	allow   map[string]int
}

func newFlakyKV() *flakyKV {
	return &flakyKV{
		MemoryKV: storage.NewMemoryKV(),
		failSet:  map[string]error{},
		allow:    map[string]int{},
	}
}

func (f *flakyKV) failSetOn(key string, err error) {
	f.failSetAfter(key, 0, err)
}

func (f *flakyKV) failSetAfter(key string, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet[key] = err
	f.allow[key] = n
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	err := f.failSet[key]
	if err != nil && f.allow[key] > 0 {
		f.allow[key]--
		err = nil
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.MemoryKV.Set(ctx, key, value)
}

func adminSession(loginTime time.Time) *models.Session {
	return &models.Session{
		User:      models.AdminUser{ID: "1", Username: "admin", Role: models.RoleAdmin, LoginTime: loginTime},
		ExpiresAt: loginTime.Add(24 * time.Hour),
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := NewSessionStore(kv)

	sess, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	expires := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, &models.Session{
		User:      models.AdminUser{ID: "1", Username: "admin", Role: models.RoleAdmin},
		ExpiresAt: expires,
	}))

	raw, err := kv.Get(ctx, KeyAdminAuthExpiry)
	require.NoError(t, err)
	assert.Equal(t, `"1709380800000"`, string(raw))

	sess, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.True(t, sess.ExpiresAt.Equal(expires))
	assert.Equal(t, "admin", sess.User.Username)

	require.NoError(t, s.Clear(ctx))
	sess, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestSessionStoreNumericExpiry(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyAdminAuth, []byte(`{"user":{"id":"1","role":"admin"}}`)))
	require.NoError(t, kv.Set(ctx, KeyAdminAuthExpiry, []byte(`1709380800000`)))

	sess, err := NewSessionStore(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1709380800000), sess.ExpiresAt.UnixMilli())
}

func TestSessionStoreCorruptState(t *testing.T) {
	tests := []struct {
		name   string
		auth   string
		expiry string
	}{
		{"missing expiry", `{"user":{"id":"1"}}`, ""},
		{"missing auth", "", `"1709380800000"`},
		{"bad auth json", `{"user":`, `"1709380800000"`},
		{"bad expiry", `{"user":{"id":"1"}}`, `"tomorrow"`},
		{"expiry wrong type", `{"user":{"id":"1"}}`, `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := storage.NewMemoryKV()
			if tt.auth != "" {
				require.NoError(t, kv.Set(ctx, KeyAdminAuth, []byte(tt.auth)))
			}
			if tt.expiry != "" {
				require.NoError(t, kv.Set(ctx, KeyAdminAuthExpiry, []byte(tt.expiry)))
			}

			_, err := NewSessionStore(kv).Load(ctx)
			assert.ErrorIs(t, err, session.ErrCorruptState)
		})
	}
}

func TestSessionStoreSaveFailureKeepsPreviousSession(t *testing.T) {
	diskFull := errors.New("disk full")
	first := adminSession(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	second := adminSession(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	for _, key := range []string{KeyAdminAuthExpiry, KeyAdminAuth} {
		t.Run(key, func(t *testing.T) {
			ctx := context.Background()
			kv := newFlakyKV()
			s := NewSessionStore(kv)
			require.NoError(t, s.Save(ctx, first))

			kv.failSetOn(key, diskFull)
			err := s.Save(ctx, second)
			assert.ErrorIs(t, err, diskFull)

			sess, err := s.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, sess)
			assert.True(t, sess.User.LoginTime.Equal(first.User.LoginTime))
			assert.True(t, sess.ExpiresAt.Equal(first.ExpiresAt))
		})
	}
}

func TestSessionStoreSaveFailureWithoutPreviousSession(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyKV()
	s := NewSessionStore(kv)

	kv.failSetOn(KeyAdminAuth, errors.New("disk full"))
	require.Error(t, s.Save(ctx, adminSession(time.Now())))

	sess, err := s.Load(ctx)
	require.NoError(t, err, "no partial record may be left behind")
	assert.Nil(t, sess)
}

func TestSessionStoreSaveClearsWhenRestoreFails(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyKV()
	s := NewSessionStore(kv)
	require.NoError(t, s.Save(ctx, adminSession(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))))

	kv.failSetOn(KeyAdminAuth, errors.New("disk full"))
	kv.failSetAfter(KeyAdminAuthExpiry, 1, errors.New("expiry locked"))
	err := s.Save(ctx, adminSession(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore failed")

	sess, err := s.Load(ctx)
	require.NoError(t, err, "no partial record may be left behind")
	assert.Nil(t, sess)
}

func TestSessionStoreWithManager(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, KeyAdminAuth, []byte(`{"user":`)))
	require.NoError(t, kv.Set(ctx, KeyAdminAuthExpiry, []byte(`"1"`)))

	m := session.NewManager(NewSessionStore(kv), session.Config{
		Credentials: session.Credentials{Username: "admin", Password: "admin123"},
	})
	defer m.Close()

	sess, err := m.CheckSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess, "corrupt state must read as logged out")
	_, err = kv.Get(ctx, KeyAdminAuth)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = m.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	sess, err = m.CheckSession(ctx)
	require.NoError(t, err)
	assert.NotNil(t, sess)
}

func TestManagerLoginSaveFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyKV()
	clock := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	m := session.NewManager(NewSessionStore(kv), session.Config{
		Credentials: session.Credentials{Username: "admin", Password: "admin123"},
	}, session.WithClock(func() time.Time { return clock }))
	defer m.Close()

	first, err := m.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	clock = clock.Add(2 * time.Hour)
	kv.failSetOn(KeyAdminAuthExpiry, errors.New("disk full"))
	_, err = m.Login(ctx, "admin", "admin123")
	require.Error(t, err)

	sess, err := m.CheckSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.True(t, sess.User.LoginTime.Equal(first.User.LoginTime))
	assert.True(t, sess.ExpiresAt.Equal(first.ExpiresAt))
}
