// Package session implements the single-admin authentication gate: login
// against a fixed credential pair, a persisted session with an absolute
// expiry, and an inactivity watchdog that ends the session when the admin
// goes quiet.
package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/safar/go-storefront/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultDuration    = 24 * time.Hour
	DefaultIdleTimeout = 30 * time.Minute

	adminID   = "1"
	adminName = "Administrador"

	ReasonInactivity = "inactivity"
)

// Store persists the current session. Load returns (nil, nil) when nothing is
// stored and an error wrapping ErrCorruptState when the stored data is
// unusable.
type Store interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}

type Credentials struct {
	Username string
	Password string
	Email    string
}

type Config struct {
	Credentials     Credentials
	Duration        time.Duration
	IdleTimeout     time.Duration
	ActivitySignals []string
}

// Notice is delivered when the session ends without an explicit logout.
type Notice struct {
	Reason string
	User   models.AdminUser
	At     time.Time
}

type Notifier func(Notice)

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

type Manager struct {
	store    Store
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
	notify   Notifier
	watchdog *Watchdog

	// mu serializes changes to the stored session and the watchdog.
	mu        sync.Mutex
	loggingIn atomic.Bool
	failed    atomic.Int64
}

func NewManager(store Store, cfg Config, opts ...Option) *Manager {
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}

	m := &Manager{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: zap.NewNop(),
		notify: func(Notice) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.watchdog = NewWatchdog(cfg.IdleTimeout, cfg.ActivitySignals, m.expireIdle)
	return m
}

// Login starts a session for the configured admin. A failed attempt leaves
// any stored session untouched.
func (m *Manager) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if !m.loggingIn.CompareAndSwap(false, true) {
		return nil, ErrLoginInProgress
	}
	defer m.loggingIn.Store(false)

	if !m.credentialsMatch(username, password) {
		attempts := m.failed.Add(1)
		m.logger.Warn("admin login rejected",
			zap.String("username", username),
			zap.Int64("failed_attempts", attempts))
		return nil, ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	sess := &models.Session{
		User: models.AdminUser{
			ID:        adminID,
			Username:  m.cfg.Credentials.Username,
			Email:     m.cfg.Credentials.Email,
			Name:      adminName,
			Role:      models.RoleAdmin,
			LoginTime: now,
		},
		ExpiresAt: now.Add(m.cfg.Duration),
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.failed.Store(0)
	m.watchdog.Start()
	m.logger.Info("admin logged in",
		zap.String("username", sess.User.Username),
		zap.Time("expires_at", sess.ExpiresAt))

	return sess, nil
}

// CheckSession returns the live session, or nil when logged out. An expired
// or unreadable session is cleared on the way.
func (m *Manager) CheckSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorruptState) {
			return nil, fmt.Errorf("load session: %w", err)
		}
		m.logger.Warn("discarding unreadable session", zap.Error(err))
		return nil, m.end(ctx)
	}

	if sess == nil {
		m.watchdog.Stop()
		return nil, nil
	}

	if sess.Expired(m.now()) {
		m.logger.Info("admin session expired", zap.Time("expires_at", sess.ExpiresAt))
		return nil, m.end(ctx)
	}

	if !m.watchdog.Running() {
		m.watchdog.Start()
	}
	return sess, nil
}

// Require is CheckSession for gates: no live session is ErrSessionExpired.
func (m *Manager) Require(ctx context.Context) (*models.Session, error) {
	sess, err := m.CheckSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionExpired
	}
	return sess, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.end(ctx); err != nil {
		return err
	}
	m.logger.Info("admin logged out")
	return nil
}

// Touch records admin activity; see Watchdog.Touch.
func (m *Manager) Touch(signal string) bool {
	return m.watchdog.Touch(signal)
}

func (m *Manager) FailedAttempts() int64 {
	return m.failed.Load()
}

// Close releases the watchdog timer. The stored session is kept.
func (m *Manager) Close() {
	m.watchdog.Close()
}

func (m *Manager) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.cfg.Credentials.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.cfg.Credentials.Password))
	return userOK&passOK == 1
}

// end requires m.mu.
func (m *Manager) end(ctx context.Context) error {
	m.watchdog.Stop()
	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// expireIdle ends the session the watchdog generation gen was armed for. A
// login or restart since then makes gen stale and the call a no-op.
func (m *Manager) expireIdle(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.AdminUser
	if sess, err := m.store.Load(ctx); err == nil && sess != nil {
		user = sess.User
	}

	m.mu.Lock()
	if !m.watchdog.Current(gen) {
		m.mu.Unlock()
		m.logger.Debug("ignoring superseded inactivity timer")
		return
	}
	err := m.end(ctx)
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("inactivity logout failed", zap.Error(err))
		return
	}

	m.logger.Info("admin logged out after inactivity", zap.Duration("idle_timeout", m.cfg.IdleTimeout))
	m.notify(Notice{Reason: ReasonInactivity, User: user, At: m.now()})
}
